// Package voice holds the push-to-talk HTTP handlers.
package voice

import (
	"net/http"

	"pookal/internal/httputil"
	"pookal/internal/svc"
)

// StartVoiceHandler starts a listen window. Starting while already
// listening supersedes the previous capture.
func StartVoiceHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := svcCtx.Voice.Start(r.Context())
		if err != nil {
			httputil.ErrorWithCode(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		httputil.OkJSON(w, s)
	}
}
