package voice

import (
	"net/http"

	"pookal/internal/httputil"
	"pookal/internal/svc"
)

// VoiceStatusHandler reports the current pipeline phase.
func VoiceStatusHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.OkJSON(w, svcCtx.Voice.Status())
	}
}
