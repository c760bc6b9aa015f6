package voice

import (
	"net/http"

	"pookal/internal/httputil"
	"pookal/internal/svc"
)

// StopVoiceHandler ends the current listen and runs transcription, the
// reply, and playback. It blocks until the cycle completes.
func StopVoiceHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.OkJSON(w, svcCtx.Voice.Stop(r.Context()))
	}
}
