// Package handler holds top-level HTTP handlers.
package handler

import (
	"net/http"

	"pookal/internal/config"
	"pookal/internal/httputil"
	"pookal/internal/svc"
	"pookal/internal/types"
)

// HealthCheckHandler reports service liveness and the active provider.
func HealthCheckHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := types.HealthResponse{
			Status:  "ok",
			Version: config.Version,
		}
		if svcCtx.Provider != nil {
			resp.Provider = svcCtx.Provider.ID()
		}
		httputil.OkJSON(w, resp)
	}
}
