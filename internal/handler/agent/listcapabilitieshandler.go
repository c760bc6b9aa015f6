package agent

import (
	"net/http"

	"pookal/internal/httputil"
	"pookal/internal/svc"
	"pookal/internal/types"
)

// ListCapabilitiesHandler returns the registered capability descriptors.
func ListCapabilitiesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.OkJSON(w, types.ListCapabilitiesResponse{
			Capabilities: svcCtx.Registry.List(),
		})
	}
}
