package agent

import (
	"errors"
	"net/http"

	"pookal/agent/capability"
	"pookal/internal/httputil"
	"pookal/internal/svc"
	"pookal/internal/types"
)

// ExecuteCapabilityHandler runs a capability directly. This is the
// user-driven path: the request itself is consent, so no proposal is
// created.
func ExecuteCapabilityHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ExecuteCapabilityRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}
		if req.Name == "" {
			httputil.ErrorWithCode(w, http.StatusBadRequest, "name is required")
			return
		}

		res, err := svcCtx.Registry.Invoke(r.Context(), req.Name, req.Args)
		if err != nil {
			switch {
			case errors.Is(err, capability.ErrUnknownCapability):
				httputil.NotFound(w, err.Error())
			case errors.Is(err, capability.ErrInvalidArgs):
				httputil.Error(w, err)
			default:
				httputil.ErrorWithCode(w, http.StatusBadGateway, err.Error())
			}
			return
		}
		httputil.OkJSON(w, res)
	}
}
