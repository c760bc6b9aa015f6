package agent

import (
	"net/http"

	"pookal/internal/httputil"
	"pookal/internal/svc"
	"pookal/internal/types"
)

// GetProposalHandler returns one proposal by id.
func GetProposalHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ProposalRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		p, err := svcCtx.Proposals.Get(req.ID)
		if err != nil {
			proposalErrorStatus(w, err)
			return
		}
		httputil.OkJSON(w, p)
	}
}
