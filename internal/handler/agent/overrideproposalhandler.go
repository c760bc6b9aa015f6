package agent

import (
	"net/http"

	"pookal/agent/proposal"
	"pookal/internal/httputil"
	"pookal/internal/svc"
	"pookal/internal/types"
)

// OverrideProposalHandler edits argument fields of a pending proposal.
// The edits apply when the proposal is confirmed.
func OverrideProposalHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.OverrideProposalRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}
		if len(req.Overrides) == 0 {
			httputil.ErrorWithCode(w, http.StatusBadRequest, "overrides is required")
			return
		}

		var p *proposal.Proposal
		for field, value := range req.Overrides {
			updated, err := svcCtx.Proposals.SetOverride(req.ID, field, value)
			if err != nil {
				proposalErrorStatus(w, err)
				return
			}
			p = updated
		}
		httputil.OkJSON(w, p)
	}
}
