package agent

import (
	"net/http"

	"pookal/agent/runner"
	"pookal/agent/session"
	"pookal/internal/httputil"
	"pookal/internal/realtime"
	"pookal/internal/svc"
	"pookal/internal/types"
)

// DeclineProposalHandler declines a pending proposal. Nothing executes.
func DeclineProposalHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ProposalRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		p, err := svcCtx.Proposals.Decline(req.ID)
		if err != nil {
			proposalErrorStatus(w, err)
			return
		}

		reply := runner.DescribeOutcome(p)
		msg := svcCtx.Sessions.Append(p.SessionID, session.RoleAssistant, reply, p.ID)

		svcCtx.Hub.Broadcast(realtime.Event{Type: realtime.EventProposalResolved, Payload: p})
		svcCtx.Hub.Broadcast(realtime.Event{Type: realtime.EventMessage, Payload: msg})

		httputil.OkJSON(w, types.ResolveProposalResponse{Proposal: p, Message: msg})
	}
}
