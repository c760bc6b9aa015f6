// Package agent holds the conversation and proposal HTTP handlers.
package agent

import (
	"errors"
	"net/http"
	"strings"

	"pookal/agent/proposal"
	"pookal/internal/httputil"
	"pookal/internal/realtime"
	"pookal/internal/svc"
	"pookal/internal/types"
)

// SendMessageHandler processes one user turn through the agent.
func SendMessageHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SendMessageRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			httputil.ErrorWithCode(w, http.StatusBadRequest, "text is required")
			return
		}

		res, err := svcCtx.Runner.ProcessTurn(r.Context(), req.SessionID, req.Text)
		if err != nil {
			httputil.InternalError(w, err.Error())
			return
		}

		svcCtx.Hub.Broadcast(realtime.Event{Type: realtime.EventMessage, Payload: res.Message})
		if res.Proposal != nil {
			evt := realtime.EventProposalCreated
			if res.Proposal.Status != proposal.StatusPending {
				evt = realtime.EventProposalResolved
			}
			svcCtx.Hub.Broadcast(realtime.Event{Type: evt, Payload: res.Proposal})
		}

		httputil.OkJSON(w, types.SendMessageResponse{
			SessionID: res.SessionID,
			Message:   res.Message,
			Proposal:  res.Proposal,
		})
	}
}

// proposalErrorStatus maps proposal store errors onto HTTP status codes.
func proposalErrorStatus(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, proposal.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, proposal.ErrNotPending):
		httputil.Conflict(w, err.Error())
	default:
		httputil.Error(w, err)
	}
}
