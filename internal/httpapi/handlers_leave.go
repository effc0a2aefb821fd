package httpapi

import (
	"net/http"

	"github.com/arueda/gestion/internal/apperr"
	"github.com/arueda/gestion/internal/service"
)

type leavePreviewResponse struct {
	State      string       `json:"state"`
	Total      float64      `json:"total"`
	Candidates []personView `json:"candidates"`
	Records    []recordView `json:"records"`
}

func toLeavePreview(flow *service.LeaveFlow) leavePreviewResponse {
	return leavePreviewResponse{
		State:      flow.State().String(),
		Total:      flow.Total(),
		Candidates: toPersonViews(flow.Candidates()),
		Records:    toRecordViews(flow.Records()),
	}
}

// handlePreviewLeave shows the leaving member's position without writing
// anything: repeated previews are safe.
func (s *Server) handlePreviewLeave(w http.ResponseWriter, r *http.Request) {
	flow, err := s.leave.PreviewLeave(r.Context(), userID(r), r.PathValue("planID"), r.PathValue("personID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeavePreview(flow))
}

type leaveRequest struct {
	// Action is "transfer" or "delete".
	Action        string  `json:"action"`
	DestinationID string  `json:"destination_id"`
	Amount        float64 `json:"amount"`
}

// handleLeave runs a full leave flow in one request: confirm, then apply the
// chosen exit path. The flow state lives server-side only for the duration of
// the request, so a failed request can simply be retried.
func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	var req leaveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	flow, err := s.leave.ConfirmLeave(r.Context(), userID(r), r.PathValue("planID"), r.PathValue("personID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if flow.State() == service.StateDone {
		writeJSON(w, http.StatusOK, toLeavePreview(flow))
		return
	}

	switch req.Action {
	case "transfer":
		if err := flow.StartTransfer(req.DestinationID, req.Amount); err != nil {
			writeError(w, err)
			return
		}
		if err := flow.ConfirmTransfer(r.Context()); err != nil {
			writeError(w, err)
			return
		}
	case "delete":
		if err := flow.ConfirmDelete(r.Context()); err != nil {
			writeError(w, err)
			return
		}
	default:
		writeError(w, apperr.Validation("unknown leave action: %q", req.Action))
		return
	}
	writeJSON(w, http.StatusOK, toLeavePreview(flow))
}
