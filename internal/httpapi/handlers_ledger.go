package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/arueda/gestion/internal/apperr"
	"github.com/arueda/gestion/internal/service"
)

type addContributionRequest struct {
	PayerID     string  `json:"payer_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        int64   `json:"date"`
}

func (s *Server) handleAddContribution(w http.ResponseWriter, r *http.Request) {
	var req addContributionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	record, err := s.ledger.AddContribution(r.Context(), userID(r), r.PathValue("planID"),
		req.PayerID, req.Amount, req.Description, req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordView(record))
}

func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	records, err := s.ledger.ListContributions(r.Context(), userID(r), r.PathValue("planID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordViews(records))
}

// handleStreamContributions serves the live record set over server-sent
// events: the full ordered snapshot is re-sent on every committed change.
func (s *Server) handleStreamContributions(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, apperr.Validation("streaming unsupported by connection"))
		return
	}

	st, err := s.ledger.StreamContributions(r.Context(), userID(r), r.PathValue("planID"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer st.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-st.Done():
			return
		case snapshot := <-st.Updates():
			payload, err := json.Marshal(toRecordViews(snapshot))
			if err != nil {
				slog.Warn("failed to marshal stream snapshot", "error", err)
				continue
			}
			if _, err := w.Write([]byte("data: ")); err != nil {
				return
			}
			if _, err := w.Write(payload); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

type updateContributionRequest struct {
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Date        *int64   `json:"date"`
}

func (s *Server) handleUpdateContribution(w http.ResponseWriter, r *http.Request) {
	var req updateContributionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	record, err := s.ledger.UpdateContribution(r.Context(), userID(r), r.PathValue("recordID"),
		service.ContributionUpdate{
			Amount:      req.Amount,
			Description: req.Description,
			Date:        req.Date,
		})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordView(record))
}

func (s *Server) handleDeleteContribution(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteContribution(r.Context(), userID(r), r.PathValue("recordID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
