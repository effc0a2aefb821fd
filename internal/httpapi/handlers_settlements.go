package httpapi

import (
	"net/http"
)

func (s *Server) handleSuggestSettlements(w http.ResponseWriter, r *http.Request) {
	payments, err := s.settlements.Suggest(r.Context(), userID(r), r.PathValue("planID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentViews(payments))
}

type settleRequest struct {
	FromID string  `json:"from_id"`
	ToID   string  `json:"to_id"`
	Amount float64 `json:"amount"`
}

type settleResponse struct {
	PayerRecord  recordView   `json:"payer_record"`
	MirrorRecord *recordView  `json:"mirror_record,omitempty"`
	Pending      *pendingView `json:"pending,omitempty"`
}

func (s *Server) handleSettlePayment(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.settlements.SettlePayment(r.Context(), userID(r), r.PathValue("planID"),
		req.FromID, req.ToID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := settleResponse{PayerRecord: toRecordView(result.PayerRecord)}
	if result.MirrorRecord != nil {
		mirror := toRecordView(result.MirrorRecord)
		resp.MirrorRecord = &mirror
	}
	if result.Pending != nil {
		pending := toPendingView(result.Pending)
		resp.Pending = &pending
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handlePendingTransactions(w http.ResponseWriter, r *http.Request) {
	pendings, err := s.settlements.PendingTransactions(r.Context(), userID(r), r.PathValue("planID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPendingViews(pendings))
}
