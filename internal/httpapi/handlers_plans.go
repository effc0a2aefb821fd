package httpapi

import (
	"net/http"
)

type createPlanRequest struct {
	Title        string `json:"title"`
	Distribution string `json:"distribution"`
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	plan, err := s.plans.CreatePlan(r.Context(), userID(r), req.Title, req.Distribution)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanView(plan))
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.ListPlans(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanViews(plans))
}

type planDetailResponse struct {
	Plan    planView     `json:"plan"`
	Persons []personView `json:"persons"`
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, persons, err := s.plans.GetPlan(r.Context(), userID(r), r.PathValue("planID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, planDetailResponse{
		Plan:    toPlanView(plan),
		Persons: toPersonViews(persons),
	})
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.plans.DeletePlan(r.Context(), userID(r), r.PathValue("planID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addMemberRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	person, err := s.plans.AddMember(r.Context(), userID(r), r.PathValue("planID"), req.UserID, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPersonView(person))
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.plans.Balances(r.Context(), userID(r), r.PathValue("planID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceViews(balances))
}
