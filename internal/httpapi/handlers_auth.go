package httpapi

import (
	"net/http"

	"github.com/arueda/gestion/internal/apperr"
)

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Email == "" || req.DisplayName == "" {
		writeError(w, apperr.Validation("email and display_name required"))
		return
	}

	user, err := s.authenticator.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: toUserView(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: toUserView(user)})
}
