package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/digitalhat/storefront/internal/domain"
)

// devOTP is accepted for every pending registration; the dev server
// sends no mail.
const devOTP = "000000"

type contextKey string

const userKey contextKey = "user"

func userID(seq int) string {
	return fmt.Sprintf("u-%04d", seq)
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		s.mu.Lock()
		email, found := s.tokens[token]
		var user domain.User
		if found {
			if acct, exists := s.users[email]; exists {
				user = acct.user
			} else {
				found = false
			}
		}
		s.mu.Unlock()

		if !found {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(r *http.Request) domain.User {
	user, _ := r.Context().Value(userKey).(domain.User)
	return user
}

type credentialsDTO struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type authResponseDTO struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	acct, ok := s.users[req.Email]
	if !ok || acct.password != req.Password {
		s.mu.Unlock()
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	token := uuid.NewString()
	s.tokens[token] = req.Email
	user := acct.user
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, authResponseDTO{Token: token, User: user})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[req.Email]; exists {
		s.mu.Unlock()
		respondError(w, http.StatusConflict, "email already registered")
		return
	}
	s.nextUserID++
	s.pendingOTP[req.Email] = &account{
		user: domain.User{
			ID:       userID(s.nextUserID),
			FullName: req.FullName,
			Email:    req.Email,
			Role:     domain.RoleMember,
		},
		password: req.Password,
	}
	user := s.pendingOTP[req.Email].user
	s.mu.Unlock()

	// No token yet; the client must verify the OTP first.
	respondJSON(w, http.StatusCreated, authResponseDTO{User: user})
}

func (s *Server) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req credentialsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	pending, ok := s.pendingOTP[req.Email]
	if !ok || req.Code != devOTP {
		s.mu.Unlock()
		respondError(w, http.StatusBadRequest, "invalid verification code")
		return
	}
	delete(s.pendingOTP, req.Email)
	s.users[req.Email] = pending
	token := uuid.NewString()
	s.tokens[token] = req.Email
	user := pending.user
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, authResponseDTO{Token: token, User: user})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, currentUser(r))
}
