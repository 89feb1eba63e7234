package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/wishlist/internal/account"
	"github.com/dukerupert/wishlist/internal/auth"
	"github.com/dukerupert/wishlist/internal/wishlist"
)

type AuthHandler struct {
	accounts  *account.Service
	wishlists *wishlist.Service
	logger    *slog.Logger
}

func NewAuthHandler(accounts *account.Service, wishlists *wishlist.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, wishlists: wishlists, logger: logger}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if _, err := h.accounts.Register(req.Username, req.Email, req.Password); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeOK(w, "User registered")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message      string `json:"message"`
	UserID       int64  `json:"userId"`
	UserLogin    string `json:"userLogin"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	sess, err := h.accounts.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message:      "Login successful",
		UserID:       sess.UserID,
		UserLogin:    sess.Username,
		Token:        sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	})
}

type tokenRequest struct {
	Username     string `json:"username"`
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.RefreshToken == "" {
		writeMsg(w, http.StatusUnauthorized, "refresh token required")
		return
	}

	access, err := h.accounts.Refresh(req.Username, req.RefreshToken)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": access})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	// A missing or unreadable body still logs out.
	_ = decodeJSON(r, &req)

	if err := h.accounts.Logout(req.Token); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type activateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if _, err := h.wishlists.Accept(req.Username, req.Password, req.Token); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeOK(w, "User activated and added to wishlist")
}

func (h *AuthHandler) ForgetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.accounts.RequestPasswordReset(req.Email); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeOK(w, "Email sent")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
		Token    string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.accounts.ResetPassword(req.Password, req.Token); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeOK(w, "Password updated with success.")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.accounts.Me(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) UserExists(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	u, err := h.accounts.Lookup(req.Username)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
