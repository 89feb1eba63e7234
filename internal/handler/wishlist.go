package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/wishlist/internal/auth"
	"github.com/dukerupert/wishlist/internal/wishlist"
)

type WishlistHandler struct {
	svc    *wishlist.Service
	logger *slog.Logger
}

func NewWishlistHandler(svc *wishlist.Service, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{svc: svc, logger: logger}
}

type wishlistRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *WishlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req wishlistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	list, err := h.svc.Create(req.Title, req.Description, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	list, err := h.svc.Get(id)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *WishlistHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Close(id, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeOK(w, "Wishlist closed")
}

func (h *WishlistHandler) Invite(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		InvitationMail string `json:"invitationMail"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	outcome, err := h.svc.Invite(id, req.InvitationMail, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	if outcome == wishlist.InviteAdded {
		writeOK(w, "User added to wishlist")
		return
	}
	writeOK(w, "Invitation sent")
}

func (h *WishlistHandler) Members(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	users, err := h.svc.Members(id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *WishlistHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	lists, err := h.svc.ListForUser(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}
