package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/wishlist/internal/auth"
	"github.com/dukerupert/wishlist/internal/model"
	"github.com/dukerupert/wishlist/internal/wishlist"
)

type ItemHandler struct {
	svc    *wishlist.Service
	logger *slog.Logger
}

func NewItemHandler(svc *wishlist.Service, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, logger: logger}
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req model.ItemFields
	if err := decodeJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	item, err := h.svc.AddItem(id, auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// List returns the wishlist's items as seen by the caller: reservation
// details are withheld on the caller's own items.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	items, err := h.svc.ListItems(id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type reserveRequest struct {
	ItemID int64 `json:"item_id"`
}

// Reserve holds an item for the caller. A reservingUser_id in the body is
// ignored; the reserver is always the authenticated user.
func (h *ItemHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ItemID <= 0 {
		writeMsg(w, http.StatusBadRequest, "item_id is required")
		return
	}

	if err := h.svc.Reserve(req.ItemID, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeOK(w, "Item reserved successfully.")
}

func (h *ItemHandler) Unreserve(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "itemId")
	if err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Unreserve(id, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeOK(w, "Reservation released.")
}

func (h *ItemHandler) MarkBought(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.MarkBought(id, auth.UserID(r.Context())); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeOK(w, "Item marked as bought.")
}
