package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"housepoint/internal/ledger"
	"housepoint/internal/websocket"
)

type FamilyHandler struct {
	ledger *ledger.Ledger
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewFamilyHandler(l *ledger.Ledger, hub *websocket.Hub, logger *slog.Logger) *FamilyHandler {
	return &FamilyHandler{ledger: l, hub: hub, logger: logger}
}

func (h *FamilyHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *FamilyHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sanitizeAll(h.ledger.ChildrenInFamily()))
}

type addChildRequest struct {
	Username string `json:"username"`
}

func (h *FamilyHandler) AddChild(w http.ResponseWriter, r *http.Request) {
	var req addChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	child, err := h.ledger.AddChild(req.Username)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("user", "created", child.ID.String(), nil))
	writeJSON(w, http.StatusCreated, sanitize(child))
}

func (h *FamilyHandler) RemoveChild(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.ledger.RemoveChild(id); err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("user", "removed", id.String(), nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
