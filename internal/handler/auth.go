package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"housepoint/internal/ledger"
	"housepoint/internal/websocket"
)

type AuthHandler struct {
	ledger *ledger.Ledger
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewAuthHandler(l *ledger.Ledger, hub *websocket.Hub, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{ledger: l, hub: hub, logger: logger}
}

func (h *AuthHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.ledger.Login(req.Username, req.Password)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("session", "login", user.ID.String(), nil))
	writeJSON(w, http.StatusOK, sanitize(user))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Logout(); err != nil {
		h.logger.Error("logout", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	h.broadcast(websocket.NewMessage("session", "logout", "", nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	parent, err := h.ledger.RegisterParent(req.Username, req.Password)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("user", "created", parent.ID.String(), nil))
	writeJSON(w, http.StatusCreated, sanitize(parent))
}

// Me returns the signed-in user, or 204 when no session is active.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.ledger.CurrentUser()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, sanitize(user))
}
