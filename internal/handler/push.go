package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"housepoint/internal/ledger"
	"housepoint/internal/notify"
	"housepoint/internal/store"
)

// PushHandler manages web-push subscriptions: the browser fetches the
// VAPID public key, prompts the user for permission, and posts the
// resulting subscription here.
type PushHandler struct {
	ledger *ledger.Ledger
	subs   *store.PushStore
	svc    *notify.Service
	logger *slog.Logger
}

func NewPushHandler(l *ledger.Ledger, subs *store.PushStore, svc *notify.Service, logger *slog.Logger) *PushHandler {
	return &PushHandler{ledger: l, subs: subs, svc: svc, logger: logger}
}

func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	key := h.svc.VAPIDPublicKey()
	if key == "" {
		writeError(w, http.StatusNotFound, "push notifications not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.ledger.CurrentUser()
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Endpoint == "" || req.P256dh == "" || req.Auth == "" {
		writeError(w, http.StatusBadRequest, "endpoint, p256dh, and auth are required")
		return
	}

	if err := h.subs.Upsert(user.ID, req.Endpoint, req.P256dh, req.Auth); err != nil {
		h.logger.Error("save subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "subscribed"})
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.subs.DeleteByEndpoint(req.Endpoint); err != nil {
		h.logger.Error("delete subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}
