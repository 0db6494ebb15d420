package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"housepoint/internal/ledger"
	"housepoint/internal/model"
	"housepoint/internal/websocket"
)

type RewardHandler struct {
	ledger *ledger.Ledger
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewRewardHandler(l *ledger.Ledger, hub *websocket.Hub, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{ledger: l, hub: hub, logger: logger}
}

func (h *RewardHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	rewards := h.ledger.RewardsInFamily()
	if rewards == nil {
		rewards = []model.Reward{}
	}
	writeJSON(w, http.StatusOK, rewards)
}

type rewardRequest struct {
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Cost < 0 {
		writeError(w, http.StatusBadRequest, "cost must be >= 0")
		return
	}

	reward, err := h.ledger.AddReward(req.Name, req.Cost)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("reward", "created", reward.ID.String(), nil))
	writeJSON(w, http.StatusCreated, reward)
}

func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.ledger.RemoveReward(id); err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("reward", "removed", id.String(), nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// Request files a redemption request for the signed-in user.
func (h *RewardHandler) Request(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, ok := h.ledger.CurrentUser()
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	request, err := h.ledger.RequestReward(id, user.ID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("reward_request", "created", request.ID.String(), nil))
	writeJSON(w, http.StatusCreated, request)
}

func (h *RewardHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending := h.ledger.PendingRequestsInFamily()
	if pending == nil {
		pending = []model.PendingReward{}
	}
	writeJSON(w, http.StatusOK, pending)
}

func (h *RewardHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.ledger.ApproveReward(id); err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("reward_request", "approved", id.String(), nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *RewardHandler) DenyRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.ledger.DenyReward(id); err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("reward_request", "denied", id.String(), nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "denied"})
}
