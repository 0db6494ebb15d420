package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"housepoint/internal/ledger"
	"housepoint/internal/model"
	"housepoint/internal/websocket"
)

type ChoreHandler struct {
	ledger *ledger.Ledger
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewChoreHandler(l *ledger.Ledger, hub *websocket.Hub, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{ledger: l, hub: hub, logger: logger}
}

func (h *ChoreHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores := h.ledger.ChoresInFamily()
	if chores == nil {
		chores = []model.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

type choreRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	BasePoints  int        `json:"basePoints"`
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	chore, err := h.ledger.AddChore(req.Title, req.Description, req.DueDate, req.BasePoints)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("chore", "created", chore.ID.String(), nil))
	writeJSON(w, http.StatusCreated, chore)
}

type assignRequest struct {
	UserID uuid.UUID `json:"userId"`
}

func (h *ChoreHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.ledger.AssignChore(id, req.UserID); err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("chore", "assigned", id.String(), nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

// ToggleDone flips the child's self-report flag on a chore.
func (h *ChoreHandler) ToggleDone(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.ledger.ToggleChoreDone(id); err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("chore", "marked_done", id.String(), nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "toggled"})
}

func (h *ChoreHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.ledger.ApproveChore(id); err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("chore", "approved", id.String(), nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *ChoreHandler) Unapprove(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.ledger.UnapproveChore(id); err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("chore", "unapproved", id.String(), nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "unapproved"})
}

type imageRequest struct {
	Image []byte `json:"image"`
}

// SetImage attaches an evidence photo (base64 in JSON) to a chore.
func (h *ChoreHandler) SetImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Image) == 0 {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}

	if err := h.ledger.AddChoreImage(id, req.Image); err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("chore", "image_set", id.String(), nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "image set"})
}

func (h *ChoreHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.ledger.RemoveChoreImage(id); err != nil {
		writeLedgerError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("chore", "image_removed", id.String(), nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "image removed"})
}
