package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"housepoint/internal/handler"
	"housepoint/internal/ledger"
	"housepoint/internal/middleware"
	"housepoint/internal/notify"
	"housepoint/internal/store"
	ws "housepoint/internal/websocket"
)

// Server wires the ledger, its collaborators, and the HTTP surface the
// presentation layer talks to.
type Server struct {
	ledger      *ledger.Ledger
	hub         *ws.Hub
	authH       *handler.AuthHandler
	familyH     *handler.FamilyHandler
	choreH      *handler.ChoreHandler
	rewardH     *handler.RewardHandler
	pushH       *handler.PushHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(l *ledger.Ledger, hub *ws.Hub, pushStore *store.PushStore, notifySvc *notify.Service, logger *slog.Logger) *Server {
	return &Server{
		ledger:      l,
		hub:         hub,
		authH:       handler.NewAuthHandler(l, hub, logger.With("component", "auth")),
		familyH:     handler.NewFamilyHandler(l, hub, logger.With("component", "family")),
		choreH:      handler.NewChoreHandler(l, hub, logger.With("component", "chore")),
		rewardH:     handler.NewRewardHandler(l, hub, logger.With("component", "reward")),
		pushH:       handler.NewPushHandler(l, pushStore, notifySvc, logger.With("component", "push")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	mux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	mux.HandleFunc("GET /api/me", s.authH.Me)

	mux.HandleFunc("GET /api/children", s.familyH.ListChildren)
	mux.HandleFunc("POST /api/children", s.familyH.AddChild)
	mux.HandleFunc("DELETE /api/children/{id}", s.familyH.RemoveChild)

	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("POST /api/chores", s.choreH.Create)
	mux.HandleFunc("POST /api/chores/{id}/assign", s.choreH.Assign)
	mux.HandleFunc("POST /api/chores/{id}/done", s.choreH.ToggleDone)
	mux.HandleFunc("POST /api/chores/{id}/approve", s.choreH.Approve)
	mux.HandleFunc("POST /api/chores/{id}/unapprove", s.choreH.Unapprove)
	mux.HandleFunc("PUT /api/chores/{id}/image", s.choreH.SetImage)
	mux.HandleFunc("DELETE /api/chores/{id}/image", s.choreH.RemoveImage)

	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.HandleFunc("POST /api/rewards", s.rewardH.Create)
	mux.HandleFunc("DELETE /api/rewards/{id}", s.rewardH.Delete)
	mux.HandleFunc("POST /api/rewards/{id}/request", s.rewardH.Request)
	mux.HandleFunc("GET /api/reward-requests", s.rewardH.ListPending)
	mux.HandleFunc("POST /api/reward-requests/{id}/approve", s.rewardH.ApproveRequest)
	mux.HandleFunc("POST /api/reward-requests/{id}/deny", s.rewardH.DenyRequest)

	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
