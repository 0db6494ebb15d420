package notify

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"housepoint/internal/model"
	"housepoint/internal/store"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// Payload is the JSON sent to the push service.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Config holds VAPID keys and the quiet-hours window. Notifications are
// suppressed from QuietStart up to (but not including) QuietEnd; the
// window may wrap past midnight, e.g. the default 20:00–08:00.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	QuietStart      int
	QuietEnd        int
}

// Service sends chore lifecycle notifications over web push. It is a
// fire-and-forget collaborator of the ledger: sends run in their own
// goroutine and failures are only logged.
type Service struct {
	cfg    Config
	subs   *store.PushStore
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a push notification service.
func NewService(cfg Config, subs *store.PushStore, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, subs: subs, logger: logger, now: time.Now}
}

// VAPIDPublicKey returns the public key for client-side subscription.
func (s *Service) VAPIDPublicKey() string {
	return s.cfg.VAPIDPublicKey
}

// ChoreAssigned tells the assignee about their new chore.
func (s *Service) ChoreAssigned(user model.User, chore model.Chore) {
	s.dispatch(user, Payload{
		Title: "New Chore",
		Body:  fmt.Sprintf("%s was assigned to you!", chore.Title),
		URL:   "/chores",
		Tag:   "chore-assigned-" + chore.ID.String(),
	})
}

// ChoreApproved congratulates the assignee on an approved chore.
func (s *Service) ChoreApproved(user model.User, chore model.Chore) {
	s.dispatch(user, Payload{
		Title: "Chore Approved",
		Body:  fmt.Sprintf("Great job! %s was approved!", chore.Title),
		URL:   "/chores",
		Tag:   "chore-approved-" + chore.ID.String(),
	})
}

// ChoreReminder nudges the assignee about a chore with a due date.
func (s *Service) ChoreReminder(user model.User, chore model.Chore) {
	s.dispatch(user, Payload{
		Title: "Chore Reminder",
		Body:  fmt.Sprintf("Don't forget: %s", chore.Title),
		URL:   "/chores",
		Tag:   "chore-reminder-" + chore.ID.String(),
	})
}

func (s *Service) dispatch(user model.User, payload Payload) {
	if s.cfg.VAPIDPublicKey == "" || s.cfg.VAPIDPrivateKey == "" {
		return
	}
	if s.inQuietHours(s.now()) {
		s.logger.Debug("suppressing notification during quiet hours", "tag", payload.Tag)
		return
	}

	go func() {
		subs, err := s.subs.ListByUser(user.ID)
		if err != nil {
			s.logger.Error("list subscriptions", "user", user.ID, "error", err)
			return
		}
		for _, sub := range subs {
			if err := s.send(&sub, payload); err != nil {
				if errors.Is(err, ErrExpired) {
					s.subs.DeleteByEndpoint(sub.Endpoint)
				} else {
					s.logger.Error("send notification", "user", user.ID, "error", err)
				}
			}
		}
	}()
}

// inQuietHours reports whether t falls inside the configured window.
func (s *Service) inQuietHours(t time.Time) bool {
	start, end := s.cfg.QuietStart, s.cfg.QuietEnd
	if start == end {
		return false
	}
	hour := t.Hour()
	if start < end {
		return hour >= start && hour < end
	}
	// Window wraps past midnight.
	return hour >= start || hour < end
}

func (s *Service) send(sub *model.PushSubscription, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotification(data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		Subscriber:      "mailto:noreply@housepoint.local",
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}

	return nil
}

// GenerateVAPIDKeys generates a new ECDSA P-256 key pair for VAPID.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate ECDSA key: %w", err)
	}

	pubBytes := elliptic.Marshal(elliptic.P256(), key.PublicKey.X, key.PublicKey.Y)
	publicKey = base64.RawURLEncoding.EncodeToString(pubBytes)
	privateKey = base64.RawURLEncoding.EncodeToString(key.D.Bytes())

	return publicKey, privateKey, nil
}
