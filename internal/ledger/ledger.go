package ledger

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"housepoint/internal/auth"
	"housepoint/internal/model"
)

// Default parent synthesized when the store loads with no parent account.
const (
	DefaultParentUsername = "parent"
	defaultParentPassword = "1234"
)

// Gateway persists and restores the full ledger model.
type Gateway interface {
	Save(model.Snapshot) error
	Load() model.Snapshot
}

// Notifier receives chore lifecycle events. Implementations must not
// block and their failures never affect the state transition that
// produced the event.
type Notifier interface {
	ChoreAssigned(user model.User, chore model.Chore)
	ChoreApproved(user model.User, chore model.Chore)
	ChoreReminder(user model.User, chore model.Chore)
}

// Ledger owns the authoritative model of users, chores, rewards, and
// pending reward requests, plus the persisted current-session user.
// Every mutating operation applies its change and writes the snapshot
// through the gateway before returning. One mutex guards the whole
// read-modify-write-persist sequence.
type Ledger struct {
	mu            sync.Mutex
	users         []model.User
	chores        []model.Chore
	rewards       []model.Reward
	pending       []model.PendingReward
	currentUserID *uuid.UUID

	gateway  Gateway
	notifier Notifier
	logger   *slog.Logger
}

// Open restores the ledger from the gateway. If no parent account exists
// after the restore, a default parent is created and persisted before
// Open returns — this is the explicit first-run initialization step.
// notifier may be nil.
func Open(gateway Gateway, notifier Notifier, logger *slog.Logger) (*Ledger, error) {
	snap := gateway.Load()

	l := &Ledger{
		users:         snap.Users,
		chores:        snap.Chores,
		rewards:       snap.Rewards,
		pending:       snap.PendingRewards,
		currentUserID: snap.CurrentUserID,
		gateway:       gateway,
		notifier:      notifier,
		logger:        logger,
	}

	hasParent := false
	for _, u := range l.users {
		if u.IsParent {
			hasParent = true
			break
		}
	}
	if !hasParent {
		hash, err := auth.HashPassword(defaultParentPassword)
		if err != nil {
			return nil, err
		}
		l.users = append(l.users, model.User{
			ID:       uuid.New(),
			Username: DefaultParentUsername,
			Password: hash,
			IsParent: true,
			FamilyID: uuid.New(),
		})
		if err := l.persist(); err != nil {
			return nil, err
		}
		logger.Info("created default parent account", "username", DefaultParentUsername)
	}

	return l, nil
}

// persist writes the current model through the gateway. Callers hold mu.
func (l *Ledger) persist() error {
	snap := model.Snapshot{
		Users:          l.users,
		Chores:         l.chores,
		Rewards:        l.rewards,
		PendingRewards: l.pending,
		CurrentUserID:  l.currentUserID,
	}
	if err := l.gateway.Save(snap); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the full model, for backup export.
func (l *Ledger) Snapshot() model.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := model.Snapshot{
		Users:          append([]model.User(nil), l.users...),
		Chores:         append([]model.Chore(nil), l.chores...),
		Rewards:        append([]model.Reward(nil), l.rewards...),
		PendingRewards: append([]model.PendingReward(nil), l.pending...),
	}
	if l.currentUserID != nil {
		id := *l.currentUserID
		snap.CurrentUserID = &id
	}
	return snap
}

// Lookup helpers. Callers hold mu; returned pointers index into the
// live slices and must not escape the lock.

func (l *Ledger) userByID(id uuid.UUID) *model.User {
	for i := range l.users {
		if l.users[i].ID == id {
			return &l.users[i]
		}
	}
	return nil
}

func (l *Ledger) choreByID(id uuid.UUID) *model.Chore {
	for i := range l.chores {
		if l.chores[i].ID == id {
			return &l.chores[i]
		}
	}
	return nil
}

func (l *Ledger) rewardByID(id uuid.UUID) *model.Reward {
	for i := range l.rewards {
		if l.rewards[i].ID == id {
			return &l.rewards[i]
		}
	}
	return nil
}

// currentUser returns the session user, or nil when signed out.
func (l *Ledger) currentUser() *model.User {
	if l.currentUserID == nil {
		return nil
	}
	return l.userByID(*l.currentUserID)
}

// currentParent returns the session user if it is a parent.
func (l *Ledger) currentParent() *model.User {
	u := l.currentUser()
	if u == nil || !u.IsParent {
		return nil
	}
	return u
}

func (l *Ledger) notify(fn func(Notifier)) {
	if l.notifier != nil {
		fn(l.notifier)
	}
}
