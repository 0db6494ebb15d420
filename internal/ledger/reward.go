package ledger

import (
	"strings"

	"github.com/google/uuid"

	"housepoint/internal/model"
)

// AddReward adds a catalog entry to the acting parent's family. A
// negative cost is clamped to zero.
func (l *Ledger) AddReward(name string, cost int) (model.Reward, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	parent := l.currentParent()
	if parent == nil {
		return model.Reward{}, ErrNotAuthorized
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return model.Reward{}, ErrEmptyField
	}
	if cost < 0 {
		cost = 0
	}

	reward := model.Reward{
		ID:       uuid.New(),
		Name:     name,
		Cost:     cost,
		FamilyID: parent.FamilyID,
	}
	l.rewards = append(l.rewards, reward)
	if err := l.persist(); err != nil {
		return model.Reward{}, err
	}
	return reward, nil
}

// RemoveReward deletes a catalog entry. Outstanding requests keep the
// snapshot they took at request time and are unaffected.
func (l *Ledger) RemoveReward(rewardID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentParent() == nil {
		return ErrNotAuthorized
	}

	rewards := l.rewards[:0]
	for _, r := range l.rewards {
		if r.ID != rewardID {
			rewards = append(rewards, r)
		}
	}
	l.rewards = rewards
	return l.persist()
}

// RequestReward files a redemption request for a user. The user must be
// able to afford the reward out of the committed balance — escrow does
// not count — and may not have the same reward already pending. The
// reward is copied into the request so later catalog edits cannot change
// the price owed.
func (l *Ledger) RequestReward(rewardID, userID uuid.UUID) (model.PendingReward, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reward := l.rewardByID(rewardID)
	user := l.userByID(userID)
	if reward == nil || user == nil {
		return model.PendingReward{}, nil
	}

	if user.Points < reward.Cost {
		return model.PendingReward{}, ErrInsufficientPoints
	}
	for _, p := range l.pending {
		if p.UserID == userID && p.Reward.ID == rewardID {
			return model.PendingReward{}, ErrDuplicateRequest
		}
	}

	request := model.PendingReward{
		ID:     uuid.New(),
		UserID: userID,
		Reward: *reward,
	}
	l.pending = append(l.pending, request)
	if err := l.persist(); err != nil {
		return model.PendingReward{}, err
	}
	return request, nil
}

// ApproveReward debits the snapshot cost from the requester, floored at
// zero in case the balance dropped since the request, and removes the
// request.
func (l *Ledger) ApproveReward(requestID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentParent() == nil {
		return ErrNotAuthorized
	}

	idx := -1
	for i, p := range l.pending {
		if p.ID == requestID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	request := l.pending[idx]
	if user := l.userByID(request.UserID); user != nil {
		user.Points = max(0, user.Points-request.Reward.Cost)
	}
	l.pending = append(l.pending[:idx], l.pending[idx+1:]...)
	return l.persist()
}

// DenyReward removes a request without touching any balance.
func (l *Ledger) DenyReward(requestID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentParent() == nil {
		return ErrNotAuthorized
	}

	pending := l.pending[:0]
	for _, p := range l.pending {
		if p.ID != requestID {
			pending = append(pending, p)
		}
	}
	l.pending = pending
	return l.persist()
}
