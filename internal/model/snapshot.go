package model

import "github.com/google/uuid"

// Snapshot is the complete persisted state of the ledger. The current
// session user is part of the model: login and logout are durable.
type Snapshot struct {
	Users          []User
	Chores         []Chore
	Rewards        []Reward
	PendingRewards []PendingReward
	CurrentUserID  *uuid.UUID
}
