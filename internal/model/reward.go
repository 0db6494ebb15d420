package model

import "github.com/google/uuid"

// Reward is a catalog entry children can spend points on.
type Reward struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Cost     int       `json:"cost"`
	FamilyID uuid.UUID `json:"familyId"`
}

// PendingReward is an outstanding redemption request. Reward is a copy
// taken at request time, so catalog edits never change the price owed.
type PendingReward struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"userId"`
	Reward Reward    `json:"reward"`
}
