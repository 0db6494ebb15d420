package model

import "github.com/google/uuid"

// User is a parent or child account. Password holds a bcrypt hash for
// parents and is empty for children. Points is the committed, spendable
// balance; PendingPoints is escrow credited for self-reported chores and
// not spendable until a parent approves.
type User struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Password      string    `json:"password"`
	Points        int       `json:"points"`
	PendingPoints int       `json:"pendingPoints"`
	IsParent      bool      `json:"isParent"`
	FamilyID      uuid.UUID `json:"familyId"`
}
