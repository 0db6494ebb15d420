package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultBasePoints is the points value a chore gets when none is given.
const DefaultBasePoints = 10

// Chore is a unit of household work. AssignedTo is nil while unassigned.
// IsCompleted (parent-approved) and IsMarkedDoneByChild (self-reported,
// awaiting review) are never both true.
type Chore struct {
	ID                  uuid.UUID  `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	AssignedTo          *uuid.UUID `json:"assignedTo"`
	IsCompleted         bool       `json:"isCompleted"`
	IsMarkedDoneByChild bool       `json:"isMarkedDoneByChild"`
	Image               []byte     `json:"image,omitempty"`
	DueDate             *time.Time `json:"dueDate,omitempty"`
	BasePoints          int        `json:"basePoints"`
	FamilyID            uuid.UUID  `json:"familyId"`
}
