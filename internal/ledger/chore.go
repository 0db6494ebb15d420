package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"housepoint/internal/model"
)

// AddChore creates an unassigned chore in the acting parent's family.
// A non-positive basePoints falls back to the default of 10.
func (l *Ledger) AddChore(title, description string, due *time.Time, basePoints int) (model.Chore, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	parent := l.currentParent()
	if parent == nil {
		return model.Chore{}, ErrNotAuthorized
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return model.Chore{}, ErrEmptyField
	}
	if basePoints <= 0 {
		basePoints = model.DefaultBasePoints
	}

	chore := model.Chore{
		ID:          uuid.New(),
		Title:       title,
		Description: strings.TrimSpace(description),
		DueDate:     due,
		BasePoints:  basePoints,
		FamilyID:    parent.FamilyID,
	}
	l.chores = append(l.chores, chore)
	if err := l.persist(); err != nil {
		return model.Chore{}, err
	}
	return chore, nil
}

// AssignChore hands a chore to a user in the acting parent's family.
// Both completion flags are cleared and the chore is re-homed to the
// assignee's family. No points move on assignment.
func (l *Ledger) AssignChore(choreID, userID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	parent := l.currentParent()
	if parent == nil {
		return ErrNotAuthorized
	}

	chore := l.choreByID(choreID)
	if chore == nil {
		return nil
	}
	user := l.userByID(userID)
	if user == nil {
		return nil
	}
	if user.FamilyID != parent.FamilyID {
		return ErrNotAuthorized
	}

	id := user.ID
	chore.AssignedTo = &id
	chore.IsCompleted = false
	chore.IsMarkedDoneByChild = false
	chore.FamilyID = user.FamilyID

	if err := l.persist(); err != nil {
		return err
	}

	assignee, assigned := *user, *chore
	l.notify(func(n Notifier) {
		n.ChoreAssigned(assignee, assigned)
		if assigned.DueDate != nil {
			n.ChoreReminder(assignee, assigned)
		}
	})
	return nil
}

// ToggleChoreDone flips the child's self-report flag. Marking done
// credits basePoints to the assignee's escrow; toggling again while the
// report is still pending reverses both. Unassigned chores are a no-op.
func (l *Ledger) ToggleChoreDone(choreID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	chore := l.choreByID(choreID)
	if chore == nil || chore.AssignedTo == nil {
		return nil
	}
	user := l.userByID(*chore.AssignedTo)
	if user == nil {
		return nil
	}

	if chore.IsMarkedDoneByChild {
		chore.IsMarkedDoneByChild = false
		user.PendingPoints -= chore.BasePoints
		if user.PendingPoints < 0 {
			user.PendingPoints = 0
		}
	} else {
		chore.IsMarkedDoneByChild = true
		user.PendingPoints += chore.BasePoints
	}

	return l.persist()
}

// ApproveChore accepts a child's self-reported chore. The transfer is a
// pure custody move: min(basePoints, escrow) leaves PendingPoints and
// lands in Points, so approval can never mint more than was escrowed.
func (l *Ledger) ApproveChore(choreID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentParent() == nil {
		return ErrNotAuthorized
	}

	chore := l.choreByID(choreID)
	if chore == nil || !chore.IsMarkedDoneByChild || chore.AssignedTo == nil {
		return nil
	}
	user := l.userByID(*chore.AssignedTo)
	if user == nil {
		return nil
	}

	chore.IsCompleted = true
	chore.IsMarkedDoneByChild = false

	earned := min(chore.BasePoints, user.PendingPoints)
	user.PendingPoints -= earned
	user.Points += earned

	if err := l.persist(); err != nil {
		return err
	}

	assignee, approved := *user, *chore
	l.notify(func(n Notifier) {
		n.ChoreApproved(assignee, approved)
	})
	return nil
}

// UnapproveChore reverses an approval, moving min(basePoints, Points)
// back into escrow. The clamp keeps Points from ever going negative.
func (l *Ledger) UnapproveChore(choreID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentParent() == nil {
		return ErrNotAuthorized
	}

	chore := l.choreByID(choreID)
	if chore == nil || !chore.IsCompleted || chore.AssignedTo == nil {
		return nil
	}
	user := l.userByID(*chore.AssignedTo)
	if user == nil {
		return nil
	}

	chore.IsCompleted = false

	back := min(chore.BasePoints, user.Points)
	user.Points -= back
	user.PendingPoints += back

	return l.persist()
}

// AddChoreImage attaches an evidence blob to a chore.
func (l *Ledger) AddChoreImage(choreID uuid.UUID, image []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	chore := l.choreByID(choreID)
	if chore == nil {
		return nil
	}
	chore.Image = image
	return l.persist()
}

// RemoveChoreImage clears a chore's evidence blob.
func (l *Ledger) RemoveChoreImage(choreID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	chore := l.choreByID(choreID)
	if chore == nil {
		return nil
	}
	chore.Image = nil
	return l.persist()
}
