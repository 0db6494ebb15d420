package ledger

import (
	"strings"

	"github.com/google/uuid"

	"housepoint/internal/auth"
	"housepoint/internal/model"
)

// Login matches the username case-insensitively and starts a session.
// Parents must supply their password; children sign in with any password,
// including an empty one. The session survives restarts: it is written to
// the store like every other mutation.
func (l *Ledger) Login(username, password string) (model.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.users {
		u := &l.users[i]
		if !strings.EqualFold(u.Username, username) {
			continue
		}
		if u.IsParent && !auth.CheckPassword(u.Password, password) {
			return model.User{}, ErrInvalidCredentials
		}
		id := u.ID
		l.currentUserID = &id
		if err := l.persist(); err != nil {
			return model.User{}, err
		}
		return *u, nil
	}
	return model.User{}, ErrInvalidCredentials
}

// Logout clears the session.
func (l *Ledger) Logout() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentUserID = nil
	return l.persist()
}

// RegisterParent creates a parent account with a fresh family and zero
// balances. It does not sign the new parent in.
func (l *Ledger) RegisterParent(username, password string) (model.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return model.User{}, ErrEmptyField
	}
	if l.usernameTaken(username) {
		return model.User{}, ErrDuplicateUsername
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, err
	}

	parent := model.User{
		ID:       uuid.New(),
		Username: username,
		Password: hash,
		IsParent: true,
		FamilyID: uuid.New(),
	}
	l.users = append(l.users, parent)
	if err := l.persist(); err != nil {
		return model.User{}, err
	}
	return parent, nil
}

// AddChild creates a child in the acting parent's family. Children have
// no password and zero balances.
func (l *Ledger) AddChild(username string) (model.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	parent := l.currentParent()
	if parent == nil {
		return model.User{}, ErrNotAuthorized
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return model.User{}, ErrEmptyField
	}
	if l.usernameTaken(username) {
		return model.User{}, ErrDuplicateUsername
	}

	child := model.User{
		ID:       uuid.New(),
		Username: username,
		FamilyID: parent.FamilyID,
	}
	l.users = append(l.users, child)
	if err := l.persist(); err != nil {
		return model.User{}, err
	}
	return child, nil
}

// RemoveChild deletes a child along with every chore assigned to it and
// every pending reward request it made. Removing a parent is refused; an
// unknown id is a no-op.
func (l *Ledger) RemoveChild(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentParent() == nil {
		return ErrNotAuthorized
	}

	child := l.userByID(id)
	if child == nil {
		return nil
	}
	if child.IsParent {
		return ErrNotAuthorized
	}

	chores := l.chores[:0]
	for _, c := range l.chores {
		if c.AssignedTo == nil || *c.AssignedTo != id {
			chores = append(chores, c)
		}
	}
	l.chores = chores

	pending := l.pending[:0]
	for _, p := range l.pending {
		if p.UserID != id {
			pending = append(pending, p)
		}
	}
	l.pending = pending

	users := l.users[:0]
	for _, u := range l.users {
		if u.ID != id {
			users = append(users, u)
		}
	}
	l.users = users

	return l.persist()
}

// usernameTaken reports whether any user already holds the username,
// compared case-insensitively across the whole directory.
func (l *Ledger) usernameTaken(username string) bool {
	for _, u := range l.users {
		if strings.EqualFold(u.Username, username) {
			return true
		}
	}
	return false
}

// CurrentUser returns the signed-in user, if any.
func (l *Ledger) CurrentUser() (model.User, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := l.currentUser()
	if u == nil {
		return model.User{}, false
	}
	return *u, true
}

// CurrentFamilyID returns the signed-in user's family.
func (l *Ledger) CurrentFamilyID() (uuid.UUID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := l.currentUser()
	if u == nil {
		return uuid.UUID{}, false
	}
	return u.FamilyID, true
}

// ChildrenInFamily lists the children of the session user's family.
// All family projections return empty when no session is active.
func (l *Ledger) ChildrenInFamily() []model.User {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := l.currentUser()
	if u == nil {
		return nil
	}
	var children []model.User
	for _, c := range l.users {
		if c.FamilyID == u.FamilyID && !c.IsParent {
			children = append(children, c)
		}
	}
	return children
}

// ChoresInFamily lists the session family's chores.
func (l *Ledger) ChoresInFamily() []model.Chore {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := l.currentUser()
	if u == nil {
		return nil
	}
	var chores []model.Chore
	for _, c := range l.chores {
		if c.FamilyID == u.FamilyID {
			chores = append(chores, c)
		}
	}
	return chores
}

// RewardsInFamily lists the session family's reward catalog.
func (l *Ledger) RewardsInFamily() []model.Reward {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := l.currentUser()
	if u == nil {
		return nil
	}
	var rewards []model.Reward
	for _, r := range l.rewards {
		if r.FamilyID == u.FamilyID {
			rewards = append(rewards, r)
		}
	}
	return rewards
}

// PendingRequestsInFamily lists reward requests whose requester belongs
// to the session family. Requests from other families are never
// surfaced, even if ids were to collide.
func (l *Ledger) PendingRequestsInFamily() []model.PendingReward {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := l.currentUser()
	if u == nil {
		return nil
	}
	var requests []model.PendingReward
	for _, p := range l.pending {
		requester := l.userByID(p.UserID)
		if requester != nil && requester.FamilyID == u.FamilyID {
			requests = append(requests, p)
		}
	}
	return requests
}
