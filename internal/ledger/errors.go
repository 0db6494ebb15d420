package ledger

import "errors"

// Validation failures returned by ledger operations. A rejected operation
// never leaves the model partially mutated. References to ids that no
// longer exist are silent no-ops rather than errors, since an entity can
// be removed while a UI action on it is still in flight.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyField         = errors.New("required field is empty")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrDuplicateRequest   = errors.New("reward already requested")
)
