package service

import (
	"errors"
	"fmt"
)

// ErrInternalInconsistency marks a state-machine bug: a profile field the
// current stage depends on was never filled. It is never silently defaulted
// because that would corrupt the financial decision.
var ErrInternalInconsistency = errors.New("session profile is internally inconsistent")

// CollaboratorError wraps a failed external call (issuance). The turn fails
// but the session stage is untouched, so the same input can be retried.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator failed: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
