package sessions

import "fmt"

// WriteError is returned when the recheck write does not reach the tree.
type WriteError struct {
	UserID string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("recheck %s: %v", e.UserID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// SubscriptionError ends a projection: the live tree feed failed or closed.
type SubscriptionError struct {
	Err error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("session feed lost: %v", e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }
