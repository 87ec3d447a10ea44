package sessions

import (
	"context"
	"errors"
	"log"
)

// FieldUpdater is the write side of the live tree store.
type FieldUpdater interface {
	Update(ctx context.Context, key string, fields map[string]any) error
}

// RecheckNotifier is told about every recheck that reached the tree.
type RecheckNotifier interface {
	Rechecked(ctx context.Context, userID string)
}

var ErrNoUser = errors.New("user id is required")

// Rechecker marks a finished session as acknowledged by an operator.
type Rechecker struct {
	tree     FieldUpdater
	notifier RecheckNotifier
}

// NewRechecker builds the command; notifier may be nil.
func NewRechecker(tree FieldUpdater, notifier RecheckNotifier) *Rechecker {
	return &Rechecker{tree: tree, notifier: notifier}
}

// Recheck sets isChecked=true on the session of userID and touches nothing
// else. It trusts the caller's view that the user is no longer buying and
// does not retry.
func (r *Rechecker) Recheck(ctx context.Context, userID string) error {
	if userID == "" {
		return &WriteError{UserID: userID, Err: ErrNoUser}
	}
	if err := r.tree.Update(ctx, userID, map[string]any{FieldChecked: true}); err != nil {
		return &WriteError{UserID: userID, Err: err}
	}
	log.Printf("sessions: rechecked user=%s", userID)
	if r.notifier != nil {
		r.notifier.Rechecked(ctx, userID)
	}
	return nil
}
