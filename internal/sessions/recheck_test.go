package sessions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phampho1103/UITPAY-Web/internal/livetree"
)

type updateCall struct {
	key    string
	fields map[string]any
}

type recordingUpdater struct {
	calls []updateCall
	err   error
}

func (r *recordingUpdater) Update(ctx context.Context, key string, fields map[string]any) error {
	r.calls = append(r.calls, updateCall{key: key, fields: fields})
	return r.err
}

type notifierSpy struct{ users []string }

func (n *notifierSpy) Rechecked(ctx context.Context, userID string) {
	n.users = append(n.users, userID)
}

func TestRecheck_WritesOnlyIsChecked(t *testing.T) {
	up := &recordingUpdater{}
	spy := &notifierSpy{}

	err := NewRechecker(up, spy).Recheck(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, up.calls, 1)
	assert.Equal(t, "u1", up.calls[0].key)
	assert.Equal(t, map[string]any{"isChecked": true}, up.calls[0].fields)
	assert.Equal(t, []string{"u1"}, spy.users)
}

func TestRecheck_LeavesOtherFieldsUntouched(t *testing.T) {
	tree := livetree.NewMemory()
	ctx := context.Background()
	require.NoError(t, tree.Put(ctx, "u1", map[string]any{
		"isBuying": false, "isPaid": true, "quantity": 3, "totalprice": 150000, "isChecked": false,
	}))

	require.NoError(t, NewRechecker(tree, nil).Recheck(ctx, "u1"))

	snap, err := tree.Snapshot(ctx)
	require.NoError(t, err)
	s, err := DecodeSession(snap["u1"])
	require.NoError(t, err)
	assert.True(t, s.IsChecked)
	assert.True(t, s.IsPaid)
	assert.False(t, s.IsBuying)
	assert.Equal(t, 3, s.Quantity)
	assert.Equal(t, "150000", s.TotalPrice.String())
}

func TestRecheck_WriteFailureSurfaces(t *testing.T) {
	denied := errors.New("permission denied")
	up := &recordingUpdater{err: denied}
	spy := &notifierSpy{}

	err := NewRechecker(up, spy).Recheck(context.Background(), "u1")

	var werr *WriteError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "u1", werr.UserID)
	assert.ErrorIs(t, err, denied)
	assert.Len(t, up.calls, 1, "no retry")
	assert.Empty(t, spy.users)
}

func TestRecheck_EmptyUserID(t *testing.T) {
	up := &recordingUpdater{}

	err := NewRechecker(up, nil).Recheck(context.Background(), "")

	assert.ErrorIs(t, err, ErrNoUser)
	assert.Empty(t, up.calls)
}
