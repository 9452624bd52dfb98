package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPersistenceErrorMatchesKindSentinel(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := NewPersistenceError(ErrorKindConflict, KindCustomer, OpCreate, cause)

	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, cause)
	require.False(t, errors.Is(err, ErrNotFound))
	require.True(t, IsConflict(err))
	require.Equal(t, ErrorKindConflict, KindOf(err))
	require.Contains(t, err.Error(), "customer create: conflict")

	var perr *PersistenceError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &perr)
	require.Equal(t, OpCreate, perr.Op)
	require.Equal(t, KindCustomer, perr.Entity)
}

func TestNewPersistenceErrorNilCause(t *testing.T) {
	require.NoError(t, NewPersistenceError(ErrorKindInternal, KindOrder, OpRead, nil))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "wrapped pool sentinel", err: fmt.Errorf("allocate: %w", ErrPoolExhausted), want: ErrorKindPoolExhausted},
		{name: "plain validation", err: errors.Join(ErrValidation, ErrProductNameRequired), want: ErrorKindValidation},
		{name: "unavailable", err: NewPersistenceError(ErrorKindStoreUnavailable, KindOrder, OpRead, context.DeadlineExceeded), want: ErrorKindStoreUnavailable},
		{name: "unknown", err: errors.New("boom"), want: ErrorKindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPrepareWrapsValidation(t *testing.T) {
	p := &Product{Name: "  ", Quantity: -1}
	err := Prepare(p)
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, ErrProductNameRequired)
	require.ErrorIs(t, err, ErrProductQuantityNegative)

	require.NoError(t, Prepare(&Product{Name: " cpu "}))
	require.NoError(t, Prepare(struct{}{}))
}
