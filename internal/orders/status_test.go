package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusShipped, true},
		{StatusPending, StatusDisputed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPending, false},
		{StatusShipped, StatusDisputed, false},
		{StatusShipped, StatusCancelled, false},
		{StatusDisputed, StatusShipped, false},
		{StatusCancelled, StatusShipped, false},
		{Status("lost"), StatusShipped, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "shipped", "cancelled", "disputed"} {
		st, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), st)
	}
	for _, s := range []string{"", "SHIPPED", "canceled", "refunded"} {
		_, err := ParseStatus(s)
		assert.ErrorIs(t, err, ErrInvalidStatus, s)
	}
}

func TestParseTarget(t *testing.T) {
	st, err := ParseTarget("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, st)

	st, err = ParseTarget("disputed")
	require.NoError(t, err)
	assert.Equal(t, StatusDisputed, st)

	for _, s := range []string{"pending", "cancelled", "lost"} {
		_, err := ParseTarget(s)
		assert.ErrorIs(t, err, ErrInvalidStatus, s)
	}
}
