package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lines(statuses ...Status) []Line {
	out := make([]Line, len(statuses))
	for i, s := range statuses {
		out[i] = Line{ProductID: int64(i + 1), Quantity: 1, Status: s}
	}
	return out
}

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		lines   []Line
		target  Status
		want    Status
	}{
		{"shipped and cancelled", StatusPending, lines(StatusShipped, StatusCancelled), StatusShipped, StatusShipped},
		{"shipped and pending", StatusPending, lines(StatusShipped, StatusPending), StatusShipped, StatusPending},
		{"all shipped", StatusPending, lines(StatusShipped, StatusShipped), StatusShipped, StatusShipped},
		{"all disputed", StatusPending, lines(StatusDisputed, StatusDisputed), StatusDisputed, StatusDisputed},
		{"shipped and disputed", StatusPending, lines(StatusShipped, StatusDisputed), StatusDisputed, StatusPending},
		{"no active lines", StatusPending, lines(StatusCancelled, StatusCancelled), StatusShipped, StatusPending},
		{"no lines", StatusPending, nil, StatusShipped, StatusPending},
		{"already derived", StatusShipped, lines(StatusShipped), StatusShipped, StatusShipped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveOrderStatus(tt.current, tt.lines, tt.target))
		})
	}
}

func TestOwnsOrder(t *testing.T) {
	ls := []Line{
		{ProductID: 1, VendorID: 10, Status: StatusPending},
		{ProductID: 2, VendorID: 20, Status: StatusCancelled},
	}
	assert.True(t, ownsOrder(ls, 10))
	assert.False(t, ownsOrder(ls, 20))

	ls[0].Status = StatusCancelled
	assert.False(t, ownsOrder(ls, 10))
	assert.False(t, ownsOrder(nil, 10))
}
