package orders

// Status is shared by order headers and order lines.
type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
	StatusDisputed  Status = "disputed"
)

// Line transitions. Every non-pending status is terminal for a line.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusShipped: true, StatusDisputed: true, StatusCancelled: true},
	StatusShipped:   {},
	StatusCancelled: {},
	StatusDisputed:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// ParseStatus rejects anything outside the closed set.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// ParseTarget accepts only the statuses a vendor may request.
func ParseTarget(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusShipped, StatusDisputed:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}
