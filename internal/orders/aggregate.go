package orders

// deriveOrderStatus computes the header status after lines moved towards
// target. Cancelled lines are ignored. The header becomes target only when
// every remaining line is at target; otherwise, and when no line remains,
// current is kept.
func deriveOrderStatus(current Status, lines []Line, target Status) Status {
	active := 0
	for _, l := range lines {
		if l.Status == StatusCancelled {
			continue
		}
		active++
		if l.Status != target {
			return current
		}
	}
	if active == 0 {
		return current
	}
	return target
}
