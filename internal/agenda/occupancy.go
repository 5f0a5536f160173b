package agenda

// SlotOccupancy records which appointment claims a slot. IsStart is true on
// the first slot of a multi-slot visit so the day grid renders one block
// sized to the full span instead of one block per slot.
type SlotOccupancy struct {
	Appointment Appointment
	IsStart     bool
}

// ResolveOccupancy projects one day's appointments for a professional onto
// the slot grid. Cancelled and no-show visits do not claim slots. If two
// appointments claim the same slot (a data inconsistency, creation should
// have rejected the overlap) the later one in iteration order wins. That is
// a fallback for rendering, not a guarantee.
func ResolveOccupancy(slots []string, appts []Appointment, stepMinutes int) map[string]SlotOccupancy {
	occupied := make(map[string]SlotOccupancy)

	for _, appt := range appts {
		if !appt.Occupies() {
			continue
		}
		start := SlotIndex(slots, appt.Time)
		if start < 0 {
			continue
		}
		span := SlotSpan(appt.Duration, stepMinutes)
		for i := 0; i < span && start+i < len(slots); i++ {
			occupied[slots[start+i]] = SlotOccupancy{
				Appointment: appt,
				IsStart:     i == 0,
			}
		}
	}

	return occupied
}

// slotRange quantizes a visit onto grid slot boundaries, returning the
// half-open minute interval it blocks. A visit starting off-grid (09:15 on a
// 30 minute grid) is widened to the slots it touches.
func slotRange(t string, durationMinutes, stepMinutes int) (lo, hi int, ok bool) {
	start := minutesOfDay(t)
	if start < 0 || durationMinutes <= 0 || stepMinutes <= 0 {
		return 0, 0, false
	}
	lo = (start / stepMinutes) * stepMinutes
	end := start + durationMinutes
	hi = ((end + stepMinutes - 1) / stepMinutes) * stepMinutes
	return lo, hi, true
}

// Overlaps reports whether two appointments for the same professional block
// intersecting slot ranges on the same day.
func Overlaps(a, b Appointment, stepMinutes int) bool {
	if a.ProfessionalID != b.ProfessionalID || a.Date != b.Date {
		return false
	}
	aLo, aHi, ok := slotRange(a.Time, a.Duration, stepMinutes)
	if !ok {
		return false
	}
	bLo, bHi, ok := slotRange(b.Time, b.Duration, stepMinutes)
	if !ok {
		return false
	}
	return aLo < bHi && bLo < aHi
}
