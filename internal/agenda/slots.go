package agenda

import "fmt"

// GenerateSlots builds the calendar grid labels from startHour:00 to
// endHour:00 inclusive at the given step. The defaults (8, 20, 30) yield 25
// slots. The function is pure: same inputs, same grid.
func GenerateSlots(startHour, endHour, stepMinutes int) []string {
	if stepMinutes <= 0 || endHour < startHour {
		return nil
	}

	var slots []string
	for m := startHour * 60; m <= endHour*60; m += stepMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// NormalizeTime truncates a stored time value to its HH:mm prefix. Times
// persisted through SQL time columns come back with a seconds component and
// would otherwise never match a grid label.
func NormalizeTime(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}

// SlotIndex returns the grid position of t, or -1 when t is not on the grid.
func SlotIndex(slots []string, t string) int {
	t = NormalizeTime(t)
	for i, s := range slots {
		if s == t {
			return i
		}
	}
	return -1
}

// SlotSpan returns how many grid slots a visit of the given duration
// reserves. Partial slots round up: a 45 minute visit on a 30 minute grid
// still blocks two slots.
func SlotSpan(durationMinutes, stepMinutes int) int {
	if stepMinutes <= 0 || durationMinutes <= 0 {
		return 0
	}
	return (durationMinutes + stepMinutes - 1) / stepMinutes
}

// minutesOfDay parses an HH:mm label into minutes since midnight. Returns
// -1 for malformed input.
func minutesOfDay(t string) int {
	t = NormalizeTime(t)
	if len(t) != 5 || t[2] != ':' {
		return -1
	}
	var h, m int
	if _, err := fmt.Sscanf(t, "%02d:%02d", &h, &m); err != nil {
		return -1
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return -1
	}
	return h*60 + m
}
