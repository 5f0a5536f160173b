package agenda

import "sort"

// SortWaitlist orders items for display and processing: high priority first,
// then medium, then low; ties keep insertion order (oldest first). The sort
// is stable so equal-priority, equal-timestamp items never swap.
func SortWaitlist(items []WaitlistItem) []WaitlistItem {
	sorted := make([]WaitlistItem, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority.Rank() != sorted[j].Priority.Rank() {
			return sorted[i].Priority.Rank() < sorted[j].Priority.Rank()
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	return sorted
}
