package core

// Priorities shared by tasks and announcements.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

func IsPriority(p string) bool {
	return ContainsString(Priorities, p)
}

// PriorityOrDefault returns `p` or PriorityMedium when `p` is empty.
func PriorityOrDefault(p string) string {
	if p == "" {
		return PriorityMedium
	}
	return p
}
