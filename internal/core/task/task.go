// Package task defines the work-item domain model: the kinds of items
// tracked through the lifecycle, their priorities, and the checklist
// steps embedded in document bodies.
package task

import "strings"

// Kind classifies how an item entered the system.
type Kind string

const (
	KindEmail    Kind = "email"
	KindFileDrop Kind = "file_drop"
	KindPayment  Kind = "payment"
	KindGeneric  Kind = "generic"
)

// ParseKind normalizes a frontmatter type value. Unknown values map to
// KindGeneric.
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindEmail:
		return KindEmail
	case KindFileDrop:
		return KindFileDrop
	case KindPayment:
		return KindPayment
	default:
		return KindGeneric
	}
}

// Priority is the explicit priority label carried by an item.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities returns all priorities from most to least urgent.
func Priorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// ParsePriority normalizes a frontmatter priority value. Unknown values
// map to PriorityMedium.
func ParsePriority(s string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	case PriorityCritical:
		return PriorityCritical
	default:
		return PriorityMedium
	}
}

// Urgent reports whether the priority warrants escalation steps.
func (p Priority) Urgent() bool {
	return p == PriorityHigh || p == PriorityCritical
}

// Category labels an email-kind item by business area. Non-email items
// carry no category.
type Category string

const (
	CategoryClient Category = "client"
	CategorySales  Category = "sales"
	CategoryAdmin  Category = "admin"
	CategoryTeam   Category = "team"
	CategorySpam   Category = "spam"
)
