package triage

import "github.com/colonyops/steward/internal/core/task"

// categoryRule binds one category to its keyword set. Rules are
// evaluated in order; the first set with any match wins.
type categoryRule struct {
	category task.Category
	keywords []string
}

// categoryRules in precedence order. Client outranks spam so that a
// message matching both is never silently dropped.
var categoryRules = []categoryRule{
	{task.CategoryClient, []string{"client", "customer", "account", "support", "service"}},
	{task.CategorySales, []string{"interest", "inquiry", "quote", "price", "offer", "buy", "purchase"}},
	{task.CategoryAdmin, []string{"admin", "hr", "office", "meeting", "schedule", "policy", "procedure"}},
	{task.CategoryTeam, []string{"team", "internal", "department", "colleague", "staff"}},
	{task.CategorySpam, []string{"spam", "advertisement", "marketing", "promotion", "sale"}},
}

// scoringRule is one signal keyword and the weight it contributes. Each
// keyword counts once per document regardless of how often it occurs.
type scoringRule struct {
	keyword string
	weight  int
}

var highSignalRules = []scoringRule{
	{"urgent", 20}, {"asap", 20}, {"emergency", 20}, {"immediately", 20},
	{"critical", 20}, {"important", 20}, {"deadline", 20}, {"due", 20},
	{"invoice", 20}, {"payment", 20}, {"bill", 20}, {"money", 20},
	{"financial", 20}, {"legal", 20}, {"compliance", 20},
}

var mediumSignalRules = []scoringRule{
	{"follow", 10}, {"remind", 10}, {"meeting", 10}, {"schedule", 10},
	{"appointment", 10}, {"project", 10}, {"report", 10}, {"proposal", 10},
	{"contract", 10}, {"agreement", 10},
}

// Explicit-priority adjustments applied after keyword scoring.
var priorityAdjustments = map[task.Priority]int{
	task.PriorityCritical: 25,
	task.PriorityHigh:     15,
	task.PriorityLow:      -10,
}

// Category adjustments: spam is demoted, revenue-bearing categories are
// promoted.
var categoryAdjustments = map[task.Category]int{
	task.CategorySpam:   -30,
	task.CategoryClient: 10,
	task.CategorySales:  10,
}
