// Package triage classifies and scores items. Every function is pure and
// deterministic: the same document always yields the same category,
// priority score, and risk level. The keyword tables live in rules.go so
// the logic stays data-driven.
package triage

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/colonyops/steward/internal/core/task"
)

// Input carries the fields relevant to scoring a single item.
type Input struct {
	Subject  string
	Body     string
	Priority task.Priority
	Category task.Category
}

// Categorize assigns a business category to an email by case-insensitive
// substring match over subject, sender, and body. Rules are checked in
// precedence order and the first matching set wins; with no match the
// safe default is admin.
func Categorize(subject, sender, body string) task.Category {
	combined := strings.ToLower(subject + " " + sender + " " + body)

	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(combined, kw) {
				return rule.category
			}
		}
	}

	return task.CategoryAdmin
}

// Score computes the 0-100 priority score. It starts at 50, adds each
// distinct matched signal keyword's weight once (repetition in the text
// does not compound), applies the explicit-priority and category
// adjustments, and clamps to [0,100].
func Score(in Input) int {
	combined := strings.ToLower(in.Subject + " " + in.Body)
	score := 50

	for _, rule := range highSignalRules {
		if strings.Contains(combined, rule.keyword) {
			score += rule.weight
		}
	}
	for _, rule := range mediumSignalRules {
		if strings.Contains(combined, rule.keyword) {
			score += rule.weight
		}
	}

	score += priorityAdjustments[in.Priority]
	score += categoryAdjustments[in.Category]

	return clamp(score, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Risk is the coarse consequence classification driving approval
// expiration and operator attention.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

var amountPattern = regexp.MustCompile(`[0-9][0-9,]*\.?[0-9]*`)

// ParseAmount extracts a numeric amount from free-form currency text
// ("$1,200.50" -> 1200.50). It takes the first run of digits with
// optional thousands separators and decimal point. The second return is
// false when no amount could be parsed; callers treat that as zero and
// log a data-quality warning rather than failing.
func ParseAmount(text string) (float64, bool) {
	match := amountPattern.FindString(text)
	if match == "" {
		return 0, false
	}

	cleaned := strings.TrimSuffix(strings.ReplaceAll(match, ",", ""), ".")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}

	return value, true
}

// PaymentRisk grades a payment amount: over 1000 is high, over 500 is
// medium, anything else low.
func PaymentRisk(amount float64) Risk {
	switch {
	case amount > 1000:
		return RiskHigh
	case amount > 500:
		return RiskMedium
	default:
		return RiskLow
	}
}

// EmailRisk is medium unless the recipient is a known contact.
func EmailRisk(recipient string, knownContacts []string) Risk {
	for _, known := range knownContacts {
		if strings.EqualFold(known, recipient) {
			return RiskLow
		}
	}
	return RiskMedium
}

// SocialPostRisk is always medium: posts carry reputational risk.
func SocialPostRisk() Risk {
	return RiskMedium
}

// FileOperationRisk is high for deletes and low for anything else.
func FileOperationRisk(operation string) Risk {
	if strings.EqualFold(strings.TrimSpace(operation), "delete") {
		return RiskHigh
	}
	return RiskLow
}
