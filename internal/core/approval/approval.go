// Package approval defines the approval-request domain: action types,
// decisions, expiration policy, and the typed details each sensitive
// action carries.
package approval

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ActionType identifies the kind of sensitive action being gated.
type ActionType string

const (
	ActionEmailSend     ActionType = "email_send"
	ActionPayment       ActionType = "payment"
	ActionSocialPost    ActionType = "social_post"
	ActionFileOperation ActionType = "file_operation"
	ActionOther         ActionType = "other"
)

// Decision is the terminal (or pending) resolution of a request.
// Expired and timeout both land the file in Rejected but stay distinct
// for audit purposes.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionExpired  Decision = "expired"
	DecisionTimeout  Decision = "timeout"
)

// Terminal reports whether the decision is one-shot final.
func (d Decision) Terminal() bool {
	return d != DecisionPending && d != ""
}

// TTL returns how long a request of the given type stays open before it
// expires. Computed once at creation.
func TTL(at ActionType) time.Duration {
	switch at {
	case ActionPayment, ActionFileOperation:
		return 24 * time.Hour
	case ActionSocialPost:
		return 72 * time.Hour
	default:
		return 48 * time.Hour
	}
}

// ActionID derives the deterministic request identifier from the action
// type, creation time, and subject.
func ActionID(at ActionType, t time.Time, subject string) string {
	return fmt.Sprintf("%s_%s_%s", at, t.Format("20060102_150405"), sanitize(subject))
}

// Filename returns the document name for an action id.
func Filename(actionID string) string {
	return "APPROVAL_" + actionID + ".md"
}

func sanitize(subject string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		default:
			return -1
		}
	}, strings.TrimSpace(subject))

	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return "action"
	}
	return cleaned
}
