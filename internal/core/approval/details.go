package approval

import (
	"fmt"
	"strings"

	"github.com/colonyops/steward/internal/core/triage"
)

// Details is the typed payload of an approval request. Each action type
// carries only the fields it needs; there is no untyped bag of values.
type Details interface {
	ActionType() ActionType
	Subject() string
	// Risk grades the consequence of the action. knownContacts feeds the
	// email allow-list rule and is ignored by other variants.
	Risk(knownContacts []string) triage.Risk
	// Specifics renders the action-specific section of the request body.
	Specifics() string
}

// Payment gates an outgoing payment.
type Payment struct {
	Amount  string // free-form currency text, parsed best-effort
	To      string
	Purpose string
	Account string
}

func (p Payment) ActionType() ActionType { return ActionPayment }

func (p Payment) Subject() string { return p.Purpose }

// AmountValue parses the free-form amount. The second return is false
// when nothing numeric could be extracted.
func (p Payment) AmountValue() (float64, bool) {
	return triage.ParseAmount(p.Amount)
}

func (p Payment) Risk(_ []string) triage.Risk {
	amount, _ := p.AmountValue()
	return triage.PaymentRisk(amount)
}

func (p Payment) Specifics() string {
	return section("Payment Details",
		field("Amount", p.Amount),
		field("To", p.To),
		field("Purpose", p.Purpose),
		field("Account", p.Account),
	)
}

// Email gates sending an email response.
type Email struct {
	To    string
	Subj  string
	Draft string
}

func (e Email) ActionType() ActionType { return ActionEmailSend }

func (e Email) Subject() string { return e.Subj }

func (e Email) Risk(knownContacts []string) triage.Risk {
	return triage.EmailRisk(e.To, knownContacts)
}

func (e Email) Specifics() string {
	return section("Email Details",
		field("To", e.To),
		field("Subject", e.Subj),
	) + "\n\n## Draft\n```\n" + e.Draft + "\n```"
}

// SocialPost gates publishing to a social platform.
type SocialPost struct {
	Platform  string
	Content   string
	Scheduled string
}

func (s SocialPost) ActionType() ActionType { return ActionSocialPost }

func (s SocialPost) Subject() string { return s.Platform + " post" }

func (s SocialPost) Risk(_ []string) triage.Risk { return triage.SocialPostRisk() }

func (s SocialPost) Specifics() string {
	scheduled := s.Scheduled
	if scheduled == "" {
		scheduled = "Immediately"
	}
	return section("Social Post Details",
		field("Platform", s.Platform),
		field("Scheduled", scheduled),
	) + "\n\n## Draft\n```\n" + s.Content + "\n```"
}

// FileOperation gates a destructive or sensitive file action.
type FileOperation struct {
	Operation string
	Path      string
	Reason    string
}

func (f FileOperation) ActionType() ActionType { return ActionFileOperation }

func (f FileOperation) Subject() string { return f.Operation + " " + f.Path }

func (f FileOperation) Risk(_ []string) triage.Risk {
	return triage.FileOperationRisk(f.Operation)
}

func (f FileOperation) Specifics() string {
	return section("File Operation Details",
		field("Operation", f.Operation),
		field("File", f.Path),
		field("Reason", f.Reason),
	)
}

// Generic gates any other action type.
type Generic struct {
	Title   string
	Content string
}

func (g Generic) ActionType() ActionType { return ActionOther }

func (g Generic) Subject() string { return g.Title }

func (g Generic) Risk(_ []string) triage.Risk { return triage.RiskMedium }

func (g Generic) Specifics() string {
	return section("Action Details", field("Title", g.Title)) +
		"\n\n## Draft\n```\n" + g.Content + "\n```"
}

func section(title string, fields ...string) string {
	var b strings.Builder
	b.WriteString("### " + title + "\n")
	for _, f := range fields {
		b.WriteString(f + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func field(label, value string) string {
	if value == "" {
		value = "Not specified"
	}
	return fmt.Sprintf("- **%s:** %s", label, value)
}
