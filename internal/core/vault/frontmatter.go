package vault

import (
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds the structured header of a vault document. It covers
// the union of item and approval-request keys; unused keys are omitted on
// write. All fields are best-effort on read: missing or malformed
// frontmatter produces zero values, never an error.
type Frontmatter struct {
	Type          string    `yaml:"type,omitempty"`
	From          string    `yaml:"from,omitempty"`
	To            string    `yaml:"to,omitempty"`
	Subject       string    `yaml:"subject,omitempty"`
	Received      time.Time `yaml:"received,omitempty"`
	Priority      string    `yaml:"priority,omitempty"`
	Category      string    `yaml:"category,omitempty"`
	PriorityScore int       `yaml:"priority_score,omitempty"`
	Status        string    `yaml:"status,omitempty"`
	Created       time.Time `yaml:"created,omitempty"`
	CompletedAt   time.Time `yaml:"completed_at,omitempty"`
	SourceFile    string    `yaml:"source_file,omitempty"`
	TaskID        string    `yaml:"task_id,omitempty"`
	ActionType    string    `yaml:"action_type,omitempty"`
	ActionID      string    `yaml:"action_id,omitempty"`
	RiskLevel     string    `yaml:"risk_level,omitempty"`
	Expires       time.Time `yaml:"expires,omitempty"`
	Decision      string    `yaml:"decision,omitempty"`
}

const delimiter = "---"

// ParseDocument splits raw content into frontmatter and body. Front
// matter must be delimited by "---" on its own line at the start of the
// content. Content without a well-formed header yields a zero-value
// Frontmatter and the whole content as body.
func ParseDocument(content string) (Frontmatter, string) {
	trimmed := strings.TrimLeft(content, "\n")
	if !strings.HasPrefix(trimmed, delimiter) {
		return Frontmatter{}, strings.TrimSpace(content)
	}

	rest := trimmed[len(delimiter):]
	rest = strings.TrimPrefix(rest, "\n")

	idx := strings.Index(rest, "\n"+delimiter)
	if idx < 0 {
		return Frontmatter{}, strings.TrimSpace(content)
	}

	header := rest[:idx]
	body := rest[idx+len("\n"+delimiter):]
	// Drop the remainder of the closing delimiter line.
	if nl := strings.Index(body, "\n"); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return Frontmatter{}, strings.TrimSpace(content)
	}

	return fm, strings.TrimSpace(body)
}

// RenderDocument serializes frontmatter and body into document content.
func RenderDocument(fm Frontmatter, body string) (string, error) {
	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(delimiter + "\n")
	b.Write(header)
	b.WriteString(delimiter + "\n\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String(), nil
}
