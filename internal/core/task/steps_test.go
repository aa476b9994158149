package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSteps(t *testing.T) {
	body := `# Task: review invoice

## Action Steps
- [ ] Review the original request in detail
- [x] Determine the appropriate priority level
- [X] Draft a response
not a step
- [] also not a step
`

	steps := ParseSteps(body)

	assert.Equal(t, []Step{
		{Text: "Review the original request in detail", Done: false},
		{Text: "Determine the appropriate priority level", Done: true},
		{Text: "Draft a response", Done: true},
	}, steps)

	assert.Len(t, CompletedSteps(steps), 2)
}

func TestRenderSteps_RoundTrip(t *testing.T) {
	steps := []Step{
		{Text: "Verify payment details", Done: true},
		{Text: "Escalate for approval", Done: false},
	}

	rendered := RenderSteps(steps)
	assert.Equal(t, "- [x] Verify payment details\n- [ ] Escalate for approval", rendered)
	assert.Equal(t, steps, ParseSteps(rendered))
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"high", PriorityHigh},
		{"CRITICAL", PriorityCritical},
		{"low", PriorityLow},
		{"medium", PriorityMedium},
		{"", PriorityMedium},
		{"bogus", PriorityMedium},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePriority(tt.in), tt.in)
	}
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindEmail, ParseKind("email"))
	assert.Equal(t, KindFileDrop, ParseKind("file_drop"))
	assert.Equal(t, KindGeneric, ParseKind("unknown"))
	assert.Equal(t, KindGeneric, ParseKind(""))
	assert.True(t, PriorityCritical.Urgent())
	assert.False(t, PriorityMedium.Urgent())
}
