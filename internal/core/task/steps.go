package task

import "strings"

// Step is one checklist entry in a document body. The checklist is
// append-only for new steps; existing steps only ever toggle completion.
type Step struct {
	Text string
	Done bool
}

// ParseSteps extracts "- [ ]" / "- [x]" checklist lines from a body.
func ParseSteps(body string) []Step {
	var steps []Step
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "- [x] "), strings.HasPrefix(trimmed, "- [X] "):
			steps = append(steps, Step{Text: strings.TrimSpace(trimmed[6:]), Done: true})
		case strings.HasPrefix(trimmed, "- [ ] "):
			steps = append(steps, Step{Text: strings.TrimSpace(trimmed[6:]), Done: false})
		}
	}
	return steps
}

// RenderSteps formats steps as markdown checklist lines.
func RenderSteps(steps []Step) string {
	var b strings.Builder
	for i, s := range steps {
		if i > 0 {
			b.WriteString("\n")
		}
		if s.Done {
			b.WriteString("- [x] ")
		} else {
			b.WriteString("- [ ] ")
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// CompletedSteps returns only the steps marked done.
func CompletedSteps(steps []Step) []Step {
	var done []Step
	for _, s := range steps {
		if s.Done {
			done = append(done, s)
		}
	}
	return done
}
