package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	t.Run("parses valid frontmatter", func(t *testing.T) {
		content := "---\ntype: email\nsubject: Invoice overdue\npriority: high\n---\n\nPlease pay promptly.\n"

		fm, body := ParseDocument(content)

		assert.Equal(t, "email", fm.Type)
		assert.Equal(t, "Invoice overdue", fm.Subject)
		assert.Equal(t, "high", fm.Priority)
		assert.Equal(t, "Please pay promptly.", body)
	})

	t.Run("missing header returns whole content as body", func(t *testing.T) {
		content := "# Just a note\n\nno header here\n"

		fm, body := ParseDocument(content)

		assert.Equal(t, Frontmatter{}, fm)
		assert.Equal(t, "# Just a note\n\nno header here", body)
	})

	t.Run("unterminated header returns whole content as body", func(t *testing.T) {
		content := "---\ntype: email\nsubject: broken\n"

		fm, body := ParseDocument(content)

		assert.Equal(t, Frontmatter{}, fm)
		assert.Equal(t, "---\ntype: email\nsubject: broken", body)
	})

	t.Run("malformed yaml degrades to empty metadata", func(t *testing.T) {
		content := "---\ntype: [unclosed\n---\n\nbody text\n"

		fm, body := ParseDocument(content)

		assert.Equal(t, Frontmatter{}, fm)
		assert.Contains(t, body, "body text")
	})

	t.Run("empty content", func(t *testing.T) {
		fm, body := ParseDocument("")

		assert.Equal(t, Frontmatter{}, fm)
		assert.Empty(t, body)
	})
}

func TestRenderDocument_RoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	fm := Frontmatter{
		Type:          "email",
		From:          "client@example.com",
		Subject:       "URGENT: Invoice overdue",
		Priority:      "high",
		Category:      "client",
		PriorityScore: 95,
		Status:        "pending",
		Created:       created,
	}
	body := "## Email Content\n\nThe invoice is 30 days overdue."

	content, err := RenderDocument(fm, body)
	require.NoError(t, err)

	got, gotBody := ParseDocument(content)
	assert.Equal(t, fm, got)
	assert.Equal(t, body, gotBody)
}

func TestRenderDocument_OmitsZeroFields(t *testing.T) {
	content, err := RenderDocument(Frontmatter{Type: "generic", Subject: "hello"}, "body")
	require.NoError(t, err)

	assert.NotContains(t, content, "completed_at")
	assert.NotContains(t, content, "expires")
	assert.NotContains(t, content, "priority_score")
}
