package minutes

import (
	"encoding/json"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

const placeholder = "—"

// RenderJSON returns the indented JSON form of m.
func RenderJSON(m models.MeetingMinutes) ([]byte, error) {
	m = clone(m)
	m.Normalize()
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// RenderMarkdown returns the human-readable minutes. The output depends
// only on m.
func RenderMarkdown(m models.MeetingMinutes) string {
	var parts []string
	add := func(lines ...string) { parts = append(parts, lines...) }

	add("# Minutes of Meeting: "+strings.TrimSpace(m.Title), "")
	add("- Date & Time: " + orPlaceholder(strings.TrimSpace(m.DateTime)))
	add("- Platform: " + orPlaceholder(strings.TrimSpace(m.Platform)))
	add("- Participants: "+orPlaceholder(strings.Join(m.Participants, ", ")), "")

	add("## Agenda")
	add(bullets("- ", m.Agenda)...)
	add("")

	add("## Key Discussion Points")
	if len(m.Discussion) == 0 {
		add("- " + placeholder)
	}
	for _, d := range m.Discussion {
		add("- " + d.Topic)
		for _, p := range d.Points {
			add("  - " + p)
		}
	}
	add("")

	add("## Decisions Taken")
	add(bullets("- ", m.Decisions)...)
	add("")

	add("## Action Items")
	if len(m.ActionItems) == 0 {
		add("- " + placeholder)
	}
	for _, it := range m.ActionItems {
		add("- Task: " + it.Task +
			" | Owner: " + orPlaceholder(it.Owner) +
			" | Due: " + orPlaceholder(it.DueDate) +
			" | Priority: " + orPlaceholder(it.Priority))
	}
	add("")

	add("## Risks / Dependencies")
	add("- Risks:")
	add(bullets("  - ", m.Risks)...)
	add("- Dependencies:")
	add(bullets("  - ", m.Dependencies)...)
	add("")

	add("## Open Questions")
	add(bullets("- ", m.OpenQuestions)...)
	add("")

	add("## Summary Overview")
	add(bullets("- ", m.Summary)...)

	return strings.Join(parts, "\n") + "\n"
}

func bullets(prefix string, items []string) []string {
	if len(items) == 0 {
		return []string{prefix + placeholder}
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = prefix + it
	}
	return out
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func clone(m models.MeetingMinutes) models.MeetingMinutes {
	c := m
	c.Participants = append([]string(nil), m.Participants...)
	c.Agenda = append([]string(nil), m.Agenda...)
	c.Decisions = append([]string(nil), m.Decisions...)
	c.Risks = append([]string(nil), m.Risks...)
	c.Dependencies = append([]string(nil), m.Dependencies...)
	c.OpenQuestions = append([]string(nil), m.OpenQuestions...)
	c.Summary = append([]string(nil), m.Summary...)
	c.ActionItems = append([]models.ActionItem(nil), m.ActionItems...)
	c.Discussion = make([]models.DiscussionTopic, len(m.Discussion))
	for i, d := range m.Discussion {
		c.Discussion[i] = models.DiscussionTopic{Topic: d.Topic, Points: append([]string(nil), d.Points...)}
	}
	return c
}
