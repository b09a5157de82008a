package models

// DiscussionTopic groups the points raised about one topic.
type DiscussionTopic struct {
	Topic  string   `json:"topic"`
	Points []string `json:"points"`
}

type ActionItem struct {
	Task     string `json:"task"`
	Owner    string `json:"owner"`
	DueDate  string `json:"dueDate"`
	Priority string `json:"priority"`
}

// MeetingMinutes is the structured result extracted from a transcript.
type MeetingMinutes struct {
	Title         string            `json:"meetingTitle"`
	DateTime      string            `json:"dateTime"`
	Platform      string            `json:"platform"`
	Participants  []string          `json:"participants"`
	Agenda        []string          `json:"agenda"`
	Discussion    []DiscussionTopic `json:"discussion"`
	Decisions     []string          `json:"decisions"`
	ActionItems   []ActionItem      `json:"actionItems"`
	Risks         []string          `json:"risks"`
	Dependencies  []string          `json:"dependencies"`
	OpenQuestions []string          `json:"openQuestions"`
	Summary       []string          `json:"summary"`
}

// Normalize replaces absent lists with empty ones so every list field
// serializes as [] rather than null.
func (m *MeetingMinutes) Normalize() {
	for _, l := range []*[]string{
		&m.Participants,
		&m.Agenda,
		&m.Decisions,
		&m.Risks,
		&m.Dependencies,
		&m.OpenQuestions,
		&m.Summary,
	} {
		if *l == nil {
			*l = []string{}
		}
	}
	if m.Discussion == nil {
		m.Discussion = []DiscussionTopic{}
	}
	for i := range m.Discussion {
		if m.Discussion[i].Points == nil {
			m.Discussion[i].Points = []string{}
		}
	}
	if m.ActionItems == nil {
		m.ActionItems = []ActionItem{}
	}
}
