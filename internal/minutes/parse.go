package minutes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

// flexList accepts a JSON array of scalars, a single string, or null.
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			*l = flexList{s}
		} else {
			*l = flexList{}
		}
		return nil
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(flexList, 0, len(raw))
	for _, v := range raw {
		if s := scalarString(v); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// flexString accepts a string, number, bool or null.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return fmt.Errorf("expected a string, got %s", data)
	}
	*s = flexString(scalarString(v))
	return nil
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64, bool:
		return fmt.Sprint(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

type wireTopic struct {
	Topic  flexString `json:"topic"`
	Points flexList   `json:"points"`
}

type wireAction struct {
	Task     flexString `json:"task"`
	Owner    flexString `json:"owner"`
	DueDate  flexString `json:"dueDate"`
	Priority flexString `json:"priority"`
}

type wireMinutes struct {
	Title         flexString   `json:"meetingTitle"`
	DateTime      flexString   `json:"dateTime"`
	Platform      flexString   `json:"platform"`
	Participants  flexList     `json:"participants"`
	Agenda        flexList     `json:"agenda"`
	Discussion    []wireTopic  `json:"discussion"`
	Decisions     flexList     `json:"decisions"`
	ActionItems   []wireAction `json:"actionItems"`
	Risks         flexList     `json:"risks"`
	Dependencies  flexList     `json:"dependencies"`
	OpenQuestions flexList     `json:"openQuestions"`
	Summary       flexList     `json:"summary"`
}

// Parse decodes a model reply into minutes. Code fences and text around
// the outermost JSON object are ignored.
func Parse(raw string) (models.MeetingMinutes, error) {
	body := extractObject(raw)
	if body == "" {
		return models.MeetingMinutes{}, errors.New("no JSON object in response")
	}

	var w wireMinutes
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return models.MeetingMinutes{}, err
	}

	m := models.MeetingMinutes{
		Title:         string(w.Title),
		DateTime:      string(w.DateTime),
		Platform:      string(w.Platform),
		Participants:  w.Participants,
		Agenda:        w.Agenda,
		Decisions:     w.Decisions,
		Risks:         w.Risks,
		Dependencies:  w.Dependencies,
		OpenQuestions: w.OpenQuestions,
		Summary:       w.Summary,
	}
	for _, t := range w.Discussion {
		m.Discussion = append(m.Discussion, models.DiscussionTopic{Topic: string(t.Topic), Points: t.Points})
	}
	for _, a := range w.ActionItems {
		if a.Task == "" {
			continue
		}
		m.ActionItems = append(m.ActionItems, models.ActionItem{
			Task:     string(a.Task),
			Owner:    string(a.Owner),
			DueDate:  string(a.DueDate),
			Priority: string(a.Priority),
		})
	}
	m.Normalize()
	return m, nil
}

func extractObject(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
