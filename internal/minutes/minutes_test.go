package minutes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
	"github.com/nguyentantai21042004/minutes-flow/pkg/retry"
)

const validReply = `{
  "meetingTitle": "Launch sync",
  "dateTime": "2024-05-01T10:00:00Z",
  "platform": "Google Meet",
  "participants": [],
  "agenda": ["Launch date"],
  "discussion": [{"topic": "Launch", "points": ["Ship on Friday"]}],
  "decisions": ["Ship on Friday"],
  "actionItems": [{"task": "Write release notes", "owner": "Ana", "dueDate": null, "priority": "high"}],
  "risks": [],
  "dependencies": null,
  "openQuestions": ["Who tells support?"],
  "summary": ["Team agreed to ship on Friday."]
}`

// fakeLLM returns replies in order, or errs for the first `failures` calls.
type fakeLLM struct {
	replies  []string
	failures int
	failErr  error
	requests []llm.Request
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	if len(f.requests) <= f.failures {
		return "", f.failErr
	}
	i := len(f.requests) - f.failures - 1
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	return f.replies[i], nil
}

func (f *fakeLLM) Model() string { return "fake-model" }

func testPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   8 * time.Second,
		Sleep:      func(context.Context, time.Duration) error { return nil },
	}
}

var testMeeting = models.MeetingContext{
	Title:        "Meet: launch",
	Participants: []string{"Ana", "Bo"},
	Platform:     "Google Meet",
}

var testTranscript = models.CleanedTranscript{Text: "we ship on friday"}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, m models.MeetingMinutes)
	}{
		{
			name: "plain object",
			raw:  validReply,
			check: func(t *testing.T, m models.MeetingMinutes) {
				if m.Title != "Launch sync" || len(m.ActionItems) != 1 || m.ActionItems[0].DueDate != "" {
					t.Errorf("Parse() = %+v", m)
				}
			},
		},
		{
			name: "code fence and prose",
			raw:  "Here you go:\n```json\n" + validReply + "\n```",
			check: func(t *testing.T, m models.MeetingMinutes) {
				if m.Title != "Launch sync" {
					t.Errorf("Title = %q", m.Title)
				}
			},
		},
		{
			name: "scalar summary and missing lists",
			raw:  `{"meetingTitle":"x","summary":"one line"}`,
			check: func(t *testing.T, m models.MeetingMinutes) {
				if len(m.Summary) != 1 || m.Summary[0] != "one line" {
					t.Errorf("Summary = %v", m.Summary)
				}
				if m.Agenda == nil || m.Discussion == nil || m.ActionItems == nil || m.Dependencies == nil {
					t.Errorf("list fields left nil: %+v", m)
				}
			},
		},
		{name: "not json", raw: "The meeting was about launches.", wantErr: true},
		{name: "truncated", raw: `{"meetingTitle": "x", "agenda": [`, wantErr: true},
		{name: "object where string expected", raw: `{"meetingTitle": {"a": 1}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, m)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	client := &fakeLLM{replies: []string{validReply}}
	gen := New(client, testPolicy(), logger.Nop())

	m, err := gen.Generate(context.Background(), testTranscript, testMeeting)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(client.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(client.requests))
	}
	req := client.requests[0]
	if req.Temperature != 0 || !req.JSON || req.System == "" {
		t.Errorf("request = %+v, want temperature 0, JSON, system prompt", req)
	}
	if !strings.Contains(req.Messages[0].Text, "we ship on friday") || !strings.Contains(req.Messages[0].Text, "Meet: launch") {
		t.Errorf("prompt missing transcript or metadata: %s", req.Messages[0].Text)
	}

	if diff := cmp.Diff([]string{"Ana", "Bo"}, m.Participants); diff != "" {
		t.Errorf("Participants mismatch (-want +got):\n%s", diff)
	}
	if m.Title != "Launch sync" {
		t.Errorf("Title = %q, want model title", m.Title)
	}
	if m.Dependencies == nil || len(m.Dependencies) != 0 {
		t.Errorf("Dependencies = %#v, want empty list", m.Dependencies)
	}
	if gen.Model() != "fake-model" {
		t.Errorf("Model() = %q", gen.Model())
	}
}

func TestGenerateCorrectiveFollowUp(t *testing.T) {
	client := &fakeLLM{replies: []string{"Sure! The minutes are: ...", validReply}}
	gen := New(client, testPolicy(), logger.Nop())

	m, err := gen.Generate(context.Background(), testTranscript, testMeeting)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if m.Title != "Launch sync" {
		t.Errorf("Title = %q", m.Title)
	}
	if len(client.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(client.requests))
	}

	follow := client.requests[1].Messages
	if len(follow) != 3 || follow[1].Role != llm.RoleModel || follow[1].Text != "Sure! The minutes are: ..." || follow[2].Role != llm.RoleUser {
		t.Errorf("follow-up messages = %+v", follow)
	}
}

func TestGenerateParseError(t *testing.T) {
	client := &fakeLLM{replies: []string{"nope", "still nope"}}
	gen := New(client, testPolicy(), logger.Nop())

	_, err := gen.Generate(context.Background(), testTranscript, testMeeting)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Generate() error = %v, want ParseError", err)
	}
	if parseErr.Raw != "still nope" {
		t.Errorf("Raw = %q, want last reply", parseErr.Raw)
	}
	if len(client.requests) != 2 {
		t.Errorf("requests = %d, want exactly 2", len(client.requests))
	}
}

func TestGenerateRetriesTransientErrors(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		failErr   error
		wantErr   bool
		wantCalls int
	}{
		{"unavailable twice", 2, errors.New("Error 503, Status: UNAVAILABLE"), false, 3},
		{"exhausted", 4, errors.New("Error 503, Status: UNAVAILABLE"), true, 4},
		{"permanent", 1, errors.New("Error 400, Status: INVALID_ARGUMENT"), true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeLLM{replies: []string{validReply}, failures: tt.failures, failErr: tt.failErr}
			gen := New(client, testPolicy(), logger.Nop())

			_, err := gen.Generate(context.Background(), testTranscript, testMeeting)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Generate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var svcErr *ServiceError
				if !errors.As(err, &svcErr) {
					t.Errorf("Generate() error = %T, want *ServiceError", err)
				}
			}
			if len(client.requests) != tt.wantCalls {
				t.Errorf("requests = %d, want %d", len(client.requests), tt.wantCalls)
			}
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	run := func() (models.MeetingMinutes, []byte, string) {
		gen := New(&fakeLLM{replies: []string{validReply}}, testPolicy(), logger.Nop())
		m, err := gen.Generate(context.Background(), testTranscript, testMeeting)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		js, err := RenderJSON(m)
		if err != nil {
			t.Fatal(err)
		}
		return m, js, RenderMarkdown(m)
	}

	m1, js1, md1 := run()
	m2, js2, md2 := run()

	if diff := cmp.Diff(m1, m2); diff != "" {
		t.Errorf("minutes differ between runs (-first +second):\n%s", diff)
	}
	if string(js1) != string(js2) || md1 != md2 {
		t.Error("renderings differ between runs")
	}
}

func TestRenderMarkdown(t *testing.T) {
	m, err := Parse(validReply)
	if err != nil {
		t.Fatal(err)
	}
	md := RenderMarkdown(m)

	for _, want := range []string{
		"# Minutes of Meeting: Launch sync\n",
		"- Date & Time: 2024-05-01T10:00:00Z\n",
		"- Participants: —\n",
		"## Key Discussion Points\n- Launch\n  - Ship on Friday\n",
		"- Task: Write release notes | Owner: Ana | Due: — | Priority: high\n",
		"- Risks:\n  - —\n- Dependencies:\n  - —\n",
		"## Summary Overview\n- Team agreed to ship on Friday.\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestRenderJSONNeverNull(t *testing.T) {
	js, err := RenderJSON(models.MeetingMinutes{Title: "empty"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(js), "null") {
		t.Errorf("RenderJSON() contains null: %s", js)
	}
}

func TestRenderDocx(t *testing.T) {
	m, err := Parse(validReply)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "mom.docx")
	if err := RenderDocx(m, path); err != nil {
		t.Fatalf("RenderDocx() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 4 || string(data[:2]) != "PK" {
		t.Errorf("mom.docx is not a zip container (%d bytes)", len(data))
	}
}
