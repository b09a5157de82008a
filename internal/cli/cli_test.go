package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zalando/go-keyring"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/credential"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
	"github.com/nguyentantai21042004/minutes-flow/internal/pipeline"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
)

func testDeps(t *testing.T) (*Dependencies, *bytes.Buffer) {
	t.Helper()
	keyring.MockInit()
	cfg := config.Default()
	cfg.Store.Backend = "sqlite"
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "jobs.db")
	var out bytes.Buffer
	return &Dependencies{
		Config:      cfg,
		Logger:      logger.Nop(),
		Credentials: credential.New("minutes-flow-test"),
		Out:         &out,
	}, &out
}

func execute(t *testing.T, deps *Dependencies, args ...string) error {
	t.Helper()
	root := NewRootCmd(deps)
	root.SetArgs(args)
	root.SetOut(deps.Out)
	root.SetErr(deps.Out)
	return root.ExecuteContext(context.Background())
}

func TestParseParticipants(t *testing.T) {
	got := parseParticipants(" Ana, Bo ,,Chi ")
	if diff := cmp.Diff([]string{"Ana", "Bo", "Chi"}, got); diff != "" {
		t.Errorf("parseParticipants() mismatch (-want +got):\n%s", diff)
	}
	if got := parseParticipants(""); got != nil {
		t.Errorf("parseParticipants(\"\") = %v, want nil", got)
	}
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"", time.Time{}, false},
		{"2024-03-05T10:30:00Z", time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), false},
		{"2024-03-05 10:30", time.Date(2024, 3, 5, 10, 30, 0, 0, time.Local), false},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local), false},
		{"yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseDateTime(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDateTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseDateTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMask(t *testing.T) {
	if got := mask("sk-abcdef1234"); got != "****1234" {
		t.Errorf("mask() = %q", got)
	}
	if got := mask("abc"); got != "****" {
		t.Errorf("mask(short) = %q", got)
	}
}

func TestCredentialCommands(t *testing.T) {
	deps, out := testDeps(t)

	if err := execute(t, deps, "credential", "set", "GEMINI_API_KEYS", "key-one-9876"); err != nil {
		t.Fatalf("credential set error = %v", err)
	}
	out.Reset()
	if err := execute(t, deps, "credential", "get", "GEMINI_API_KEYS"); err != nil {
		t.Fatalf("credential get error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "****9876" {
		t.Errorf("credential get = %q, want masked", got)
	}
	out.Reset()
	if err := execute(t, deps, "credential", "get", "--show", "GEMINI_API_KEYS"); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "key-one-9876" {
		t.Errorf("credential get --show = %q", got)
	}
}

func TestJobsCommand(t *testing.T) {
	deps, out := testDeps(t)

	if err := execute(t, deps, "jobs"); err != nil {
		t.Fatalf("jobs error = %v", err)
	}
	if !strings.Contains(out.String(), "No jobs found") {
		t.Errorf("jobs on empty store = %q", out.String())
	}

	ctx := context.Background()
	st, err := store.Open(ctx, deps.Config.Store)
	if err != nil {
		t.Fatal(err)
	}
	err = st.Mark(ctx, store.Record{
		SourcePath: "/in/standup.wav",
		ModTime:    time.Unix(1, 0),
		JobID:      "j1",
		Status:     models.JobStatusCompleted,
		OutputDir:  "/out/20240101_000000_standup",
		FinishedAt: time.Now(),
	})
	st.Close()
	if err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := execute(t, deps, "jobs"); err != nil {
		t.Fatalf("jobs error = %v", err)
	}
	for _, want := range []string{"/in/standup.wav", "/out/20240101_000000_standup"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("jobs output missing %q:\n%s", want, out.String())
		}
	}
}

func TestProcessRequiresCredentials(t *testing.T) {
	deps, _ := testDeps(t)
	t.Setenv(credential.OpenAIKey, "")
	src := filepath.Join(t.TempDir(), "call.wav")
	if err := writeEmptyWAV(src); err != nil {
		t.Fatal(err)
	}

	err := execute(t, deps, "process", src)
	if err == nil || !strings.Contains(err.Error(), credential.OpenAIKey) {
		t.Errorf("process without key error = %v, want missing %s", err, credential.OpenAIKey)
	}
}

func TestProcessURLDownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	deps, _ := testDeps(t)
	deps.Config.Paths.Temp = t.TempDir()

	err := execute(t, deps, "process", srv.URL+"/standup.mp3")
	if err == nil || !strings.Contains(err.Error(), pipeline.KindDownload) {
		t.Fatalf("process error = %v, want %s", err, pipeline.KindDownload)
	}
	if entries, _ := os.ReadDir(deps.Config.Paths.Temp); len(entries) != 0 {
		t.Errorf("temp dir holds %d entries after failed download, want none", len(entries))
	}
}

func TestVersionCommand(t *testing.T) {
	deps, out := testDeps(t)
	if err := execute(t, deps, "version"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "minutes dev") {
		t.Errorf("version = %q", out.String())
	}
}

func writeEmptyWAV(path string) error {
	return audio.WriteFile(path, make([]int16, 160), 16000)
}
