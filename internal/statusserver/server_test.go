package statusserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
)

type staticJobs []models.RecordingJob

func (s staticJobs) Jobs() []models.RecordingJob { return s }

func get(t *testing.T, h http.Handler, target string, v interface{}) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if v != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
	}
	return rec.Code
}

func TestHealth(t *testing.T) {
	s := New(staticJobs(nil), store.NewMemory(), logger.Nop())
	var body map[string]string
	if code := get(t, s.Handler(), "/health", &body); code != http.StatusOK {
		t.Fatalf("GET /health = %d", code)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
}

func TestJobs(t *testing.T) {
	jobs := staticJobs{
		{ID: "1", SourcePath: "/in/a.wav", Status: models.JobStatusCompleted},
		{ID: "2", SourcePath: "/in/b.xyz", Status: models.JobStatusFailed, ErrorKind: "UnsupportedFormatError"},
	}
	s := New(jobs, store.NewMemory(), logger.Nop())

	var all []models.RecordingJob
	if code := get(t, s.Handler(), "/jobs", &all); code != http.StatusOK {
		t.Fatalf("GET /jobs = %d", code)
	}
	if len(all) != 2 {
		t.Errorf("GET /jobs returned %d jobs", len(all))
	}

	var failed []models.RecordingJob
	get(t, s.Handler(), "/jobs?status=failed", &failed)
	if len(failed) != 1 || failed[0].ID != "2" {
		t.Errorf("GET /jobs?status=failed = %+v", failed)
	}
}

func TestHistory(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	for i, path := range []string{"/in/a.wav", "/in/b.wav", "/in/c.wav"} {
		err := st.Mark(ctx, store.Record{
			SourcePath: path,
			ModTime:    time.Unix(100, 0),
			JobID:      path,
			Status:     models.JobStatusCompleted,
			FinishedAt: time.Unix(int64(200+i), 0),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	s := New(staticJobs(nil), st, logger.Nop())

	var recs []store.Record
	if code := get(t, s.Handler(), "/history?limit=2", &recs); code != http.StatusOK {
		t.Fatalf("GET /history = %d", code)
	}
	var got []string
	for _, r := range recs {
		got = append(got, r.SourcePath)
	}
	if diff := cmp.Diff([]string{"/in/c.wav", "/in/b.wav"}, got); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}
