package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "jobs.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	out := map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}

	if addr := os.Getenv("MINUTES_TEST_REDIS_ADDR"); addr != "" {
		rs, err := OpenRedis(ctx, RedisOptions{Addr: addr, Prefix: "minutes-test:" + uuid.NewString() + ":"})
		if err != nil {
			t.Fatalf("OpenRedis() error = %v", err)
		}
		out["redis"] = rs
	}

	t.Cleanup(func() {
		for _, s := range out {
			s.Close()
		}
	})
	return out
}

func record(path string, mod time.Time, status models.JobStatus, finished time.Time) Record {
	return Record{
		SourcePath: path,
		ModTime:    mod,
		JobID:      "job-" + filepath.Base(path),
		Status:     status,
		Attempts:   1,
		OutputDir:  "/out/" + filepath.Base(path),
		FinishedAt: finished,
	}
}

func TestStoreHasAndMark(t *testing.T) {
	ctx := context.Background()
	mod := time.Unix(1_700_000_000, 123)
	later := mod.Add(time.Second)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := s.Has(ctx, "/in/a.wav", mod)
			if err != nil || ok {
				t.Fatalf("Has() before Mark = (%v, %v), want (false, nil)", ok, err)
			}

			if err := s.Mark(ctx, record("/in/a.wav", mod, models.JobStatusCompleted, later)); err != nil {
				t.Fatalf("Mark() error = %v", err)
			}

			ok, err = s.Has(ctx, "/in/a.wav", mod)
			if err != nil || !ok {
				t.Errorf("Has() after Mark = (%v, %v), want (true, nil)", ok, err)
			}

			// A new mtime is a new version of the file.
			ok, err = s.Has(ctx, "/in/a.wav", later)
			if err != nil || ok {
				t.Errorf("Has() for new mtime = (%v, %v), want (false, nil)", ok, err)
			}
		})
	}
}

func TestStoreRejectsNonTerminal(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, status := range []models.JobStatus{models.JobStatusPending, models.JobStatusInProgress} {
				err := s.Mark(ctx, record("/in/b.wav", time.Unix(10, 0), status, time.Unix(20, 0)))
				var nt *NotTerminalError
				if !errors.As(err, &nt) {
					t.Errorf("Mark(%s) error = %v, want NotTerminalError", status, err)
				}
			}
			ok, _ := s.Has(ctx, "/in/b.wav", time.Unix(10, 0))
			if ok {
				t.Error("Has() = true for rejected record")
			}
		})
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a := record("/in/a.wav", base, models.JobStatusCompleted, base.Add(1*time.Minute))
			b := record("/in/b.wav", base, models.JobStatusFailed, base.Add(3*time.Minute))
			b.ErrorKind = "UnsupportedFormat"
			b.Error = "unsupported format"
			c := record("/in/c.wav", base, models.JobStatusCompleted, base.Add(2*time.Minute))
			for _, rec := range []Record{a, b, c} {
				if err := s.Mark(ctx, rec); err != nil {
					t.Fatalf("Mark() error = %v", err)
				}
			}

			got, err := s.List(ctx, 0)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if diff := cmp.Diff([]Record{b, c, a}, got); diff != "" {
				t.Errorf("List() mismatch (-want +got):\n%s", diff)
			}

			got, err = s.List(ctx, 2)
			if err != nil {
				t.Fatalf("List(2) error = %v", err)
			}
			if diff := cmp.Diff([]Record{b, c}, got); diff != "" {
				t.Errorf("List(2) mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStoreMarkOverwrites(t *testing.T) {
	ctx := context.Background()
	mod := time.Unix(100, 0)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			first := record("/in/a.wav", mod, models.JobStatusFailed, time.Unix(200, 0))
			second := record("/in/a.wav", mod, models.JobStatusCompleted, time.Unix(300, 0))
			second.Attempts = 2
			if err := s.Mark(ctx, first); err != nil {
				t.Fatal(err)
			}
			if err := s.Mark(ctx, second); err != nil {
				t.Fatal(err)
			}
			got, err := s.List(ctx, 0)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff([]Record{second}, got); diff != "" {
				t.Errorf("List() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "jobs.db")
	mod := time.Unix(42, 0)

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Mark(ctx, record("/in/a.wav", mod, models.JobStatusCompleted, time.Unix(50, 0))); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ok, err := s.Has(ctx, "/in/a.wav", mod)
	if err != nil || !ok {
		t.Errorf("Has() after reopen = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestFromJob(t *testing.T) {
	finished := time.Unix(99, 0)
	job := models.RecordingJob{
		ID:         "abc",
		SourcePath: "/in/a.wav",
		ModTime:    time.Unix(10, 0),
		Status:     models.JobStatusFailed,
		Attempts:   1,
		ErrorKind:  "ConversionFailed",
		Error:      "ffmpeg exited",
		FinishedAt: &finished,
	}
	want := Record{
		SourcePath: "/in/a.wav",
		ModTime:    time.Unix(10, 0),
		JobID:      "abc",
		Status:     models.JobStatusFailed,
		Attempts:   1,
		ErrorKind:  "ConversionFailed",
		Error:      "ffmpeg exited",
		FinishedAt: finished,
	}
	if diff := cmp.Diff(want, FromJob(job)); diff != "" {
		t.Errorf("FromJob() mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StoreConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	s.Close()

	s, err = Open(ctx, config.StoreConfig{Backend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "j.db")})
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	s.Close()

	if _, err := Open(ctx, config.StoreConfig{Backend: "etcd"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(etcd) error = %v, want ErrUnknownBackend", err)
	}
}
