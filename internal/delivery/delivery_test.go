package delivery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

func testBundle(t *testing.T, enhanced string) Bundle {
	t.Helper()
	wav := filepath.Join(t.TempDir(), "capture.wav")
	if err := audio.WriteFile(wav, make([]int16, 1600), 16000); err != nil {
		t.Fatal(err)
	}
	return Bundle{
		AudioPath: wav,
		Transcript: models.Transcript{
			Text:     "write a haiku",
			Segments: []models.TranscriptSegment{{Start: 0, End: 0.1, Text: "write a haiku"}},
		},
		Enhanced: enhanced,
		Metadata: models.JobMetadata{JobID: "live", Mode: "transcribe"},
	}
}

func newTestDelivery(cfg config.DeliveryConfig, copyErr error) (*Delivery, *string) {
	var copied string
	d := New(cfg, logger.Nop())
	d.copy = func(s string) error {
		if copyErr != nil {
			return copyErr
		}
		copied = s
		return nil
	}
	d.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return d, &copied
}

func TestDeliverClipboardOnlyByDefault(t *testing.T) {
	out := t.TempDir()
	d, copied := newTestDelivery(config.DeliveryConfig{OutputDir: out}, nil)

	res, err := d.Deliver(context.Background(), testBundle(t, ""))
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if !res.Copied || *copied != "write a haiku" {
		t.Errorf("clipboard = (%v, %q)", res.Copied, *copied)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 || res.Dir != "" {
		t.Errorf("files written without save: %v", entries)
	}
}

func TestDeliverSave(t *testing.T) {
	tests := []struct {
		name     string
		enhanced string
		want     []string
	}{
		{"plain", "", []string{"audio_original.wav", "transcript.txt", "transcript_segments.json", "metadata.json"}},
		{"enhanced", "## Task\nWrite a haiku.", []string{"audio_original.wav", "transcript.txt", "enhanced_prompt.txt", "transcript_segments.json", "metadata.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			d, copied := newTestDelivery(config.DeliveryConfig{OutputDir: out, SaveToDisk: true}, nil)

			res, err := d.Deliver(context.Background(), testBundle(t, tt.enhanced))
			if err != nil {
				t.Fatalf("Deliver() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, res.Files); diff != "" {
				t.Errorf("files mismatch (-want +got):\n%s", diff)
			}
			if filepath.Base(res.Dir) != "20240506_070809_recording" {
				t.Errorf("dir = %q", res.Dir)
			}
			for _, name := range tt.want {
				if _, err := os.Stat(filepath.Join(res.Dir, name)); err != nil {
					t.Errorf("missing %s", name)
				}
			}
			if tt.enhanced != "" && *copied != tt.enhanced {
				t.Errorf("clipboard = %q, want enhanced prompt", *copied)
			}
		})
	}
}

func TestDeliverClipboardFailureIsWarning(t *testing.T) {
	d, _ := newTestDelivery(config.DeliveryConfig{OutputDir: t.TempDir()}, errors.New("no display"))
	res, err := d.Deliver(context.Background(), testBundle(t, ""))
	if err != nil || res.Copied {
		t.Errorf("Deliver() = (%+v, %v), want not copied and no error", res, err)
	}
}

func TestDeliverNoClipboard(t *testing.T) {
	d, copied := newTestDelivery(config.DeliveryConfig{OutputDir: t.TempDir(), NoClipboard: true}, nil)
	res, err := d.Deliver(context.Background(), testBundle(t, ""))
	if err != nil || res.Copied || *copied != "" {
		t.Errorf("Deliver() copied with clipboard disabled")
	}
}

func TestDeliverSaveCollision(t *testing.T) {
	out := t.TempDir()
	d, _ := newTestDelivery(config.DeliveryConfig{OutputDir: out, SaveToDisk: true, NoClipboard: true}, nil)
	first, err := d.Deliver(context.Background(), testBundle(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Deliver(context.Background(), testBundle(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if first.Dir == second.Dir || !strings.HasPrefix(filepath.Base(second.Dir), "20240506_070809_recording_") {
		t.Errorf("dirs = %q, %q", first.Dir, second.Dir)
	}
}
