package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

// Job directory file names.
const (
	FileTranscript  = "transcript.txt"
	FileSegments    = "transcript_segments.json"
	FileMinutesJSON = "mom.json"
	FileMinutesMD   = "mom.md"
	FileMinutesDocx = "mom.docx"
	FileMetadata    = "metadata.json"
	FileAudioPrefix = "audio_original"
)

type segmentRecord struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	StartTS string  `json:"start_ts"`
	EndTS   string  `json:"end_ts"`
	Text    string  `json:"text"`
	Speaker *string `json:"speaker"`
}

type segmentsFile struct {
	Segments []segmentRecord `json:"segments"`
}

// WriteSegments writes segments with both numeric and HH:MM:SS.mmm times.
func WriteSegments(path string, segments []models.TranscriptSegment) error {
	out := segmentsFile{Segments: make([]segmentRecord, 0, len(segments))}
	for _, s := range segments {
		out.Segments = append(out.Segments, segmentRecord{
			Start:   s.Start,
			End:     s.End,
			StartTS: models.FormatTimestamp(s.Start),
			EndTS:   models.FormatTimestamp(s.End),
			Text:    s.Text,
		})
	}
	return writeJSON(path, out, os.O_TRUNC)
}

// WriteMetadata writes meta once. It fails if path already exists.
func WriteMetadata(path string, meta models.JobMetadata) error {
	return writeJSON(path, meta, os.O_EXCL)
}

// WriteText writes s followed by a newline.
func WriteText(path, s string) error {
	return os.WriteFile(path, []byte(strings.TrimRight(s, "\n")+"\n"), 0644)
}

// CopyFile copies src to dst without touching src.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// AudioFileName is the name of the copied source recording.
func AudioFileName(sourcePath string) string {
	ext := strings.ToLower(filepath.Ext(sourcePath))
	if ext == "" {
		ext = ".bin"
	}
	return FileAudioPrefix + ext
}

func writeJSON(path string, v interface{}, flag int) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|flag, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// JobDirName derives "{timestamp}_{name}" from the source file.
func JobDirName(sourcePath string, at time.Time) string {
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	base = strings.Trim(unsafeName.ReplaceAllString(base, "_"), "_.")
	if base == "" {
		base = "recording"
	}
	return fmt.Sprintf("%s_%s", at.Format("20060102_150405"), base)
}

// UniqueDir returns root/name, or root/name_<suffix> when that exists.
func UniqueDir(root, name, suffix string) string {
	dir := filepath.Join(root, name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return dir
	}
	return filepath.Join(root, name+"_"+suffix)
}

// StagingDir is the hidden sibling of final that a job writes into. The
// suffix keeps concurrent jobs with the same final name apart.
func StagingDir(final, suffix string) string {
	return filepath.Join(filepath.Dir(final), "."+filepath.Base(final)+"_"+suffix+".partial")
}

// commitDir renames staging onto final. When another job claimed final in
// the meantime it falls back to final_suffix.
func commitDir(staging, final, suffix string) (string, error) {
	err := os.Rename(staging, final)
	if err == nil {
		return final, nil
	}
	if _, statErr := os.Stat(final); statErr != nil || strings.HasSuffix(final, "_"+suffix) {
		return "", err
	}

	alt := final + "_" + suffix
	if err := os.Rename(staging, alt); err != nil {
		return "", err
	}
	return alt, nil
}
