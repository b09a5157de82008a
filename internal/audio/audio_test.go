package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const rate = 16000

// tone returns sec seconds of a 440 Hz sine with the given silent ranges.
func tone(sec float64, silences ...[2]float64) []int16 {
	n := int(sec * rate)
	out := make([]int16, n)
	for i := range out {
		t := float64(i) / rate
		silent := false
		for _, s := range silences {
			if t >= s[0] && t < s[1] {
				silent = true
			}
		}
		if !silent {
			out[i] = int16(10000 * math.Sin(2*math.Pi*440*t))
		}
	}
	return out
}

func TestReadInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wav")
	if err := WriteFile(path, tone(2.5), rate); err != nil {
		t.Fatal(err)
	}

	info, err := ReadInfo(path)
	if err != nil {
		t.Fatalf("ReadInfo() error = %v", err)
	}
	if got := info.Duration(); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("Duration() = %v, want %v", got, 2.5)
	}
	if !info.IsCanonical(rate) {
		t.Errorf("IsCanonical(%d) = false for %+v", rate, info)
	}
	if info.IsCanonical(44100) {
		t.Error("IsCanonical(44100) = true, want false")
	}
	if info.DataOffset != headerSize {
		t.Errorf("DataOffset = %v, want %v", info.DataOffset, headerSize)
	}
}

func TestReadInfoNotWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wav")
	if err := os.WriteFile(path, []byte("ID3 definitely an mp3"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadInfo(path); err != ErrNotWAV {
		t.Errorf("ReadInfo() error = %v, want %v", err, ErrNotWAV)
	}
}

func TestReadInfoOversizedFmtChunk(t *testing.T) {
	var buf []byte
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, 36)
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 0xFFFFFFF0)
	buf = append(buf, make([]byte, 16)...)

	path := filepath.Join(t.TempDir(), "a.wav")
	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadInfo(path); err == nil {
		t.Error("ReadInfo() error = nil, want fmt chunk size error")
	}
}

func TestSplitSingleChunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wav")
	if err := WriteFile(path, tone(3), rate); err != nil {
		t.Fatal(err)
	}

	chunks, err := Split(path, t.TempDir(), SplitOptions{MaxSeconds: 900, MaxBytes: 25 << 20})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if chunks[0].Path != path || chunks[0].Offset != 0 {
		t.Errorf("chunk = %+v, want the source at offset 0", chunks[0])
	}
}

func TestSplitAtSilence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.wav")
	samples := tone(10, [2]float64{3.5, 3.7}, [2]float64{7.2, 7.4})
	if err := WriteFile(path, samples, rate); err != nil {
		t.Fatal(err)
	}

	chunks, err := Split(path, filepath.Join(dir, "chunks"), SplitOptions{MaxSeconds: 4, SearchWindow: 1})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3: %+v", len(chunks), chunks)
	}

	if cut := chunks[1].Offset; cut < 3.5 || cut > 3.7 {
		t.Errorf("first cut at %v, want inside silence [3.5, 3.7]", cut)
	}
	if cut := chunks[2].Offset; cut < 7.2 || cut > 7.4 {
		t.Errorf("second cut at %v, want inside silence [7.2, 7.4]", cut)
	}

	var total float64
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunks[%d].Index = %d", i, c.Index)
		}
		if c.Duration > 4 {
			t.Errorf("chunks[%d].Duration = %v, want <= 4", i, c.Duration)
		}
		if i > 0 {
			prev := chunks[i-1]
			if math.Abs(prev.Offset+prev.Duration-c.Offset) > 1e-9 {
				t.Errorf("chunk %d starts at %v, previous ends at %v", i, c.Offset, prev.Offset+prev.Duration)
			}
		}
		info, err := ReadInfo(c.Path)
		if err != nil {
			t.Fatalf("ReadInfo(chunk %d) error = %v", i, err)
		}
		if math.Abs(info.Duration()-c.Duration) > 1e-9 {
			t.Errorf("chunk %d file duration %v, want %v", i, info.Duration(), c.Duration)
		}
		total += c.Duration
	}
	if math.Abs(total-10) > 1e-9 {
		t.Errorf("total duration = %v, want 10", total)
	}
}

func TestSplitByBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.wav")
	if err := WriteFile(path, tone(5), rate); err != nil {
		t.Fatal(err)
	}

	// two seconds of 16-bit mono plus a header
	maxBytes := int64(2*rate*2 + headerSize)
	chunks, err := Split(path, dir, SplitOptions{MaxBytes: maxBytes, SearchWindow: 0.5})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("len(chunks) = %d, want at least 3", len(chunks))
	}
	for i, c := range chunks {
		if c.Size > maxBytes {
			t.Errorf("chunks[%d].Size = %d, want <= %d", i, c.Size, maxBytes)
		}
	}
}

func TestRepairHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	// header written before any samples were known
	if err := WriteHeader(f, rate, 1, 16, 0); err != nil {
		t.Fatal(err)
	}
	if err := binary.Write(f, binary.LittleEndian, tone(1.5)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := RepairHeader(path); err != nil {
		t.Fatalf("RepairHeader() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint32(raw[40:44]); got != uint32(1.5*rate*2) {
		t.Errorf("data size = %d, want %d", got, uint32(1.5*rate*2))
	}
	if got := binary.LittleEndian.Uint32(raw[4:8]); got != uint32(len(raw)-8) {
		t.Errorf("riff size = %d, want %d", got, len(raw)-8)
	}
}
