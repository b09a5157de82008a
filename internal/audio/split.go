package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// Chunk is one sequential piece of a split recording.
type Chunk struct {
	Index    int
	Path     string
	Offset   float64 // seconds from the start of the source
	Duration float64
	Size     int64
}

// SplitOptions bounds each chunk by duration and encoded size. A cut is
// moved back to the quietest frame within SearchWindow of the nominal cut.
type SplitOptions struct {
	MaxSeconds   float64
	MaxBytes     int64
	SearchWindow float64
	FrameSize    int
}

// DefaultSearchWindow is how far before a nominal cut Split looks for silence.
const DefaultSearchWindow = 30.0

// Split cuts the PCM WAV at path into chunks written under dir. When the
// file already fits it is returned as the single chunk, uncopied.
func Split(path, dir string, opts SplitOptions) ([]Chunk, error) {
	info, err := ReadInfo(path)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	if info.AudioFormat != formatPCM || info.BitsPerSample != 16 {
		return nil, fmt.Errorf("split needs 16-bit PCM, got format %d with %d bits", info.AudioFormat, info.BitsPerSample)
	}

	total := info.Frames()
	maxFrames := maxChunkFrames(info, opts)
	if total <= maxFrames {
		return []Chunk{{
			Path:     path,
			Duration: info.Duration(),
			Size:     info.DataOffset + info.DataSize,
		}}, nil
	}

	if opts.SearchWindow <= 0 {
		opts.SearchWindow = DefaultSearchWindow
	}
	if opts.FrameSize <= 0 {
		opts.FrameSize = info.SampleRate * 30 / 1000
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}

	var chunks []Chunk
	for start := int64(0); start < total; {
		end := start + maxFrames
		if end >= total {
			end = total
		} else {
			window := int64(opts.SearchWindow * float64(info.SampleRate))
			if window > maxFrames/2 {
				window = maxFrames / 2
			}
			cut, err := quietestCut(f, info, end-window, end, opts.FrameSize)
			if err != nil {
				return nil, err
			}
			if cut > start {
				end = cut
			}
		}

		chunk, err := writeChunk(f, info, dir, len(chunks), start, end)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
		start = end
	}

	return chunks, nil
}

func maxChunkFrames(info Info, opts SplitOptions) int64 {
	maxFrames := int64(math.MaxInt64)
	if opts.MaxSeconds > 0 {
		maxFrames = int64(opts.MaxSeconds * float64(info.SampleRate))
	}
	if opts.MaxBytes > 0 {
		if byBytes := (opts.MaxBytes - headerSize) / int64(info.BlockAlign()); byBytes < maxFrames {
			maxFrames = byBytes
		}
	}
	if maxFrames < 1 {
		maxFrames = 1
	}
	return maxFrames
}

// quietestCut returns the start of the lowest-RMS frame in [from, to).
// Later frames win ties so chunks stay as long as possible.
func quietestCut(r io.ReaderAt, info Info, from, to int64, frameSize int) (int64, error) {
	if from < 0 {
		from = 0
	}
	if to-from < int64(frameSize) {
		return to, nil
	}

	ba := int64(info.BlockAlign())
	buf := make([]byte, (to-from)*ba)
	if _, err := r.ReadAt(buf, info.DataOffset+from*ba); err != nil && err != io.EOF {
		return 0, fmt.Errorf("read samples: %w", err)
	}

	best := to
	bestRMS := math.Inf(1)
	frames := (to - from) / int64(frameSize)
	for i := int64(0); i < frames; i++ {
		var sum float64
		for j := int64(0); j < int64(frameSize); j++ {
			off := (i*int64(frameSize) + j) * ba
			s := float64(int16(binary.LittleEndian.Uint16(buf[off:off+2]))) / 32768.0
			sum += s * s
		}
		rms := math.Sqrt(sum / float64(frameSize))
		if rms <= bestRMS {
			bestRMS = rms
			best = from + i*int64(frameSize)
		}
	}
	return best, nil
}

func writeChunk(src io.ReaderAt, info Info, dir string, index int, start, end int64) (Chunk, error) {
	ba := int64(info.BlockAlign())
	size := (end - start) * ba
	path := filepath.Join(dir, fmt.Sprintf("chunk_%03d.wav", index))

	out, err := os.Create(path)
	if err != nil {
		return Chunk{}, fmt.Errorf("create chunk: %w", err)
	}
	defer out.Close()

	if err := WriteHeader(out, info.SampleRate, info.Channels, info.BitsPerSample, size); err != nil {
		return Chunk{}, fmt.Errorf("write chunk header: %w", err)
	}
	section := io.NewSectionReader(src, info.DataOffset+start*ba, size)
	if _, err := io.Copy(out, section); err != nil {
		return Chunk{}, fmt.Errorf("write chunk samples: %w", err)
	}
	if err := out.Close(); err != nil {
		return Chunk{}, err
	}

	rate := float64(info.SampleRate)
	return Chunk{
		Index:    index,
		Path:     path,
		Offset:   float64(start) / rate,
		Duration: float64(end-start) / rate,
		Size:     size + headerSize,
	}, nil
}
