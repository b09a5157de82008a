// Package audio reads, writes and splits PCM WAV files.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	formatPCM  = 1
	headerSize = 44
)

// maxFmtChunk bounds the fmt chunk; WAVE_FORMAT_EXTENSIBLE needs 40 bytes.
const maxFmtChunk = 64

// ErrNotWAV is returned for files without a RIFF/WAVE header.
var ErrNotWAV = errors.New("not a valid WAV file")

// Info describes a WAV file's format and where its samples live.
type Info struct {
	AudioFormat   int
	Channels      int
	SampleRate    int
	BitsPerSample int
	DataOffset    int64
	DataSize      int64
}

// BlockAlign is the size in bytes of one frame across all channels.
func (i Info) BlockAlign() int {
	return i.Channels * i.BitsPerSample / 8
}

// Frames is the number of sample frames in the data chunk.
func (i Info) Frames() int64 {
	if i.BlockAlign() == 0 {
		return 0
	}
	return i.DataSize / int64(i.BlockAlign())
}

// Duration is the playback length in seconds.
func (i Info) Duration() float64 {
	if i.SampleRate == 0 {
		return 0
	}
	return float64(i.Frames()) / float64(i.SampleRate)
}

// IsCanonical reports whether the file is mono 16-bit PCM at sampleRate.
func (i Info) IsCanonical(sampleRate int) bool {
	return i.AudioFormat == formatPCM && i.Channels == 1 && i.BitsPerSample == 16 && i.SampleRate == sampleRate
}

// ReadInfo parses the RIFF header of path. A data chunk that claims more
// bytes than the file holds is clamped to what is actually there.
func ReadInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Info{}, err
	}

	info, err := readHeader(f)
	if err != nil {
		return Info{}, err
	}

	if remaining := st.Size() - info.DataOffset; info.DataSize > remaining || info.DataSize == 0 {
		info.DataSize = remaining
	}
	if ba := int64(info.BlockAlign()); ba > 0 {
		info.DataSize -= info.DataSize % ba
	}
	return info, nil
}

func readHeader(r io.ReadSeeker) (Info, error) {
	riff := make([]byte, 12)
	if _, err := io.ReadFull(r, riff); err != nil {
		return Info{}, ErrNotWAV
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Info{}, ErrNotWAV
	}

	var info Info
	var foundFmt bool
	offset := int64(12)

	for {
		hdr := make([]byte, 8)
		if _, err := io.ReadFull(r, hdr); err != nil {
			return Info{}, fmt.Errorf("read chunk header: %w", err)
		}
		offset += 8

		id := string(hdr[0:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:8]))

		switch id {
		case "fmt ":
			if size < 16 || size > maxFmtChunk {
				return Info{}, fmt.Errorf("fmt chunk size %d out of range", size)
			}
			data := make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return Info{}, fmt.Errorf("read fmt chunk: %w", err)
			}
			info.AudioFormat = int(binary.LittleEndian.Uint16(data[0:2]))
			info.Channels = int(binary.LittleEndian.Uint16(data[2:4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(data[4:8]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(data[14:16]))
			foundFmt = true
			offset += size

		case "data":
			if !foundFmt {
				return Info{}, fmt.Errorf("data chunk before fmt chunk")
			}
			info.DataOffset = offset
			info.DataSize = size
			return info, nil

		default:
			if _, err := r.Seek(size, io.SeekCurrent); err != nil {
				return Info{}, fmt.Errorf("skip chunk %s: %w", id, err)
			}
			offset += size
		}

		// chunks are word aligned
		if size%2 != 0 {
			if _, err := r.Seek(1, io.SeekCurrent); err != nil {
				return Info{}, err
			}
			offset++
		}
	}
}

// WriteHeader writes a canonical 44-byte PCM header for dataSize bytes.
func WriteHeader(w io.Writer, sampleRate, channels, bitsPerSample int, dataSize int64) error {
	blockAlign := channels * bitsPerSample / 8
	h := make([]byte, headerSize)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+dataSize))
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], formatPCM)
	binary.LittleEndian.PutUint16(h[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(h[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:36], uint16(bitsPerSample))
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataSize))
	_, err := w.Write(h)
	return err
}

// WriteFile writes mono 16-bit samples as a WAV file.
func WriteFile(path string, samples []int16, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteHeader(f, sampleRate, 1, 16, int64(len(samples))*2); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, samples); err != nil {
		return err
	}
	return f.Close()
}

// RepairHeader rewrites the RIFF and data sizes from the file length. Used
// after a capture process was stopped before it could finalize the header.
func RepairHeader(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := readHeader(f)
	if err != nil {
		return err
	}
	st, err := f.Stat()
	if err != nil {
		return err
	}

	dataSize := st.Size() - info.DataOffset
	if dataSize == info.DataSize {
		return nil
	}

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(st.Size()-8))
	if _, err := f.WriteAt(buf, 4); err != nil {
		return fmt.Errorf("write riff size: %w", err)
	}
	binary.LittleEndian.PutUint32(buf, uint32(dataSize))
	if _, err := f.WriteAt(buf, info.DataOffset-4); err != nil {
		return fmt.Errorf("write data size: %w", err)
	}
	return f.Close()
}
