package intake

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
)

// Normalize validates sourcePath and returns the canonical WAV for it
func (i *implIntake) Normalize(ctx context.Context, sourcePath, workDir string) (Result, error) {
	ext := strings.ToLower(filepath.Ext(sourcePath))
	if !IsSupported(sourcePath) {
		return Result{}, &UnsupportedFormatError{Path: sourcePath, Ext: ext}
	}

	st, err := os.Stat(sourcePath)
	if err != nil {
		return Result{}, fmt.Errorf("stat source: %w", err)
	}
	if st.IsDir() {
		return Result{}, &UnsupportedFormatError{Path: sourcePath, Ext: ext}
	}
	if i.maxFileSize > 0 && st.Size() > i.maxFileSize {
		return Result{}, &FileTooLargeError{Path: sourcePath, Size: st.Size(), Limit: i.maxFileSize}
	}
	if st.Size() == 0 {
		return Result{}, &ConversionError{Path: sourcePath, Err: errors.New("file is empty")}
	}

	res := Result{
		SourcePath: sourcePath,
		SourceExt:  ext,
		SourceSize: st.Size(),
	}

	if ext == ".wav" {
		if info, err := audio.ReadInfo(sourcePath); err == nil && info.IsCanonical(i.sampleRate) && info.Frames() > 0 {
			i.logger.Debug(ctx, "Already canonical, skipping conversion: %s", sourcePath)
			res.NormalizedPath = sourcePath
			res.NormalizedSize = st.Size()
			res.Duration = info.Duration()
			return res, nil
		}
	}

	if err := os.MkdirAll(workDir, 0755); err != nil {
		return Result{}, fmt.Errorf("create work dir: %w", err)
	}

	outPath := filepath.Join(workDir, "normalized.wav")
	if err := i.convert(ctx, sourcePath, outPath); err != nil {
		return Result{}, &ConversionError{Path: sourcePath, Err: err}
	}

	info, err := audio.ReadInfo(outPath)
	if err != nil {
		return Result{}, &ConversionError{Path: sourcePath, Err: fmt.Errorf("read converted audio: %w", err)}
	}
	if info.Frames() == 0 {
		return Result{}, &ConversionError{Path: sourcePath, Err: errors.New("no audio stream")}
	}

	res.NormalizedPath = outPath
	res.NormalizedSize = info.DataOffset + info.DataSize
	res.Converted = true
	res.Duration = info.Duration()

	if d, err := i.probeDuration(ctx, sourcePath); err == nil && d > 0 {
		res.Duration = d
	} else if err != nil {
		i.logger.Debug(ctx, "ffprobe duration unavailable for %s, using converted length: %v", sourcePath, err)
	}

	return res, nil
}

// convert produces a 16-bit mono PCM WAV at the configured sample rate
func (i *implIntake) convert(ctx context.Context, src, dst string) error {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	i.logger.Info(ctx, "Converting to %d Hz mono WAV: %s", i.sampleRate, src)

	args := []string{
		"-nostdin",
		"-i", src,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(i.sampleRate),
		"-c:a", "pcm_s16le",
		"-y",
		dst,
	}

	if _, err := i.executor.Execute(ctx, i.ffmpeg, args...); err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

func (i *implIntake) probeDuration(ctx context.Context, path string) (float64, error) {
	out, err := i.executor.Execute(ctx, i.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(out), 64)
}
