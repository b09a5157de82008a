package intake

import "fmt"

// UnsupportedFormatError is returned for extensions that are neither a
// known audio nor video container.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q: %s", e.Ext, e.Path)
}

// FileTooLargeError is returned when the source exceeds the size limit.
type FileTooLargeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large (%d bytes, limit %d): %s", e.Size, e.Limit, e.Path)
}

// ConversionError wraps a failed or unusable ffmpeg conversion.
type ConversionError struct {
	Path string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
