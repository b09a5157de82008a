package intake

import (
	"path/filepath"
	"strings"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".flac": true,
	".opus": true,
	".webm": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
	".m4v":  true,
}

// IsSupported reports whether path has a recognized audio or video extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return audioExtensions[ext] || videoExtensions[ext]
}

// IsVideo reports whether path is a video container.
func IsVideo(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}
