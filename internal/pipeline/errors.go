package pipeline

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/minutes-flow/internal/intake"
	"github.com/nguyentantai21042004/minutes-flow/internal/minutes"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
)

// Error kinds recorded in logs, the job store and the status API.
const (
	KindUnsupportedFormat = "UnsupportedFormatError"
	KindFileTooLarge      = "FileTooLargeError"
	KindConversion        = "ConversionError"
	KindDownload          = "DownloadError"
	KindTranscription     = "TranscriptionServiceError"
	KindMinutesParse      = "MinutesParseError"
	KindMinutesService    = "MinutesServiceError"
	KindAlreadyProcessed  = "JobAlreadyProcessedError"
	KindCanceled          = "Canceled"
	KindInternal          = "InternalError"
)

// ErrorKind names the category of err. It returns "" for nil. Cancellation
// wins over any wrapping service error.
func ErrorKind(err error) string {
	var (
		unsupported *intake.UnsupportedFormatError
		tooLarge    *intake.FileTooLargeError
		conversion  *intake.ConversionError
		download    *intake.DownloadError
		transcribe  *transcriber.ServiceError
		parse       *minutes.ParseError
		llmService  *minutes.ServiceError
		processed   *store.JobAlreadyProcessedError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.As(err, &unsupported):
		return KindUnsupportedFormat
	case errors.As(err, &tooLarge):
		return KindFileTooLarge
	case errors.As(err, &conversion):
		return KindConversion
	case errors.As(err, &download):
		return KindDownload
	case errors.As(err, &transcribe):
		return KindTranscription
	case errors.As(err, &parse):
		return KindMinutesParse
	case errors.As(err, &llmService):
		return KindMinutesService
	case errors.As(err, &processed):
		return KindAlreadyProcessed
	default:
		return KindInternal
	}
}
