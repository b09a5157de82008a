package transcriber

import "github.com/nguyentantai21042004/minutes-flow/internal/models"

// minGap separates segments whose start times would otherwise collide.
const minGap = 0.001

// Rebase shifts every segment by offset seconds. The input is not modified.
func Rebase(segments []models.TranscriptSegment, offset float64) []models.TranscriptSegment {
	out := make([]models.TranscriptSegment, len(segments))
	for i, s := range segments {
		out[i] = models.TranscriptSegment{
			Start: s.Start + offset,
			End:   s.End + offset,
			Text:  s.Text,
		}
	}
	return out
}

// appendChunk appends already rebased chunk segments to merged, clamping
// them to [chunkStart, chunkEnd] and keeping start times strictly
// increasing across the whole recording.
func appendChunk(merged, chunk []models.TranscriptSegment, chunkStart, chunkEnd float64) []models.TranscriptSegment {
	for _, s := range chunk {
		s.Start = clamp(s.Start, chunkStart, chunkEnd)
		s.End = clamp(s.End, s.Start, chunkEnd)

		if n := len(merged); n > 0 && s.Start <= merged[n-1].Start {
			s.Start = merged[n-1].Start + minGap
			if s.End < s.Start {
				s.End = s.Start
			}
		}
		merged = append(merged, s)
	}
	return merged
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
