package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

// ErrMissingAPIKey is returned when no credential is configured.
var ErrMissingAPIKey = errors.New("transcription api key is not set")

// OpenAI-compatible audio transcription endpoint.
type openAIService struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewOpenAI creates a Service for an OpenAI-compatible /audio API.
// Timeouts are applied per request by the Client, so httpClient may be nil.
func NewOpenAI(cfg config.TranscriptionConfig, httpClient *http.Client) Service {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &openAIService{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    httpClient,
	}
}

type verboseSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type verboseResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Segments []verboseSegment `json:"segments"`
}

func (o *openAIService) Transcribe(ctx context.Context, req Request) (Response, error) {
	if o.apiKey == "" {
		return Response{}, ErrMissingAPIKey
	}

	body, contentType, err := o.buildForm(req)
	if err != nil {
		return Response{}, err
	}

	endpoint := o.baseURL + "/audio/transcriptions"
	if req.Mode == ModeTranslate {
		endpoint = o.baseURL + "/audio/translations"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := o.http.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Response{}, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var vr verboseResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}

	out := Response{
		Text:     strings.TrimSpace(vr.Text),
		Language: vr.Language,
		Duration: vr.Duration,
	}
	for _, s := range vr.Segments {
		out.Segments = append(out.Segments, models.TranscriptSegment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	return out, nil
}

func (o *openAIService) buildForm(req Request) (io.Reader, string, error) {
	f, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := [][2]string{
		{"model", o.model},
		{"response_format", "verbose_json"},
		{"temperature", "0"},
	}
	if req.Mode != ModeTranslate {
		fields = append(fields, [2]string{"timestamp_granularities[]", "segment"})
		if req.Language != "" {
			fields = append(fields, [2]string{"language", req.Language})
		}
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}

	fw, err := mw.CreateFormFile("file", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return &body, mw.FormDataContentType(), nil
}
