package transcriber

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
)

func newTestServer(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
		}
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openAIConfig(baseURL string) config.TranscriptionConfig {
	cfg := config.Default().Transcription
	cfg.BaseURL = baseURL
	cfg.APIKey = "sk-test"
	return cfg
}

func TestOpenAITranscribe(t *testing.T) {
	body := `{"text":" hello world ","language":"english","duration":30.0,
		"segments":[{"id":0,"start":0.0,"end":1.2,"text":" hello world"}]}`

	srv := newTestServer(t, http.StatusOK, body, func(r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("path = %s, want /audio/transcriptions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q, want whisper-1", got)
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("response_format = %q, want verbose_json", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language = %q, want en", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("file missing: %v", err)
		}
	})

	svc := NewOpenAI(openAIConfig(srv.URL), srv.Client())
	resp, err := svc.Transcribe(context.Background(), Request{AudioPath: writeSilence(t, 1), Language: "en", Mode: ModeTranscribe})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if resp.Text != "hello world" {
		t.Errorf("Text = %q, want %q", resp.Text, "hello world")
	}
	if len(resp.Segments) != 1 || resp.Segments[0].End != 1.2 || resp.Segments[0].Text != "hello world" {
		t.Errorf("Segments = %+v", resp.Segments)
	}
}

func TestOpenAITranslate(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"text":"hi","segments":[]}`, func(r *http.Request) {
		if r.URL.Path != "/audio/translations" {
			t.Errorf("path = %s, want /audio/translations", r.URL.Path)
		}
		if _, ok := r.MultipartForm.Value["language"]; ok {
			t.Error("translate request carried a language field")
		}
	})

	svc := NewOpenAI(openAIConfig(srv.URL), srv.Client())
	_, err := svc.Transcribe(context.Background(), Request{AudioPath: writeSilence(t, 1), Language: "de", Mode: ModeTranslate})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
}

func TestOpenAIErrors(t *testing.T) {
	srv := newTestServer(t, http.StatusServiceUnavailable, `{"error":"overloaded"}`, nil)

	svc := NewOpenAI(openAIConfig(srv.URL), srv.Client())
	_, err := svc.Transcribe(context.Background(), Request{AudioPath: writeSilence(t, 1)})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Transcribe() error = %v, want HTTP 503", err)
	}
	if !IsTransient(err) {
		t.Error("IsTransient(503) = false, want true")
	}

	cfg := openAIConfig(srv.URL)
	cfg.APIKey = ""
	_, err = NewOpenAI(cfg, nil).Transcribe(context.Background(), Request{AudioPath: writeSilence(t, 1)})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Transcribe() error = %v, want %v", err, ErrMissingAPIKey)
	}
}
