package llm

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"google.golang.org/genai"
)

type implGemini struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	clients    map[string]*genai.Client
	model      string
	timeout    time.Duration
	baseURL    string
	logger     logger.Logger
}

// Options configures the Gemini client. BaseURL overrides the API host.
type Options struct {
	APIKeys []string
	Model   string
	Timeout time.Duration
	BaseURL string
}

// NewGemini creates a Client that rotates through the supplied Gemini API keys.
func NewGemini(opts Options, log logger.Logger) Client {
	return &implGemini{
		apiKeys: opts.APIKeys,
		clients: make(map[string]*genai.Client),
		model:   opts.Model,
		timeout: opts.Timeout,
		baseURL: opts.BaseURL,
		logger:  log,
	}
}
