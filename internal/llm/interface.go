package llm

import "context"

// Role of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Message struct {
	Role Role
	Text string
}

// Request is a single completion call.
type Request struct {
	System      string
	Messages    []Message
	Temperature float32
	// JSON asks the model for an application/json response.
	JSON bool
}

// Client is a chat-style language model.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Model() string
}
