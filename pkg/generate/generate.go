package generate

import (
	"context"
)

// Generator produces a raw diagram schema from a description.
type Generator interface {
	Generate(ctx context.Context, description string) (map[string]any, error)
}

// Func adapts a plain function to [Generator].
type Func func(ctx context.Context, description string) (map[string]any, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, description string) (map[string]any, error) {
	return f(ctx, description)
}

// Static returns a generator that ignores the description and yields a
// fresh deep copy of raw on every call.
func Static(raw map[string]any) Generator {
	return Func(func(ctx context.Context, _ string) (map[string]any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return deepCopy(raw).(map[string]any), nil
	})
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = deepCopy(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = deepCopy(val)
		}
		return s
	}
	return v
}

// Role identifies the author of a conversation message.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the history preceding the current message, oldest first.
type Conversation []Message

// Reply is the assistant's answer to one message.
type Reply struct {
	Message string `json:"message"`

	// InvokeDiagramGeneration, when set, is the description the caller
	// should hand to a Generator.
	InvokeDiagramGeneration string `json:"invoke_diagram_generation,omitempty"`
}

// WantsDiagram reports whether the reply asks for a diagram to be generated.
func (r Reply) WantsDiagram() bool { return r.InvokeDiagramGeneration != "" }

// Assistant answers chat messages about an architecture.
type Assistant interface {
	Reply(ctx context.Context, history Conversation, message string) (Reply, error)
}

// AssistantFunc adapts a plain function to [Assistant].
type AssistantFunc func(ctx context.Context, history Conversation, message string) (Reply, error)

// Reply calls f.
func (f AssistantFunc) Reply(ctx context.Context, history Conversation, message string) (Reply, error) {
	return f(ctx, history, message)
}
