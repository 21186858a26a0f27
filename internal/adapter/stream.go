package adapter

import (
	"time"

	"github.com/textgate/textgate/internal/models"
)

// StreamKind selects which of the two stream shapes events are built for.
type StreamKind int

const (
	StreamCompletions StreamKind = iota
	StreamChatCompletions
)

// Stream carries the per-stream identity. Every chunk of one response shares
// the same id and created timestamp, so both are computed once here and
// reused for each event.
type Stream struct {
	Kind    StreamKind
	ID      string
	Created int64
	Model   string
}

// NewStream fixes the identity of a new token stream.
func NewStream(kind StreamKind, model string) *Stream {
	created := time.Now().Unix()
	prefix := "cmpl"
	if kind == StreamChatCompletions {
		prefix = "chatcmpl"
	}
	return &Stream{
		Kind:    kind,
		ID:      newResponseID(prefix, created),
		Created: created,
		Model:   model,
	}
}

// StartEvent is the one-time leading chunk of a chat stream: assistant role
// marker, no content, no finish reason.
func (s *Stream) StartEvent() *models.ChatCompletionChunk {
	role := models.RoleAssistant
	return &models.ChatCompletionChunk{
		ID:      s.ID,
		Object:  objectChatCompletionChunk,
		Created: s.Created,
		Model:   s.Model,
		Choices: []models.ChatCompletionChunkChoice{
			{
				Index: 0,
				Delta: models.ChatDeltaMessage{Role: &role},
			},
		},
	}
}

// TokenEvent builds the wire object for one produced token fragment. The
// finish reason is carried only when the fragment's details record has one,
// i.e. on the terminal fragment. Chunks never carry usage.
func (s *Stream) TokenEvent(fragment *models.StreamResponse) interface{} {
	var finishReason *models.FinishReason
	if fragment.Details != nil {
		reason := fragment.Details.FinishReason
		finishReason = &reason
	}

	switch s.Kind {
	case StreamChatCompletions:
		content := fragment.Token.Text
		return &models.ChatCompletionChunk{
			ID:      s.ID,
			Object:  objectChatCompletionChunk,
			Created: s.Created,
			Model:   s.Model,
			Choices: []models.ChatCompletionChunkChoice{
				{
					Index:        0,
					Delta:        models.ChatDeltaMessage{Content: &content},
					FinishReason: finishReason,
				},
			},
		}
	default:
		return &models.CompletionsResponse{
			ID:      s.ID,
			Object:  objectTextCompletion,
			Created: s.Created,
			Model:   s.Model,
			Choices: []models.CompletionChoice{
				{
					Text:         fragment.Token.Text,
					Index:        0,
					Logprobs:     nil,
					FinishReason: finishReason,
				},
			},
		}
	}
}
