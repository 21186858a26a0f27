package adapter

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/textgate/textgate/internal/models"
)

// Object type tags mandated by the OpenAI protocol.
const (
	objectTextCompletion      = "text_completion"
	objectChatCompletion      = "chat.completion"
	objectChatCompletionChunk = "chat.completion.chunk"
)

// newResponseID derives a response id from the creation timestamp plus a
// short random suffix. The suffix keeps ids distinct when two responses are
// created within the same second.
func newResponseID(prefix string, created int64) string {
	return fmt.Sprintf("%s-%d-%s", prefix, created, uuid.NewString()[:8])
}

// usageFromDetails extracts token accounting and the finish reason from a
// details record. Absent details degrade to zero usage and no finish reason;
// this is a valid state, never an error.
func usageFromDetails(details *models.Details) (models.Usage, *models.FinishReason) {
	if details == nil {
		return models.Usage{}, nil
	}
	finishReason := details.FinishReason
	prefillLen := uint32(len(details.Prefill))
	return models.Usage{
		CompletionTokens: details.GeneratedTokens,
		PromptTokens:     prefillLen,
		TotalTokens:      details.GeneratedTokens + prefillLen,
	}, &finishReason
}

// NewCompletionsResponse synthesizes the complete /v1/completions body from a
// native generation result.
func NewCompletionsResponse(resp *models.GenerateResponse, model string) *models.CompletionsResponse {
	usage, finishReason := usageFromDetails(resp.Details)
	created := time.Now().Unix()
	return &models.CompletionsResponse{
		ID:      newResponseID("cmpl", created),
		Object:  objectTextCompletion,
		Created: created,
		Model:   model,
		Choices: []models.CompletionChoice{
			{
				Text:         resp.GeneratedText,
				Index:        0,
				Logprobs:     nil,
				FinishReason: finishReason,
			},
		},
		Usage: &usage,
	}
}

// NewChatCompletionsResponse synthesizes the complete /v1/chat/completions
// body, wrapping the generated text in an assistant message.
func NewChatCompletionsResponse(resp *models.GenerateResponse, model string) *models.ChatCompletionsResponse {
	usage, finishReason := usageFromDetails(resp.Details)
	created := time.Now().Unix()
	return &models.ChatCompletionsResponse{
		ID:      newResponseID("chatcmpl", created),
		Object:  objectChatCompletion,
		Created: created,
		Model:   model,
		Choices: []models.ChatCompletionChoice{
			{
				Index: 0,
				Message: models.ChatMessage{
					Role:    models.RoleAssistant,
					Content: resp.GeneratedText,
				},
				FinishReason: finishReason,
			},
		},
		Usage: usage,
	}
}
