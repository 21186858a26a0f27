package models

import (
	"encoding/json"
	"fmt"
)

// OpenAI-compatible request/response models

// ChatRole is the closed set of chat message roles.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleSystem    ChatRole = "system"
)

// UnmarshalJSON rejects roles outside the closed set at the request boundary,
// so dispatch on ChatRole never sees an unknown value.
func (r *ChatRole) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch ChatRole(s) {
	case RoleUser, RoleAssistant, RoleSystem:
		*r = ChatRole(s)
		return nil
	}
	return fmt.Errorf("unknown chat role %q", s)
}

// ChatMessage is one role-tagged message of a conversation.
type ChatMessage struct {
	Role    ChatRole `json:"role" binding:"required"`
	Content string   `json:"content"`
}

// ChatDeltaMessage is the incremental message fragment carried by stream
// chunks. Role is only present on the stream-start chunk; content on every
// later chunk. Absent and empty are distinct states, hence pointers.
type ChatDeltaMessage struct {
	Role    *ChatRole `json:"role,omitempty"`
	Content *string   `json:"content,omitempty"`
}

// CompletionRequest is a POST /v1/completions body. Range and length caps
// mirror the boundary schema; binding tags enforce them before normalization.
type CompletionRequest struct {
	Prompt              string   `json:"prompt" binding:"required"`
	BestOf              *int     `json:"best_of,omitempty" binding:"omitempty,gt=0"`
	Temperature         *float32 `json:"temperature,omitempty" binding:"omitempty,gt=0"`
	PresencePenalty     *float32 `json:"presence_penalty,omitempty" binding:"omitempty,gte=-2,lte=2"`
	TopK                *int32   `json:"top_k,omitempty" binding:"omitempty,gt=0"`
	TopP                *float32 `json:"top_p,omitempty" binding:"omitempty,gt=0,lte=1"`
	TypicalP            *float32 `json:"typical_p,omitempty" binding:"omitempty,gt=0,lte=1"`
	DoSample            bool     `json:"do_sample,omitempty"`
	MaxTokens           *uint32  `json:"max_tokens,omitempty" binding:"omitempty,gt=0,lt=512"`
	Echo                *bool    `json:"echo,omitempty"`
	Stop                []string `json:"stop,omitempty" binding:"max=4"`
	Truncate            *int     `json:"truncate,omitempty" binding:"omitempty,gt=0"`
	Watermark           bool     `json:"watermark,omitempty"`
	DecoderInputDetails bool     `json:"decoder_input_details,omitempty"`
	Seed                *uint64  `json:"seed,omitempty"`
	Stream              bool     `json:"stream,omitempty"`
	Model               string   `json:"model,omitempty"`
}

// ChatCompletionRequest is a POST /v1/chat/completions body.
type ChatCompletionRequest struct {
	Messages            []ChatMessage `json:"messages" binding:"required,min=1"`
	BestOf              *int          `json:"best_of,omitempty" binding:"omitempty,gt=0"`
	Temperature         *float32      `json:"temperature,omitempty" binding:"omitempty,gt=0"`
	PresencePenalty     *float32      `json:"presence_penalty,omitempty" binding:"omitempty,gte=-2,lte=2"`
	TopK                *int32        `json:"top_k,omitempty" binding:"omitempty,gt=0"`
	TopP                *float32      `json:"top_p,omitempty" binding:"omitempty,gt=0,lte=1"`
	TypicalP            *float32      `json:"typical_p,omitempty" binding:"omitempty,gt=0,lte=1"`
	DoSample            bool          `json:"do_sample,omitempty"`
	MaxTokens           *uint32       `json:"max_tokens,omitempty" binding:"omitempty,gt=0,lt=512"`
	Echo                *bool         `json:"echo,omitempty"`
	Stop                []string      `json:"stop,omitempty" binding:"max=4"`
	Truncate            *int          `json:"truncate,omitempty" binding:"omitempty,gt=0"`
	Watermark           bool          `json:"watermark,omitempty"`
	DecoderInputDetails bool          `json:"decoder_input_details,omitempty"`
	Seed                *uint64       `json:"seed,omitempty"`
	Stream              bool          `json:"stream,omitempty"`
	Model               string        `json:"model,omitempty"`
}

// Usage is the token accounting attached to non-streaming responses.
// TotalTokens is always the sum of the other two.
type Usage struct {
	PromptTokens     uint32 `json:"prompt_tokens"`
	CompletionTokens uint32 `json:"completion_tokens"`
	TotalTokens      uint32 `json:"total_tokens"`
}

// CompletionChoice is the single choice of a completions response or chunk.
type CompletionChoice struct {
	Text         string        `json:"text"`
	Index        int           `json:"index"`
	Logprobs     interface{}   `json:"logprobs"` // logprobs is not implemented, always null
	FinishReason *FinishReason `json:"finish_reason,omitempty"`
}

// CompletionsResponse is the /v1/completions body, complete or chunked.
// Usage is nil on stream chunks.
type CompletionsResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   *Usage             `json:"usage,omitempty"`
}

// ChatCompletionChoice is the single choice of a chat completion response.
type ChatCompletionChoice struct {
	Index        int           `json:"index"`
	Message      ChatMessage   `json:"message"`
	FinishReason *FinishReason `json:"finish_reason"`
}

// ChatCompletionsResponse is the non-streaming /v1/chat/completions body.
type ChatCompletionsResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   Usage                  `json:"usage"`
}

// ChatCompletionChunkChoice is the single choice of a chat stream chunk.
type ChatCompletionChunkChoice struct {
	Index        int              `json:"index"`
	Delta        ChatDeltaMessage `json:"delta"`
	FinishReason *FinishReason    `json:"finish_reason"`
}

// ChatCompletionChunk is one chat stream event. Chunks never carry usage.
type ChatCompletionChunk struct {
	ID      string                      `json:"id"`
	Object  string                      `json:"object"`
	Created int64                       `json:"created"`
	Model   string                      `json:"model"`
	Choices []ChatCompletionChunkChoice `json:"choices"`
}

// ModelsResponse is the GET /v1/models body.
type ModelsResponse struct {
	Object string        `json:"object"`
	Data   []ModelObject `json:"data"`
}

// ModelObject is a single model in the models list.
type ModelObject struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
}

// ErrorResponse is the OpenAI-style error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail provides error details.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}
