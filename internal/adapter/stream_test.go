package adapter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textgate/textgate/internal/models"
)

func TestStartEvent_AnnouncesAssistantRole(t *testing.T) {
	stream := NewStream(StreamChatCompletions, "tgi")

	event := stream.StartEvent()

	assert.Equal(t, "chat.completion.chunk", event.Object)
	assert.Equal(t, stream.ID, event.ID)
	assert.Equal(t, stream.Created, event.Created)
	require.Len(t, event.Choices, 1)
	assert.Equal(t, 0, event.Choices[0].Index)
	require.NotNil(t, event.Choices[0].Delta.Role)
	assert.Equal(t, models.RoleAssistant, *event.Choices[0].Delta.Role)
	assert.Nil(t, event.Choices[0].Delta.Content)
	assert.Nil(t, event.Choices[0].FinishReason)
}

func TestTokenEvent_ChatMidStream(t *testing.T) {
	stream := NewStream(StreamChatCompletions, "tgi")

	event := stream.TokenEvent(&models.StreamResponse{
		Token: models.Token{ID: 5, Text: "Mun"},
	})

	chunk, ok := event.(*models.ChatCompletionChunk)
	require.True(t, ok)
	require.Len(t, chunk.Choices, 1)
	assert.Nil(t, chunk.Choices[0].Delta.Role)
	require.NotNil(t, chunk.Choices[0].Delta.Content)
	assert.Equal(t, "Mun", *chunk.Choices[0].Delta.Content)
	assert.Nil(t, chunk.Choices[0].FinishReason)
}

func TestTokenEvent_ChatTerminalCarriesFinishReason(t *testing.T) {
	stream := NewStream(StreamChatCompletions, "tgi")

	event := stream.TokenEvent(&models.StreamResponse{
		Token: models.Token{Text: "ich"},
		Details: &models.StreamDetails{
			FinishReason:    models.FinishReasonStopSequence,
			GeneratedTokens: 12,
		},
	})

	chunk, ok := event.(*models.ChatCompletionChunk)
	require.True(t, ok)
	require.NotNil(t, chunk.Choices[0].FinishReason)
	assert.Equal(t, models.FinishReasonStopSequence, *chunk.Choices[0].FinishReason)
}

func TestTokenEvent_CompletionsShape(t *testing.T) {
	stream := NewStream(StreamCompletions, "tgi")

	event := stream.TokenEvent(&models.StreamResponse{
		Token: models.Token{Text: "Hi"},
	})

	chunk, ok := event.(*models.CompletionsResponse)
	require.True(t, ok)
	assert.Equal(t, "text_completion", chunk.Object)
	assert.True(t, strings.HasPrefix(chunk.ID, "cmpl-"))
	require.Len(t, chunk.Choices, 1)
	assert.Equal(t, "Hi", chunk.Choices[0].Text)
	assert.Nil(t, chunk.Choices[0].FinishReason)
	// Usage is never attached to stream chunks.
	assert.Nil(t, chunk.Usage)
}

func TestStream_AllEventsShareIDAndCreated(t *testing.T) {
	stream := NewStream(StreamChatCompletions, "tgi")

	start := stream.StartEvent()
	first := stream.TokenEvent(&models.StreamResponse{Token: models.Token{Text: "a"}}).(*models.ChatCompletionChunk)
	last := stream.TokenEvent(&models.StreamResponse{
		Token:   models.Token{Text: "b"},
		Details: &models.StreamDetails{FinishReason: models.FinishReasonLength},
	}).(*models.ChatCompletionChunk)

	assert.Equal(t, start.ID, first.ID)
	assert.Equal(t, start.ID, last.ID)
	assert.Equal(t, start.Created, first.Created)
	assert.Equal(t, start.Created, last.Created)
}

func TestNewStream_KindSelectsIDPrefix(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewStream(StreamCompletions, "m").ID, "cmpl-"))
	assert.True(t, strings.HasPrefix(NewStream(StreamChatCompletions, "m").ID, "chatcmpl-"))
}
