package adapter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textgate/textgate/internal/models"
)

func TestNewCompletionsResponse_WithDetails(t *testing.T) {
	genResp := &models.GenerateResponse{
		GeneratedText: "Hi there",
		Details: &models.Details{
			FinishReason:    models.FinishReasonLength,
			GeneratedTokens: 3,
			Prefill: []models.PrefillToken{
				{ID: 1, Text: "H"},
				{ID: 2, Text: "i"},
			},
		},
	}

	resp := NewCompletionsResponse(genResp, "bigscience/bloom")

	assert.Equal(t, "text_completion", resp.Object)
	assert.Equal(t, "bigscience/bloom", resp.Model)
	assert.True(t, strings.HasPrefix(resp.ID, "cmpl-"))
	assert.NotZero(t, resp.Created)

	require.Len(t, resp.Choices, 1)
	assert.Equal(t, 0, resp.Choices[0].Index)
	assert.Equal(t, "Hi there", resp.Choices[0].Text)
	assert.Nil(t, resp.Choices[0].Logprobs)
	require.NotNil(t, resp.Choices[0].FinishReason)
	assert.Equal(t, models.FinishReasonLength, *resp.Choices[0].FinishReason)

	require.NotNil(t, resp.Usage)
	assert.Equal(t, uint32(3), resp.Usage.CompletionTokens)
	assert.Equal(t, uint32(2), resp.Usage.PromptTokens)
	assert.Equal(t, uint32(5), resp.Usage.TotalTokens)
}

func TestNewCompletionsResponse_MissingDetailsDegradesToZero(t *testing.T) {
	genResp := &models.GenerateResponse{GeneratedText: "Hi there"}

	resp := NewCompletionsResponse(genResp, "tgi")

	require.NotNil(t, resp.Usage)
	assert.Equal(t, models.Usage{}, *resp.Usage)
	require.Len(t, resp.Choices, 1)
	assert.Nil(t, resp.Choices[0].FinishReason)
	assert.Equal(t, "Hi there", resp.Choices[0].Text)
}

func TestNewChatCompletionsResponse_WrapsAssistantMessage(t *testing.T) {
	genResp := &models.GenerateResponse{
		GeneratedText: "Munich",
		Details: &models.Details{
			FinishReason:    models.FinishReasonEndOfSequence,
			GeneratedTokens: 2,
			Prefill:         []models.PrefillToken{{ID: 1, Text: "?"}},
		},
	}

	resp := NewChatCompletionsResponse(genResp, "tgi")

	assert.Equal(t, "chat.completion", resp.Object)
	assert.True(t, strings.HasPrefix(resp.ID, "chatcmpl-"))

	require.Len(t, resp.Choices, 1)
	assert.Equal(t, 0, resp.Choices[0].Index)
	assert.Equal(t, models.RoleAssistant, resp.Choices[0].Message.Role)
	assert.Equal(t, "Munich", resp.Choices[0].Message.Content)
	require.NotNil(t, resp.Choices[0].FinishReason)
	assert.Equal(t, models.FinishReasonEndOfSequence, *resp.Choices[0].FinishReason)

	assert.Equal(t, uint32(2), resp.Usage.CompletionTokens)
	assert.Equal(t, uint32(1), resp.Usage.PromptTokens)
	assert.Equal(t, uint32(3), resp.Usage.TotalTokens)
}

func TestNewChatCompletionsResponse_MissingDetails(t *testing.T) {
	resp := NewChatCompletionsResponse(&models.GenerateResponse{GeneratedText: "x"}, "tgi")

	assert.Equal(t, models.Usage{}, resp.Usage)
	require.Len(t, resp.Choices, 1)
	assert.Nil(t, resp.Choices[0].FinishReason)
}

func TestUsageTotalIsAlwaysSum(t *testing.T) {
	cases := []*models.Details{
		nil,
		{GeneratedTokens: 0, Prefill: nil},
		{GeneratedTokens: 7, Prefill: make([]models.PrefillToken, 11)},
	}

	for _, details := range cases {
		usage, _ := usageFromDetails(details)
		assert.Equal(t, usage.CompletionTokens+usage.PromptTokens, usage.TotalTokens)
	}
}

func TestNewResponseID_DistinctWithinSameSecond(t *testing.T) {
	a := newResponseID("cmpl", 1589478379)
	b := newResponseID("cmpl", 1589478379)

	assert.True(t, strings.HasPrefix(a, "cmpl-1589478379-"))
	assert.NotEqual(t, a, b)
}
