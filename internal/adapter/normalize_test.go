package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textgate/textgate/internal/config"
	"github.com/textgate/textgate/internal/models"
)

func float32Ptr(v float32) *float32 { return &v }
func uint32Ptr(v uint32) *uint32    { return &v }

func TestRemapPresencePenalty(t *testing.T) {
	tests := []struct {
		name     string
		presence *float32
		want     *float32
	}{
		{"neutral maps to native neutral", float32Ptr(0.0), float32Ptr(1.0)},
		{"upper bound", float32Ptr(2.0), float32Ptr(2.0)},
		{"lower bound", float32Ptr(-2.0), float32Ptr(0.0)},
		{"unset stays unset", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := remapPresencePenalty(tt.presence)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-6)
		})
	}
}

func TestCompletionToGenerate_CopiesFields(t *testing.T) {
	echo := true
	seed := uint64(42)
	truncate := 100
	bestOf := 1
	topK := int32(10)

	req := &models.CompletionRequest{
		Prompt:              "My name is Michael and I",
		BestOf:              &bestOf,
		Temperature:         float32Ptr(0.5),
		PresencePenalty:     float32Ptr(1.0),
		TopK:                &topK,
		TopP:                float32Ptr(0.95),
		TypicalP:            float32Ptr(0.9),
		DoSample:            true,
		MaxTokens:           uint32Ptr(64),
		Echo:                &echo,
		Stop:                []string{"photographer"},
		Truncate:            &truncate,
		Watermark:           true,
		DecoderInputDetails: true,
		Seed:                &seed,
	}

	genReq := CompletionToGenerate(req)

	assert.Equal(t, "My name is Michael and I", genReq.Inputs)
	assert.Equal(t, &bestOf, genReq.Parameters.BestOf)
	assert.Equal(t, float32(0.5), *genReq.Parameters.Temperature)
	assert.InDelta(t, 1.5, *genReq.Parameters.RepetitionPenalty, 1e-6)
	assert.Equal(t, int32(10), *genReq.Parameters.TopK)
	assert.Equal(t, float32(0.95), *genReq.Parameters.TopP)
	assert.Equal(t, float32(0.9), *genReq.Parameters.TypicalP)
	assert.True(t, genReq.Parameters.DoSample)
	assert.Equal(t, uint32(64), genReq.Parameters.MaxNewTokens)
	assert.Equal(t, &echo, genReq.Parameters.ReturnFullText)
	assert.Equal(t, []string{"photographer"}, genReq.Parameters.Stop)
	assert.Equal(t, &truncate, genReq.Parameters.Truncate)
	assert.True(t, genReq.Parameters.Watermark)
	assert.True(t, genReq.Parameters.DecoderInputDetails)
	assert.Equal(t, &seed, genReq.Parameters.Seed)
}

func TestCompletionToGenerate_ForcesDetails(t *testing.T) {
	genReq := CompletionToGenerate(&models.CompletionRequest{Prompt: "Hi"})

	assert.True(t, genReq.Parameters.Details)
}

func TestCompletionToGenerate_DefaultsMaxNewTokens(t *testing.T) {
	genReq := CompletionToGenerate(&models.CompletionRequest{Prompt: "Hi"})

	assert.Equal(t, uint32(DefaultMaxNewTokens), genReq.Parameters.MaxNewTokens)
}

func TestChatToGenerate_LinearizesMessages(t *testing.T) {
	formatter := NewChatFormatter(config.ChatTemplateConfig{
		UserPre:  "<|user|>",
		UserPost: "\n",
	})

	req := &models.ChatCompletionRequest{
		Messages: []models.ChatMessage{
			{Role: models.RoleUser, Content: "Hi"},
		},
		PresencePenalty: float32Ptr(0.0),
	}

	genReq := ChatToGenerate(req, formatter)

	assert.Equal(t, "<|user|>Hi\n", genReq.Inputs)
	assert.True(t, genReq.Parameters.Details)
	assert.InDelta(t, 1.0, *genReq.Parameters.RepetitionPenalty, 1e-6)
	assert.Equal(t, uint32(DefaultMaxNewTokens), genReq.Parameters.MaxNewTokens)
}

func TestChatToGenerate_EmptyTemplateKeepsPrompt(t *testing.T) {
	formatter := NewChatFormatter(config.ChatTemplateConfig{})

	req := &models.ChatCompletionRequest{
		Messages: []models.ChatMessage{
			{Role: models.RoleUser, Content: "Hi"},
		},
	}

	genReq := ChatToGenerate(req, formatter)

	assert.Equal(t, "Hi", genReq.Inputs)
}
