package adapter

import (
	"github.com/textgate/textgate/internal/models"
)

// DefaultMaxNewTokens is substituted when a request omits max_tokens.
const DefaultMaxNewTokens = 20

// remapPresencePenalty bridges the OpenAI presence penalty (roughly
// [-2.0, 2.0], 0 neutral) to the native repetition penalty ((0, inf),
// 1 neutral) via native = (presence + 2) / 2. This is a range bridge between
// the two conventions, not a semantic equivalence. Unset stays unset.
func remapPresencePenalty(p *float32) *float32 {
	if p == nil {
		return nil
	}
	v := (*p + 2.0) / 2.0
	return &v
}

func maxNewTokens(maxTokens *uint32) uint32 {
	if maxTokens == nil {
		return DefaultMaxNewTokens
	}
	return *maxTokens
}

// CompletionToGenerate normalizes a completions request into a native
// generate request. Input is assumed to have passed boundary validation;
// normalization is total and never fails. Details is always forced on so the
// response side can compute usage.
func CompletionToGenerate(req *models.CompletionRequest) models.GenerateRequest {
	return models.GenerateRequest{
		Inputs: req.Prompt,
		Parameters: models.GenerateParameters{
			BestOf:              req.BestOf,
			Temperature:         req.Temperature,
			RepetitionPenalty:   remapPresencePenalty(req.PresencePenalty),
			TopK:                req.TopK,
			TopP:                req.TopP,
			TypicalP:            req.TypicalP,
			DoSample:            req.DoSample,
			MaxNewTokens:        maxNewTokens(req.MaxTokens),
			ReturnFullText:      req.Echo,
			Stop:                req.Stop,
			Truncate:            req.Truncate,
			Watermark:           req.Watermark,
			Details:             true,
			DecoderInputDetails: req.DecoderInputDetails,
			Seed:                req.Seed,
		},
	}
}

// ChatToGenerate normalizes a chat completions request into a native generate
// request, linearizing the message list through the formatter first.
func ChatToGenerate(req *models.ChatCompletionRequest, formatter *ChatFormatter) models.GenerateRequest {
	return models.GenerateRequest{
		Inputs: formatter.Linearize(req.Messages),
		Parameters: models.GenerateParameters{
			BestOf:              req.BestOf,
			Temperature:         req.Temperature,
			RepetitionPenalty:   remapPresencePenalty(req.PresencePenalty),
			TopK:                req.TopK,
			TopP:                req.TopP,
			TypicalP:            req.TypicalP,
			DoSample:            req.DoSample,
			MaxNewTokens:        maxNewTokens(req.MaxTokens),
			ReturnFullText:      req.Echo,
			Stop:                req.Stop,
			Truncate:            req.Truncate,
			Watermark:           req.Watermark,
			Details:             true,
			DecoderInputDetails: req.DecoderInputDetails,
			Seed:                req.Seed,
		},
	}
}
