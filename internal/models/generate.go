package models

// Native generate protocol models (the inference server's own wire shape)

// FinishReason describes why the engine stopped generating.
type FinishReason string

const (
	FinishReasonLength        FinishReason = "length"
	FinishReasonEndOfSequence FinishReason = "eos_token"
	FinishReasonStopSequence  FinishReason = "stop_sequence"
)

// GenerateParameters is the decoding configuration of a native generate call.
// Optional fields are pointers so "unset" survives the trip to the engine.
type GenerateParameters struct {
	BestOf              *int     `json:"best_of,omitempty"`
	Temperature         *float32 `json:"temperature,omitempty"`
	RepetitionPenalty   *float32 `json:"repetition_penalty,omitempty"`
	TopK                *int32   `json:"top_k,omitempty"`
	TopP                *float32 `json:"top_p,omitempty"`
	TypicalP            *float32 `json:"typical_p,omitempty"`
	DoSample            bool     `json:"do_sample"`
	MaxNewTokens        uint32   `json:"max_new_tokens"`
	ReturnFullText      *bool    `json:"return_full_text,omitempty"`
	Stop                []string `json:"stop,omitempty"`
	Truncate            *int     `json:"truncate,omitempty"`
	Watermark           bool     `json:"watermark"`
	Details             bool     `json:"details"`
	DecoderInputDetails bool     `json:"decoder_input_details"`
	Seed                *uint64  `json:"seed,omitempty"`
}

// GenerateRequest is one native generation call. Built fresh per request,
// never mutated after construction.
type GenerateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters GenerateParameters `json:"parameters"`
}

// PrefillToken is one input token consumed before generation started.
type PrefillToken struct {
	ID      uint32  `json:"id"`
	Text    string  `json:"text"`
	Logprob float32 `json:"logprob"`
}

// Token is one generated token.
type Token struct {
	ID      uint32  `json:"id"`
	Text    string  `json:"text"`
	Logprob float32 `json:"logprob"`
	Special bool    `json:"special"`
}

// Details accompanies a complete generation result.
type Details struct {
	FinishReason    FinishReason   `json:"finish_reason"`
	GeneratedTokens uint32         `json:"generated_tokens"`
	Seed            *uint64        `json:"seed,omitempty"`
	Prefill         []PrefillToken `json:"prefill"`
	Tokens          []Token        `json:"tokens"`
}

// GenerateResponse is the engine's complete (non-streamed) result. Details may
// be absent; callers must treat missing details as zero counts, not an error.
type GenerateResponse struct {
	GeneratedText string   `json:"generated_text"`
	Details       *Details `json:"details,omitempty"`
}

// StreamDetails accompanies the terminal fragment of a token stream.
type StreamDetails struct {
	FinishReason    FinishReason `json:"finish_reason"`
	GeneratedTokens uint32       `json:"generated_tokens"`
	Seed            *uint64      `json:"seed,omitempty"`
}

// StreamResponse is one fragment of a token stream. Details is only present on
// the terminal fragment.
type StreamResponse struct {
	Token         Token          `json:"token"`
	GeneratedText *string        `json:"generated_text,omitempty"`
	Details       *StreamDetails `json:"details,omitempty"`
}

// Info is the engine's identity record, served at /info.
type Info struct {
	ModelID        string `json:"model_id"`
	ModelSha       string `json:"model_sha,omitempty"`
	ModelDtype     string `json:"model_dtype,omitempty"`
	MaxTotalTokens int    `json:"max_total_tokens,omitempty"`
	Version        string `json:"version,omitempty"`
}
