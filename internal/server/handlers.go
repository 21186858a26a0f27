package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/textgate/textgate/internal/adapter"
	"github.com/textgate/textgate/internal/engine"
	"github.com/textgate/textgate/internal/models"
)

// completions handles POST /v1/completions
func (s *Server) completions(c *gin.Context) {
	var req models.CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalidRequest(c, err)
		return
	}

	model, ok := s.modelID(c)
	if !ok {
		return
	}

	genReq := adapter.CompletionToGenerate(&req)

	if req.Stream {
		s.streamGenerate(c, genReq, adapter.NewStream(adapter.StreamCompletions, model))
		return
	}

	genResp, err := s.engine.Generate(c.Request.Context(), genReq)
	if err != nil {
		s.upstreamFailure(c, err)
		return
	}

	resp := adapter.NewCompletionsResponse(genResp, model)
	s.recordUsage(model, *resp.Usage)
	c.JSON(200, resp)
}

// chatCompletions handles POST /v1/chat/completions
func (s *Server) chatCompletions(c *gin.Context) {
	var req models.ChatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalidRequest(c, err)
		return
	}

	model, ok := s.modelID(c)
	if !ok {
		return
	}

	genReq := adapter.ChatToGenerate(&req, s.formatter)

	if req.Stream {
		s.streamGenerate(c, genReq, adapter.NewStream(adapter.StreamChatCompletions, model))
		return
	}

	genResp, err := s.engine.Generate(c.Request.Context(), genReq)
	if err != nil {
		s.upstreamFailure(c, err)
		return
	}

	resp := adapter.NewChatCompletionsResponse(genResp, model)
	s.recordUsage(model, resp.Usage)
	c.JSON(200, resp)
}

// streamGenerate forwards the engine's token stream to the client as SSE,
// one event per token, in production order. Chat streams lead with the
// role-announcement event. A chunk that fails to serialize or write
// terminates the stream; no [DONE] sentinel is sent in that case.
func (s *Server) streamGenerate(c *gin.Context, genReq models.GenerateRequest, stream *adapter.Stream) {
	tokens, err := s.engine.GenerateStream(c.Request.Context(), genReq)
	if err != nil {
		s.upstreamFailure(c, err)
		return
	}
	defer tokens.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	if stream.Kind == adapter.StreamChatCompletions {
		if err := s.writeEvent(c, stream.StartEvent()); err != nil {
			return
		}
	}

	for {
		fragment, err := tokens.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.logger.Error("Token stream aborted", zap.Error(err))
			return
		}

		if err := s.writeEvent(c, stream.TokenEvent(fragment)); err != nil {
			return
		}

		// The terminal fragment carries the completion token count.
		if fragment.Details != nil {
			s.recordUsage(stream.Model, models.Usage{
				CompletionTokens: fragment.Details.GeneratedTokens,
				TotalTokens:      fragment.Details.GeneratedTokens,
			})
		}
	}

	c.Writer.Write([]byte("data: [DONE]\n\n"))
	c.Writer.Flush()
}

// writeEvent serializes one stream event and flushes it to the client.
func (s *Server) writeEvent(c *gin.Context, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to encode stream event", zap.Error(err))
		return err
	}

	if _, err := c.Writer.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

// listModels handles GET /v1/models; the upstream serves exactly one model.
func (s *Server) listModels(c *gin.Context) {
	info, err := s.engine.Info(c.Request.Context())
	if err != nil {
		s.upstreamFailure(c, err)
		return
	}

	c.JSON(200, models.ModelsResponse{
		Object: "list",
		Data: []models.ModelObject{
			{
				ID:      info.ModelID,
				Object:  "model",
				OwnedBy: "textgate",
			},
		},
	})
}

// getUsageHistory handles GET /usage
func (s *Server) getUsageHistory(c *gin.Context) {
	days := 7
	if d := c.Query("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 1 {
			c.JSON(400, gin.H{"error": "invalid days parameter"})
			return
		}
		days = parsed
	}

	records, err := s.usageStore.History(days)
	if err != nil {
		s.logger.Error("Failed to read usage history", zap.Error(err))
		c.JSON(500, gin.H{"error": "failed to read usage history"})
		return
	}

	c.JSON(200, gin.H{"days": days, "records": records})
}

// modelID resolves the upstream model identity, answering the request itself
// when the engine is unreachable.
func (s *Server) modelID(c *gin.Context) (string, bool) {
	info, err := s.engine.Info(c.Request.Context())
	if err != nil {
		s.upstreamFailure(c, err)
		return "", false
	}
	return info.ModelID, true
}

func (s *Server) recordUsage(model string, usage models.Usage) {
	if err := s.usageStore.Record(model, usage); err != nil {
		s.logger.Warn("Failed to record usage", zap.Error(err))
	}
}

func (s *Server) invalidRequest(c *gin.Context, err error) {
	c.JSON(400, models.ErrorResponse{
		Error: models.ErrorDetail{
			Message: "Invalid request: " + err.Error(),
			Type:    "invalid_request_error",
		},
	})
}

// upstreamFailure surfaces an engine failure unchanged: the upstream status
// and body for protocol-level errors, 502 for transport-level ones.
func (s *Server) upstreamFailure(c *gin.Context, err error) {
	var upstreamErr *engine.UpstreamError
	if errors.As(err, &upstreamErr) {
		s.logger.Warn("Upstream returned error",
			zap.Int("status", upstreamErr.StatusCode),
			zap.String("body", upstreamErr.Body))
		c.JSON(upstreamErr.StatusCode, models.ErrorResponse{
			Error: models.ErrorDetail{
				Message: upstreamErr.Body,
				Type:    "upstream_error",
			},
		})
		return
	}

	s.logger.Error("Upstream request failed", zap.Error(err))
	c.JSON(http.StatusBadGateway, models.ErrorResponse{
		Error: models.ErrorDetail{
			Message: err.Error(),
			Type:    "upstream_error",
		},
	})
}
