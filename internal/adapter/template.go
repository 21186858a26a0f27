package adapter

import (
	"strings"

	"github.com/textgate/textgate/internal/config"
	"github.com/textgate/textgate/internal/models"
)

// RolePair is the prefix/suffix wrapped around one message's content.
type RolePair struct {
	Prefix string
	Suffix string
}

// ChatFormatter holds one RolePair per chat role. It is built once at startup
// and shared read-only by every request, so concurrent use needs no locking.
type ChatFormatter struct {
	User      RolePair
	Assistant RolePair
	System    RolePair
}

// NewChatFormatter builds the formatter from configuration.
func NewChatFormatter(cfg config.ChatTemplateConfig) *ChatFormatter {
	return &ChatFormatter{
		User:      RolePair{Prefix: cfg.UserPre, Suffix: cfg.UserPost},
		Assistant: RolePair{Prefix: cfg.AssistantPre, Suffix: cfg.AssistantPost},
		System:    RolePair{Prefix: cfg.SystemPre, Suffix: cfg.SystemPost},
	}
}

func (f *ChatFormatter) pairFor(role models.ChatRole) RolePair {
	switch role {
	case models.RoleAssistant:
		return f.Assistant
	case models.RoleSystem:
		return f.System
	case models.RoleUser:
		return f.User
	}
	// Roles outside the closed set are rejected when the request is decoded.
	return RolePair{}
}

// Linearize folds an ordered message list into a single prompt string,
// appending prefix + content + suffix per message in input order.
func (f *ChatFormatter) Linearize(messages []models.ChatMessage) string {
	var b strings.Builder
	for _, m := range messages {
		pair := f.pairFor(m.Role)
		b.WriteString(pair.Prefix)
		b.WriteString(m.Content)
		b.WriteString(pair.Suffix)
	}
	return b.String()
}
