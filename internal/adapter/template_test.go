package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/textgate/textgate/internal/config"
	"github.com/textgate/textgate/internal/models"
)

func TestLinearize_EmptyMessages(t *testing.T) {
	f := NewChatFormatter(config.ChatTemplateConfig{})

	assert.Equal(t, "", f.Linearize(nil))
	assert.Equal(t, "", f.Linearize([]models.ChatMessage{}))
}

func TestLinearize_PreservesOrderAndRolePairs(t *testing.T) {
	f := NewChatFormatter(config.ChatTemplateConfig{
		SystemPre:     "a",
		SystemPost:    "b",
		UserPre:       "c",
		UserPost:      "d",
		AssistantPre:  "e",
		AssistantPost: "f",
	})

	prompt := f.Linearize([]models.ChatMessage{
		{Role: models.RoleSystem, Content: "one"},
		{Role: models.RoleUser, Content: "two"},
		{Role: models.RoleAssistant, Content: "three"},
	})

	assert.Equal(t, "aoneb"+"ctwod"+"ethreef", prompt)
}

func TestLinearize_EmptyTemplatePassesContentThrough(t *testing.T) {
	f := NewChatFormatter(config.ChatTemplateConfig{})

	prompt := f.Linearize([]models.ChatMessage{
		{Role: models.RoleUser, Content: "Hi"},
	})

	assert.Equal(t, "Hi", prompt)
}

func TestLinearize_RepeatedRolesKeepInputOrder(t *testing.T) {
	f := NewChatFormatter(config.ChatTemplateConfig{
		UserPre:  "<u>",
		UserPost: "</u>",
	})

	prompt := f.Linearize([]models.ChatMessage{
		{Role: models.RoleUser, Content: "first"},
		{Role: models.RoleUser, Content: "second"},
	})

	assert.Equal(t, "<u>first</u><u>second</u>", prompt)
}
