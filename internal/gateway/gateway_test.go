package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"astrochat/internal/i18n"
)

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewBuildsClientWithoutTeardown(t *testing.T) {
	// Construction touches no network, and the provider client owns no
	// resources that outlive it, so a Client needs no Close.
	c, err := New(context.Background(), Config{APIKey: "test-key"})
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, DefaultChatModel, c.cfg.ChatModel)
	assert.Equal(t, DefaultImageModel, c.cfg.ImageModel)
	assert.Equal(t, DefaultVideoModel, c.cfg.VideoModel)
}

func TestAPIKeyFromEnvPrecedence(t *testing.T) {
	t.Setenv("API_KEY", "primary")
	t.Setenv("GEMINI_API_KEY", "fallback")
	assert.Equal(t, "primary", APIKeyFromEnv())

	t.Setenv("API_KEY", "")
	assert.Equal(t, "fallback", APIKeyFromEnv())
}

func TestSystemInstructionComposition(t *testing.T) {
	s := systemInstruction(i18n.LevelElementary, i18n.LangIndonesian)

	assert.Contains(t, s, "expert astronomer")
	assert.Contains(t, s, "**Audience Level Context:**")
	assert.Contains(t, s, "elementary school student")
	assert.Contains(t, s, "Bahasa Indonesia")

	// Unknown values fall back instead of producing a hole in the prompt.
	s = systemInstruction(i18n.EducationLevel("PhD"), i18n.Language("fr"))
	assert.Contains(t, s, "high school student")
	assert.Contains(t, s, "Respond in English.")
}

func TestVisualizationPrompt(t *testing.T) {
	assert.Contains(t, visualizationPrompt(nil), "Big Bang")

	ev := &i18n.CosmicEvent{Name: "Recombination", VisualizationPrompt: "fog clears, light streams free"}
	p := visualizationPrompt(ev)
	assert.Contains(t, p, `"Recombination"`)
	assert.Contains(t, p, "fog clears")
}

func TestStripCodeFences(t *testing.T) {
	doc := "<!DOCTYPE html>\n<html></html>"

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", doc, doc},
		{"fenced", "```\n" + doc + "\n```", doc},
		{"fenced with tag", "```html\n" + doc + "\n```", doc},
		{"leading whitespace", "  \n```html\n" + doc + "\n```\n", doc},
		{"no closing fence", "```html\n" + doc, doc},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, stripCodeFences(c.in))
		})
	}
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("chat", nil))

	var authErr *AuthError
	err := classify("chat", genai.APIError{Code: 401, Message: "unauthenticated"})
	require.ErrorAs(t, err, &authErr)

	err = classify("chat", genai.APIError{Code: 400, Message: "API key not valid. Please pass a valid API key."})
	require.ErrorAs(t, err, &authErr)
	assert.True(t, IsAuth(err))

	var genErr *GenerationError
	err = classify("image", genai.APIError{Code: 500, Message: "internal"})
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "image", genErr.Op)
	assert.False(t, IsAuth(err))

	err = classify("chat", errors.New("connection reset"))
	require.ErrorAs(t, err, &genErr)
}

func TestVideoErrorMessage(t *testing.T) {
	err := &VideoError{Reason: "operation finished without a video"}
	assert.Contains(t, err.Error(), "operation finished without a video")

	wrapped := &VideoError{Reason: "provider error", Err: errors.New("quota exceeded")}
	assert.Contains(t, wrapped.Error(), "quota exceeded")
	assert.ErrorIs(t, wrapped, wrapped.Err)
}
