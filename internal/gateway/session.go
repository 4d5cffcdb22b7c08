package gateway

import (
	"context"
	"iter"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"astrochat/internal/i18n"
	"astrochat/internal/logging"
)

// Session is a stateful provider-side chat seeded with the persona and
// audience-level instruction. The provider retains the turn history; the
// handle itself is just a reference plus identifying metadata.
type Session struct {
	id    string
	chat  *genai.Chat
	level i18n.EducationLevel
	lang  i18n.Language
}

// StartChat creates a chat session. The system instruction is fixed for the
// session's lifetime; changing the level means starting a new session.
func (c *Client) StartChat(ctx context.Context, level i18n.EducationLevel, lang i18n.Language) (*Session, error) {
	chat, err := c.ai.Chats.Create(ctx, c.cfg.ChatModel, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction(level, lang), genai.RoleUser),
	}, nil)
	if err != nil {
		return nil, classify("session creation", err)
	}

	s := &Session{
		id:    uuid.NewString(),
		chat:  chat,
		level: level,
		lang:  lang,
	}
	logging.Session("chat session %s started (level=%s lang=%s)", s.id, level, lang)
	return s, nil
}

// ID returns the session's local identifier (logging only; the provider
// handle is opaque).
func (s *Session) ID() string { return s.id }

// Level returns the education level the session was seeded with.
func (s *Session) Level() i18n.EducationLevel { return s.level }

// SendMessageStream sends one user turn and yields the reply incrementally
// as text fragments in generation order. The sequence is finite and
// non-restartable; the consumer reconstructs the full reply by
// concatenation. A mid-stream failure is yielded as the final element's
// error, already classified.
func (s *Session) SendMessageStream(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range s.chat.SendMessageStream(ctx, genai.Part{Text: text}) {
			if err != nil {
				logging.Session("session %s stream error: %v", s.id, err)
				yield("", classify("message stream", err))
				return
			}
			if chunk := resp.Text(); chunk != "" {
				if !yield(chunk, nil) {
					return
				}
			}
		}
	}
}
