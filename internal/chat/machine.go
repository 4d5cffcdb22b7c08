// Package chat implements the conversation state machine: it owns the
// transcript, the sending flag, and the live session handle, and drives the
// streaming-append protocol. It is UI-agnostic; the TUI observes it through
// snapshots.
package chat

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"

	"astrochat/internal/gateway"
	"astrochat/internal/i18n"
	"astrochat/internal/logging"
)

// Role tags a transcript entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one transcript entry. The sequence is append-only except for
// in-place mutation of the last element while a reply streams.
type Message struct {
	Role    Role
	Content string
}

// AppError is a transient user-facing error shown by a dismissible banner.
type AppError struct {
	Title   string
	Message string
}

// Streamer is the slice of a gateway session the machine needs.
type Streamer interface {
	SendMessageStream(ctx context.Context, text string) iter.Seq2[string, error]
}

// SessionFactory creates a provider session for a level/language pair.
// *gateway.Client.StartChat satisfies it through a small adapter in the
// caller; tests substitute fakes.
type SessionFactory func(ctx context.Context, level i18n.EducationLevel, lang i18n.Language) (Streamer, error)

// Machine is the chat state machine. States: Idle (no session) →
// LevelSelected (session + transcript) ⇄ Sending. All methods are safe for
// concurrent use; in practice the TUI event loop is the only caller and
// stream updates arrive from one background command at a time.
type Machine struct {
	mu      sync.Mutex
	factory SessionFactory
	bundle  *i18n.Bundle

	session    Streamer
	level      i18n.EducationLevel
	transcript []Message
	sending    bool

	// gen invalidates in-flight sends: Back, Clear and SelectLevel bump it
	// so a stream that outlives the state it was started in cannot touch
	// the new transcript.
	gen    uint64
	cancel context.CancelFunc
}

// New returns an Idle machine.
func New(factory SessionFactory, bundle *i18n.Bundle) *Machine {
	return &Machine{factory: factory, bundle: bundle}
}

// SetBundle switches the localization bundle. The current transcript is
// untouched; the new language applies to future greetings and errors.
func (m *Machine) SetBundle(b *i18n.Bundle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundle = b
}

// SelectLevel creates a session seeded for the level. On failure the
// machine stays Idle and the returned AppError distinguishes a missing
// credential from everything else. Selecting a level while one is active
// replaces the previous handle; two live sessions never coexist.
func (m *Machine) SelectLevel(ctx context.Context, level i18n.EducationLevel) *AppError {
	m.mu.Lock()
	b := m.bundle
	factory := m.factory
	lang := b.Lang
	m.abortLocked()
	m.mu.Unlock()

	session, err := factory(ctx, level, lang)
	if err != nil {
		logging.Session("session creation failed: %v", err)
		return m.classifyInit(b, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
	m.level = level
	m.transcript = []Message{{Role: RoleModel, Content: b.Greeting}}
	m.sending = false
	return nil
}

// Send runs one user turn. It is guarded: a blank input, a missing session,
// or an in-progress send is silently dropped (no queueing). onUpdate, if
// non-nil, receives a transcript snapshot after every streamed fragment and
// after the rollback on failure.
func (m *Machine) Send(ctx context.Context, text string, onUpdate func([]Message)) *AppError {
	text = strings.TrimSpace(text)

	m.mu.Lock()
	if m.sending || text == "" || m.session == nil {
		m.mu.Unlock()
		return nil
	}
	m.sending = true
	session := m.session
	b := m.bundle
	gen := m.gen
	m.transcript = append(m.transcript,
		Message{Role: RoleUser, Content: text},
		Message{Role: RoleModel}) // optimistic placeholder for the stream
	streamCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	snapshot := snapshotLocked(m.transcript)
	m.mu.Unlock()

	defer cancel()
	if onUpdate != nil {
		onUpdate(snapshot)
	}

	var streamed strings.Builder
	for chunk, err := range session.SendMessageStream(streamCtx, text) {
		if err != nil {
			return m.failSend(b, gen, err, onUpdate)
		}
		streamed.WriteString(chunk)

		m.mu.Lock()
		if m.gen != gen {
			// Back/Clear happened mid-stream; drop the late update.
			m.mu.Unlock()
			return nil
		}
		m.transcript[len(m.transcript)-1].Content = streamed.String()
		snapshot = snapshotLocked(m.transcript)
		m.mu.Unlock()

		if onUpdate != nil {
			onUpdate(snapshot)
		}
	}

	m.mu.Lock()
	if m.gen == gen {
		m.sending = false
	}
	m.mu.Unlock()
	return nil
}

// failSend rolls the transcript back to a consistent shape (placeholder
// removed, user turn kept) and classifies the failure.
func (m *Machine) failSend(b *i18n.Bundle, gen uint64, err error, onUpdate func([]Message)) *AppError {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return nil
	}
	m.sending = false
	// Drop the optimistic placeholder, partially streamed or not.
	if n := len(m.transcript); n > 0 && m.transcript[n-1].Role == RoleModel {
		m.transcript = m.transcript[:n-1]
	}
	snapshot := snapshotLocked(m.transcript)
	m.mu.Unlock()

	if onUpdate != nil {
		onUpdate(snapshot)
	}

	logging.Session("send failed: %v", err)
	if gateway.IsAuth(err) {
		return &AppError{Title: b.ErrAuthTitle, Message: b.ErrAuthMessage}
	}
	return &AppError{Title: b.ErrSendFailedTitle, Message: b.ErrCosmicAnomaly + " " + err.Error()}
}

// Back discards the session and transcript unconditionally, returning the
// machine to Idle. An in-flight stream is cancelled and its late results
// ignored.
func (m *Machine) Back() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abortLocked()
	m.session = nil
	m.level = ""
	m.transcript = nil
}

// Clear keeps the session handle but resets the transcript to a fresh
// greeting. The provider-side history deliberately survives: the model
// keeps its memory of earlier turns across a visual clear.
func (m *Machine) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return
	}
	m.abortLocked()
	m.transcript = []Message{{Role: RoleModel, Content: m.bundle.Greeting}}
}

// abortLocked cancels any in-flight stream and invalidates its updates.
func (m *Machine) abortLocked() {
	m.gen++
	m.sending = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Transcript returns a copy of the current transcript.
func (m *Machine) Transcript() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshotLocked(m.transcript)
}

// Sending reports whether a turn is in flight.
func (m *Machine) Sending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sending
}

// HasSession reports whether a level has been selected.
func (m *Machine) HasSession() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// Level returns the active education level ("" when Idle).
func (m *Machine) Level() i18n.EducationLevel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

func (m *Machine) classifyInit(b *i18n.Bundle, err error) *AppError {
	switch {
	case errors.Is(err, gateway.ErrMissingAPIKey):
		return &AppError{Title: b.ErrAPIKeyNotFoundTitle, Message: b.ErrAPIKeyNotFoundMessage}
	case err != nil:
		return &AppError{Title: b.ErrInitFailedTitle, Message: b.ErrUnexpected + " " + err.Error()}
	}
	return &AppError{Title: b.ErrUnknownTitle, Message: b.ErrUnknownMessage}
}

func snapshotLocked(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
