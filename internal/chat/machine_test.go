package chat

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrochat/internal/gateway"
	"astrochat/internal/i18n"
)

// fakeSession replays canned fragments, optionally failing afterwards.
type fakeSession struct {
	fragments []string
	err       error
	sends     int
}

func (f *fakeSession) SendMessageStream(ctx context.Context, text string) iter.Seq2[string, error] {
	f.sends++
	return func(yield func(string, error) bool) {
		for _, frag := range f.fragments {
			if !yield(frag, nil) {
				return
			}
		}
		if f.err != nil {
			yield("", f.err)
		}
	}
}

func factoryFor(s Streamer, err error, created *int) SessionFactory {
	return func(ctx context.Context, level i18n.EducationLevel, lang i18n.Language) (Streamer, error) {
		if created != nil {
			*created++
		}
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func newSelected(t *testing.T, s Streamer) *Machine {
	t.Helper()
	m := New(factoryFor(s, nil, nil), i18n.Get(i18n.LangEnglish))
	require.Nil(t, m.SelectLevel(context.Background(), i18n.LevelIntermediate))
	return m
}

func TestSelectLevelSeedsGreeting(t *testing.T) {
	m := newSelected(t, &fakeSession{})

	tr := m.Transcript()
	require.Len(t, tr, 1)
	assert.Equal(t, RoleModel, tr[0].Role)
	assert.Equal(t, i18n.Get(i18n.LangEnglish).Greeting, tr[0].Content)
	assert.True(t, m.HasSession())
	assert.Equal(t, i18n.LevelIntermediate, m.Level())
}

func TestSelectLevelMissingKey(t *testing.T) {
	m := New(factoryFor(nil, gateway.ErrMissingAPIKey, nil), i18n.Get(i18n.LangEnglish))

	appErr := m.SelectLevel(context.Background(), i18n.LevelElementary)
	require.NotNil(t, appErr)
	assert.Equal(t, "API Key Not Found", appErr.Title)
	assert.False(t, m.HasSession(), "state must remain Idle")
	assert.Empty(t, m.Transcript())
}

func TestSelectLevelOtherFailure(t *testing.T) {
	m := New(factoryFor(nil, errors.New("boom"), nil), i18n.Get(i18n.LangEnglish))

	appErr := m.SelectLevel(context.Background(), i18n.LevelElementary)
	require.NotNil(t, appErr)
	assert.Equal(t, "Initialization Failed", appErr.Title)
	assert.Contains(t, appErr.Message, "boom")
}

func TestSelectLevelTwiceReplacesSession(t *testing.T) {
	created := 0
	s := &fakeSession{}
	m := New(factoryFor(s, nil, &created), i18n.Get(i18n.LangEnglish))

	require.Nil(t, m.SelectLevel(context.Background(), i18n.LevelElementary))
	require.Nil(t, m.SelectLevel(context.Background(), i18n.LevelHighSchool))

	assert.Equal(t, 2, created)
	assert.Equal(t, i18n.LevelHighSchool, m.Level())
	assert.Len(t, m.Transcript(), 1, "transcript reseeded with a single greeting")
}

func TestSendStreamsFragmentsInOrder(t *testing.T) {
	s := &fakeSession{fragments: []string{"A black hole ", "is a region ", "of spacetime."}}
	m := newSelected(t, s)

	var snapshots [][]Message
	appErr := m.Send(context.Background(), "What is a black hole?", func(tr []Message) {
		snapshots = append(snapshots, tr)
	})
	require.Nil(t, appErr)

	tr := m.Transcript()
	require.Len(t, tr, 3)
	assert.Equal(t, RoleUser, tr[1].Role)
	assert.Equal(t, "What is a black hole?", tr[1].Content)
	assert.Equal(t, RoleModel, tr[2].Role)
	assert.Equal(t, "A black hole is a region of spacetime.", tr[2].Content)
	assert.False(t, m.Sending())

	// Each snapshot's last entry is a prefix of the final reply: fragments
	// were applied in arrival order, never out of order.
	prev := ""
	for _, snap := range snapshots[1:] {
		last := snap[len(snap)-1]
		assert.Equal(t, RoleModel, last.Role)
		assert.True(t, len(last.Content) >= len(prev), "content only grows")
		assert.Equal(t, prev, last.Content[:len(prev)])
		prev = last.Content
	}
}

func TestSendGuards(t *testing.T) {
	s := &fakeSession{fragments: []string{"hi"}}
	m := newSelected(t, s)

	require.Nil(t, m.Send(context.Background(), "   ", nil))
	assert.Equal(t, 0, s.sends, "blank input must not reach the session")

	idle := New(factoryFor(s, nil, nil), i18n.Get(i18n.LangEnglish))
	require.Nil(t, idle.Send(context.Background(), "hello", nil))
	assert.Equal(t, 0, s.sends, "no session means no send")
}

func TestSendFailureRollsBackPlaceholder(t *testing.T) {
	s := &fakeSession{fragments: []string{"partial "}, err: errors.New("link severed")}
	m := newSelected(t, s)
	before := len(m.Transcript())

	appErr := m.Send(context.Background(), "hello?", nil)
	require.NotNil(t, appErr)
	assert.Equal(t, "Message Failed to Send", appErr.Title)
	assert.Contains(t, appErr.Message, "link severed")

	tr := m.Transcript()
	assert.Len(t, tr, before+1, "user turn kept, placeholder removed")
	assert.Equal(t, RoleUser, tr[len(tr)-1].Role)
	assert.False(t, m.Sending())
}

func TestSendFailureAuthClassified(t *testing.T) {
	s := &fakeSession{err: &gateway.AuthError{Err: errors.New("API key not valid")}}
	m := newSelected(t, s)

	appErr := m.Send(context.Background(), "hello?", nil)
	require.NotNil(t, appErr)
	assert.Equal(t, "Authentication Error", appErr.Title)
}

func TestBackDiscardsEverything(t *testing.T) {
	m := newSelected(t, &fakeSession{})
	m.Back()

	assert.False(t, m.HasSession())
	assert.Empty(t, m.Transcript())
	assert.Empty(t, m.Level())
}

func TestClearKeepsSessionResetsTranscript(t *testing.T) {
	created := 0
	s := &fakeSession{fragments: []string{"answer"}}
	m := New(factoryFor(s, nil, &created), i18n.Get(i18n.LangEnglish))
	require.Nil(t, m.SelectLevel(context.Background(), i18n.LevelElementary))
	require.Nil(t, m.Send(context.Background(), "question", nil))
	require.Len(t, m.Transcript(), 3)

	m.Clear()

	assert.Equal(t, 1, created, "clear must not create a new session")
	assert.True(t, m.HasSession())
	want := []Message{{Role: RoleModel, Content: i18n.Get(i18n.LangEnglish).Greeting}}
	if diff := cmp.Diff(want, m.Transcript()); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
}

func TestStaleStreamIgnoredAfterBack(t *testing.T) {
	s := &fakeSession{fragments: []string{"late ", "fragments"}}
	m := newSelected(t, s)

	first := true
	_ = m.Send(context.Background(), "question", func([]Message) {
		if first {
			first = false
			m.Back()
		}
	})

	assert.False(t, m.HasSession())
	assert.Empty(t, m.Transcript(), "late fragments must not resurrect state")
}

func TestClearScenarioGreetingLanguage(t *testing.T) {
	m := newSelected(t, &fakeSession{})
	m.SetBundle(i18n.Get(i18n.LangIndonesian))
	m.Clear()

	tr := m.Transcript()
	require.Len(t, tr, 1)
	assert.Equal(t, i18n.Get(i18n.LangIndonesian).Greeting, tr[0].Content)
}
