package viz

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrochat/internal/i18n"
)

const sampleDoc = `<!DOCTYPE html>
<html><head><style>body{background:#000}</style></head>
<body><canvas id="c"></canvas><script>console.log("bang")</script></body></html>`

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(sampleDoc))
	assert.Error(t, Validate(""))
	assert.Error(t, Validate("   \n"))
	assert.Error(t, Validate("Sure! Here is a visualization of the Big Bang."), "prose is not a document")
}

func TestHostDocumentSandbox(t *testing.T) {
	doc := HostDocument(sampleDoc, "The Big Bang", "en")

	assert.Contains(t, doc, `sandbox="allow-scripts"`)
	assert.NotContains(t, doc, "allow-same-origin")
	assert.NotContains(t, doc, "allow-top-navigation")
	assert.NotContains(t, doc, "allow-forms")
	assert.Contains(t, doc, `srcdoc="`)
	// The artifact must be attribute-escaped, never inlined raw.
	assert.NotContains(t, doc, "<canvas")
	assert.Contains(t, doc, "&lt;canvas")
}

func TestHostDocumentEscapesTitle(t *testing.T) {
	doc := HostDocument(sampleDoc, `"><script>alert(1)</script>`, "en")
	assert.NotContains(t, doc, `"><script>alert(1)</script>`)
}

func TestWriteArtifact(t *testing.T) {
	path, err := WriteArtifact(sampleDoc, "Recombination", "id")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<!DOCTYPE html>"))
	assert.Contains(t, string(data), `lang="id"`)

	_, err = WriteArtifact("not html", "x", "en")
	assert.Error(t, err)
}

type fakeSource struct {
	mu      sync.Mutex
	calls   int32
	started chan struct{}
	block   chan struct{}
	code    string
	err     error
	lastEvt *i18n.CosmicEvent
}

func (f *fakeSource) GenerateVisualizationCode(ctx context.Context, event *i18n.CosmicEvent) (string, error) {
	n := atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.lastEvt = event
	f.mu.Unlock()
	if f.started != nil && n == 1 {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.code, f.err
}

func TestGeneratorDedupesConcurrentRequests(t *testing.T) {
	src := &fakeSource{
		code:    sampleDoc,
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	g := NewGenerator(src, i18n.LangEnglish)
	ev := &i18n.CosmicEvent{Name: "First Stars Ignite"}

	results := make(chan *Artifact, 2)
	gen := func() {
		art, err := g.Generate(context.Background(), ev)
		assert.NoError(t, err)
		results <- art
	}

	go gen()
	<-src.started // the first call is inside the model stub
	go gen()
	time.Sleep(50 * time.Millisecond) // let the second call join the flight
	close(src.block)

	a, b := <-results, <-results
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.calls), "concurrent requests share one model call")
	assert.Same(t, a, b)
	t.Cleanup(func() { os.Remove(a.Path) })
}

func TestGeneratorFailurePropagates(t *testing.T) {
	src := &fakeSource{err: errors.New("model unavailable")}
	g := NewGenerator(src, i18n.LangEnglish)

	art, err := g.Generate(context.Background(), nil)
	assert.Error(t, err)
	assert.Nil(t, art)
	assert.Nil(t, g.Current())
}

func TestGeneratorDiscardRemovesFile(t *testing.T) {
	src := &fakeSource{code: sampleDoc}
	g := NewGenerator(src, i18n.LangEnglish)

	art, err := g.Generate(context.Background(), &i18n.CosmicEvent{Name: "Galaxy Formation"})
	require.NoError(t, err)
	require.FileExists(t, art.Path)

	g.Discard()
	assert.Nil(t, g.Current())
	assert.NoFileExists(t, art.Path)
	assert.NotPanics(t, g.Discard, "double discard is harmless")
}

func TestGeneratorNilEventUsesDefaultConcept(t *testing.T) {
	src := &fakeSource{code: sampleDoc}
	g := NewGenerator(src, i18n.LangEnglish)

	art, err := g.Generate(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(art.Path) })
	assert.Nil(t, src.lastEvt)
	assert.Nil(t, art.Event)
}
