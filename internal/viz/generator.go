package viz

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"astrochat/internal/i18n"
)

// CodeSource is the slice of the gateway the generator needs.
type CodeSource interface {
	GenerateVisualizationCode(ctx context.Context, event *i18n.CosmicEvent) (string, error)
}

// Artifact is one generated, validated visualization.
type Artifact struct {
	Event *i18n.CosmicEvent
	Code  string
	// Path is the sandboxed host page on disk, ready for a browser.
	Path string
}

// Generator produces visualization artifacts on demand. Concurrent
// requests for the same event share one model call; a request for a
// different event runs independently. Results are not cached: a repeat
// request after completion generates fresh code.
type Generator struct {
	source CodeSource
	lang   i18n.Language
	group  singleflight.Group

	mu      sync.Mutex
	current *Artifact
}

// NewGenerator builds a generator over a code source.
func NewGenerator(source CodeSource, lang i18n.Language) *Generator {
	return &Generator{source: source, lang: lang}
}

// Generate runs one model call for the event (nil means the default
// concept), validates the result, writes the host page and records it as
// the current artifact. Duplicate concurrent calls for the same event
// receive the same artifact.
func (g *Generator) Generate(ctx context.Context, event *i18n.CosmicEvent) (*Artifact, error) {
	key := "default"
	title := "The Big Bang"
	if event != nil {
		key = event.Name
		title = event.Name
	}

	v, err, _ := g.group.Do(key, func() (any, error) {
		code, err := g.source.GenerateVisualizationCode(ctx, event)
		if err != nil {
			return nil, err
		}
		path, err := WriteArtifact(code, title, string(g.lang))
		if err != nil {
			return nil, err
		}
		return &Artifact{Event: event, Code: code, Path: path}, nil
	})
	if err != nil {
		return nil, err
	}

	art := v.(*Artifact)
	g.mu.Lock()
	g.current = art
	g.mu.Unlock()
	return art, nil
}

// Current returns the last generated artifact, nil when none.
func (g *Generator) Current() *Artifact {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Discard forgets the current artifact and removes its file. Selecting a
// different timeline event calls this so a stale visualization never shows
// under the new selection.
func (g *Generator) Discard() {
	g.mu.Lock()
	art := g.current
	g.current = nil
	g.mu.Unlock()
	if art != nil {
		removeArtifact(art.Path)
	}
}
