package chat

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"astrochat/cmd/astrochat/ui"
	"astrochat/internal/audio"
	"astrochat/internal/browser"
	core "astrochat/internal/chat"
	"astrochat/internal/config"
	"astrochat/internal/gateway"
	"astrochat/internal/i18n"
	"astrochat/internal/logging"
	"astrochat/internal/viz"
)

// Run wires every service together and blocks on the interface. A missing
// API key does not abort startup: the machine reports it when the first
// level is picked, matching the banner-on-first-use contract.
func Run(ctx context.Context, cfg config.Config, apiKey string, lang i18n.Language) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var gw *gateway.Client
	if apiKey != "" {
		var err error
		gw, err = gateway.New(ctx, gateway.Config{APIKey: apiKey})
		if err != nil {
			return fmt.Errorf("gateway: %w", err)
		}
	}

	factory := func(ctx context.Context, level i18n.EducationLevel, lang i18n.Language) (core.Streamer, error) {
		if gw == nil {
			return nil, gateway.ErrMissingAPIKey
		}
		return gw.StartChat(ctx, level, lang)
	}
	machine := core.New(factory, i18n.Get(lang))

	var gen *viz.Generator
	if gw != nil {
		gen = viz.NewGenerator(gw, lang)
	}

	music := audio.NewPlayer()
	defer music.Close()
	if cfg.MusicEnabled {
		music.Play()
	}

	deps := Deps{
		Machine:   machine,
		Generator: gen,
		Music:     music,
		Cues:      audio.NewCuePlayer(),
		Preview:   browser.New(browser.DefaultConfig()),
		Lang:      lang,
		Theme:     ui.ThemeByName(cfg.Theme),
	}
	model := NewModel(ctx, deps)
	defer model.Close()
	defer deps.Preview.Close()

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Live-reload theme and language edits while the interface runs.
	if path, err := config.File(); err == nil {
		go func() {
			err := config.Watch(ctx, path, func(c config.Config) {
				p.Send(ConfigReloadMsg{Theme: c.Theme, Language: c.Language})
			})
			if err != nil && ctx.Err() == nil {
				logging.Boot("config watch stopped: %v", err)
			}
		}()
	}

	_, err := p.Run()
	return err
}
