// AstroChat is a terminal companion for exploring 13.8 billion years of
// cosmic history with a generative model: streaming astronomy chat tuned
// to an audience level, an interactive timeline, and AI-generated
// visualizations, images and video.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"astrochat/cmd/astrochat/chat"
	"astrochat/internal/browser"
	"astrochat/internal/config"
	"astrochat/internal/gateway"
	"astrochat/internal/i18n"
	"astrochat/internal/logging"
	"astrochat/internal/viz"
)

var (
	flagAPIKey  string
	flagLang    string
	flagVerbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "astrochat",
	Short: "AstroChat AI - cosmic exploration companion",
	Long: `AstroChat AI is a Gemini-backed astronomy companion.

Run without arguments to start the interactive chat interface: pick an
explanation level, ask about the universe, browse the cosmic timeline and
generate visualizations of its milestones.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive interface owns the terminal; only subcommands
		// log to stderr.
		if cmd == rootCmd {
			return nil
		}
		zcfg := zap.NewProductionConfig()
		if flagVerbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		lang := resolveLang(cfg)
		if dir, err := config.Dir(); err == nil {
			_ = logging.Initialize(dir)
			defer logging.CloseAll()
		}
		logging.Boot("astrochat starting, lang=%s", lang)
		return chat.Run(cmd.Context(), cfg, resolveAPIKey(cfg), lang)
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the cosmic timeline events",
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle := i18n.Get(resolveLang(loadConfig()))
		for _, ev := range bundle.Events {
			fmt.Printf("%-22s %s\n", bundle.FormatTime(ev.Time), ev.Name)
			fmt.Printf("    %s\n", ev.Description)
		}
		return nil
	},
}

var (
	flagOpen   bool
	flagVizOut string
)

var visualizeCmd = &cobra.Command{
	Use:   "visualize [event name]",
	Short: "Generate an AI visualization of a cosmic event",
	Long: `Asks the model for a self-contained HTML/CSS/JS animation of the named
timeline event (default: the Big Bang), wraps it in a sandboxed host page
and writes it to disk. --open previews it in Chromium.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		lang := resolveLang(cfg)
		gw, err := newGateway(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		var event *i18n.CosmicEvent
		if len(args) > 0 {
			name := strings.Join(args, " ")
			ev, ok := i18n.Get(lang).EventByName(name)
			if !ok {
				return fmt.Errorf("unknown event %q (see: astrochat events)", name)
			}
			event = ev
		}

		logger.Info("generating visualization", zap.String("event", eventLabel(event)))
		gen := viz.NewGenerator(gw, lang)
		art, err := gen.Generate(cmd.Context(), event)
		if err != nil {
			return err
		}

		path := art.Path
		if flagVizOut != "" {
			if err := os.WriteFile(flagVizOut, []byte(viz.HostDocument(art.Code, eventLabel(event), string(lang))), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", flagVizOut, err)
			}
			path = flagVizOut
		}
		fmt.Println(path)

		if flagOpen {
			prev := browser.New(browser.DefaultConfig())
			defer prev.Close()
			if err := prev.Open(cmd.Context(), path); err != nil {
				return err
			}
			fmt.Println("press enter to close the preview")
			fmt.Scanln()
		}
		return nil
	},
}

var flagImageOut string

var imageCmd = &cobra.Command{
	Use:   "image [description]",
	Short: "Generate a cosmic image from a description",
	Long: `Refines the description into an image prompt and renders it.
The result is written as JPEG to --out.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		gw, err := newGateway(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		desc := strings.Join(args, " ")
		prompt, err := gw.CreateImagePrompt(cmd.Context(), desc)
		if err != nil {
			return err
		}
		logger.Info("image prompt ready", zap.String("prompt", prompt))

		data, err := gw.GenerateImage(cmd.Context(), prompt)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flagImageOut, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", flagImageOut, err)
		}
		fmt.Println(flagImageOut)
		return nil
	},
}

var videoCmd = &cobra.Command{
	Use:   "video [description]",
	Short: "Generate a short cosmic video from a description",
	Long: `Submits a video generation job and polls it to completion (checks every
10 seconds; expect a few minutes). Prints the authenticated artifact URI.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		gw, err := newGateway(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		logger.Info("video generation submitted")
		uri, err := gw.GenerateVideo(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(uri)
		return nil
	},
}

func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return cfg
}

func resolveAPIKey(cfg config.Config) string {
	if flagAPIKey != "" {
		return flagAPIKey
	}
	if env := gateway.APIKeyFromEnv(); env != "" {
		return env
	}
	return cfg.APIKey
}

func resolveLang(cfg config.Config) i18n.Language {
	raw := flagLang
	if raw == "" {
		raw = cfg.Language
	}
	lang, err := i18n.ParseLanguage(raw)
	if err != nil {
		return i18n.LangEnglish
	}
	return lang
}

func newGateway(ctx context.Context, cfg config.Config) (*gateway.Client, error) {
	return gateway.New(ctx, gateway.Config{APIKey: resolveAPIKey(cfg)})
}

func eventLabel(e *i18n.CosmicEvent) string {
	if e == nil {
		return "The Big Bang"
	}
	return e.Name
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "Gemini API key (overrides API_KEY and config)")
	rootCmd.PersistentFlags().StringVar(&flagLang, "lang", "", "interface language: en or id")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	visualizeCmd.Flags().BoolVar(&flagOpen, "open", false, "preview the artifact in Chromium")
	visualizeCmd.Flags().StringVar(&flagVizOut, "out", "", "write the host page to this path")
	imageCmd.Flags().StringVar(&flagImageOut, "out", "cosmic.jpg", "output JPEG path")

	rootCmd.AddCommand(eventsCmd, visualizeCmd, imageCmd, videoCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
