// Package logging provides config-driven categorized file logging for
// AstroChat. Logs go to <config dir>/logs/ with one file per category per
// day. Logging is controlled by the "logging" section of config.json; when
// debug mode is off nothing is written, which keeps the TUI's terminal
// output clean.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category names a log stream.
type Category string

const (
	CategoryBoot     Category = "boot"     // startup and shutdown
	CategorySession  Category = "session"  // chat sessions and turns
	CategoryGateway  Category = "gateway"  // provider API calls
	CategoryTimeline Category = "timeline" // layout and gesture decisions
	CategoryAudio    Category = "audio"    // cue and music lifecycle
	CategoryUI       Category = "ui"       // TUI events
)

// Options mirrors the logging section of the app config to avoid a
// circular import with internal/config.
type Options struct {
	DebugMode  bool            `json:"debug_mode"`
	Categories map[string]bool `json:"categories"`
}

type configFile struct {
	Logging Options `json:"logging"`
}

// Logger writes to one category's file. The zero value is a no-op.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	mu      sync.RWMutex
	loggers = make(map[Category]*Logger)
	logsDir string
	opts    Options
)

// Initialize points the logging system at the app's config directory and
// reads the logging options from config.json there. Call once at startup;
// a missing config means production mode (no logs).
func Initialize(configDir string) error {
	if configDir == "" {
		return fmt.Errorf("config dir required")
	}

	mu.Lock()
	logsDir = filepath.Join(configDir, "logs")
	opts = Options{}
	if data, err := os.ReadFile(filepath.Join(configDir, "config.json")); err == nil {
		var cf configFile
		if err := json.Unmarshal(data, &cf); err == nil {
			opts = cf.Logging
		}
	}
	enabled := opts.DebugMode
	dir := logsDir
	mu.Unlock()

	if !enabled {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	Boot("=== AstroChat logging initialized (%s) ===", dir)
	return nil
}

// SetOptions overrides the loaded options (used by tests and by the CLI
// --verbose flag).
func SetOptions(configDir string, o Options) {
	mu.Lock()
	if configDir != "" {
		logsDir = filepath.Join(configDir, "logs")
	}
	opts = o
	mu.Unlock()
	if o.DebugMode {
		mu.RLock()
		dir := logsDir
		mu.RUnlock()
		_ = os.MkdirAll(dir, 0o755)
	}
}

func enabled(c Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	if !opts.DebugMode || logsDir == "" {
		return false
	}
	if opts.Categories == nil {
		return true
	}
	on, found := opts.Categories[string(c)]
	return !found || on
}

// Get returns (or creates) the logger for a category. Disabled categories
// get a no-op logger.
func Get(c Category) *Logger {
	if !enabled(c) {
		return &Logger{category: c}
	}

	mu.RLock()
	if l, ok := loggers[c]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[c]; ok {
		return l
	}

	name := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), c)
	file, err := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] could not open %s: %v\n", name, err)
		return &Logger{category: c}
	}
	l := &Logger{
		category: c,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[c] = l
	return l
}

func (l *Logger) Info(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files. Call at shutdown.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			_ = l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Convenience functions; no-ops when the category is disabled.

func Boot(format string, args ...any)     { Get(CategoryBoot).Info(format, args...) }
func Session(format string, args ...any)  { Get(CategorySession).Info(format, args...) }
func Gateway(format string, args ...any)  { Get(CategoryGateway).Info(format, args...) }
func Timeline(format string, args ...any) { Get(CategoryTimeline).Info(format, args...) }
func Audio(format string, args ...any)    { Get(CategoryAudio).Info(format, args...) }
func UI(format string, args ...any)       { Get(CategoryUI).Info(format, args...) }
