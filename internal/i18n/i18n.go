// Package i18n holds the embedded localization bundles for AstroChat.
// Each supported language maps to a Bundle of UI strings plus the cosmic
// timeline event data. Bundles are static: switching language swaps the
// whole bundle, there is no per-key fallback.
package i18n

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Language is a supported language tag.
type Language string

const (
	LangEnglish    Language = "en"
	LangIndonesian Language = "id"
)

// Languages lists the supported tags in display order.
var Languages = []Language{LangEnglish, LangIndonesian}

// EducationLevel selects the persona instruction controlling response
// complexity. The values double as display names in the English bundle.
type EducationLevel string

const (
	LevelElementary   EducationLevel = "Elementary"
	LevelHighSchool   EducationLevel = "High School"
	LevelIntermediate EducationLevel = "Intermediate"
)

// CosmicEvent is a static timeline entry.
type CosmicEvent struct {
	Time                int64    `yaml:"time"` // years after the Big Bang
	Name                string   `yaml:"name"`
	Description         string   `yaml:"description"`
	VisualizationPrompt string   `yaml:"visualizationPrompt"`
	FunFacts            []string `yaml:"funFacts"`
}

// LevelOption is an education level with its localized blurb.
type LevelOption struct {
	Name        EducationLevel `yaml:"name"`
	Description string         `yaml:"description"`
}

// Bundle is the full string/content set for one language.
type Bundle struct {
	Lang Language `yaml:"-"`

	HeaderSubtitle   string `yaml:"headerSubtitle"`
	InputPlaceholder string `yaml:"inputPlaceholder"`

	WelcomeToAstroChat string        `yaml:"welcomeToAstroChat"`
	SelectLevelPrompt  string        `yaml:"selectLevelPrompt"`
	EducationLevels    []LevelOption `yaml:"educationLevels"`

	PromptSuggestions []string `yaml:"promptSuggestions"`

	TimelineTitle       string `yaml:"timelineTitle"`
	TimelineSubtitle    string `yaml:"timelineSubtitle"`
	TimelineLabel       string `yaml:"timelineLabel"`
	TimelineEventHover  string `yaml:"timelineEventHover"`
	TimelineEventSelect string `yaml:"timelineEventSelect"`

	ButtonGenerateVis     string `yaml:"buttonGenerateVis"`
	VisLoadingMessage     string `yaml:"visLoadingMessage"` // {eventName} placeholder
	VisFunFactMessage     string `yaml:"visFunFactMessage"`
	ButtonAskWhileWaiting string `yaml:"buttonAskWhileWaiting"`
	VisResultTitle        string `yaml:"visResultTitle"`

	TimeUnitYear1    string `yaml:"timeUnitYear1"`
	TimeUnitYears    string `yaml:"timeUnitYears"`
	TimeUnitThousand string `yaml:"timeUnitThousand"`
	TimeUnitMillion  string `yaml:"timeUnitMillion"`
	TimeUnitBillion  string `yaml:"timeUnitBillion"`

	Greeting string `yaml:"greeting"`

	ErrAPIKeyNotFoundTitle   string `yaml:"errApiKeyNotFoundTitle"`
	ErrAPIKeyNotFoundMessage string `yaml:"errApiKeyNotFoundMessage"`
	ErrInitFailedTitle       string `yaml:"errInitFailedTitle"`
	ErrUnexpected            string `yaml:"errUnexpected"`
	ErrUnknownTitle          string `yaml:"errUnknownTitle"`
	ErrUnknownMessage        string `yaml:"errUnknownMessage"`
	ErrAuthTitle             string `yaml:"errAuthTitle"`
	ErrAuthMessage           string `yaml:"errAuthMessage"`
	ErrSendFailedTitle       string `yaml:"errSendFailedTitle"`
	ErrCosmicAnomaly         string `yaml:"errCosmicAnomaly"`
	ErrGenerationTitle       string `yaml:"errGenerationTitle"`
	ErrGenerationMessage     string `yaml:"errGenerationMessage"`

	Events []CosmicEvent `yaml:"events"`
}

var bundles = map[Language]*Bundle{}

func init() {
	for _, lang := range Languages {
		data, err := localeFS.ReadFile(fmt.Sprintf("locales/%s.yaml", lang))
		if err != nil {
			panic(fmt.Sprintf("i18n: missing embedded locale %q: %v", lang, err))
		}
		b := &Bundle{Lang: lang}
		if err := yaml.Unmarshal(data, b); err != nil {
			panic(fmt.Sprintf("i18n: bad locale %q: %v", lang, err))
		}
		bundles[lang] = b
	}
}

// Get returns the bundle for lang, falling back to English for anything
// unrecognized.
func Get(lang Language) *Bundle {
	if b, ok := bundles[lang]; ok {
		return b
	}
	return bundles[LangEnglish]
}

// ParseLanguage normalizes a user-supplied tag.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LangEnglish:
		return LangEnglish, nil
	case LangIndonesian:
		return LangIndonesian, nil
	}
	return "", fmt.Errorf("unsupported language %q (supported: en, id)", s)
}

// ParseLevel normalizes a user-supplied education level.
func ParseLevel(s string) (EducationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "elementary":
		return LevelElementary, nil
	case "high school", "high-school", "highschool":
		return LevelHighSchool, nil
	case "intermediate":
		return LevelIntermediate, nil
	}
	return "", fmt.Errorf("unknown education level %q", s)
}

// VisLoading renders the visualization loading message with the event name
// substituted. This is the only runtime string interpolation the bundles
// need.
func (b *Bundle) VisLoading(eventName string) string {
	return strings.ReplaceAll(b.VisLoadingMessage, "{eventName}", eventName)
}

// EventByName looks up a cosmic event by its localized name,
// case-insensitively.
func (b *Bundle) EventByName(name string) (*CosmicEvent, bool) {
	for i := range b.Events {
		if strings.EqualFold(b.Events[i].Name, name) {
			return &b.Events[i], true
		}
	}
	return nil, false
}

// FormatTime renders a years-after-origin offset with localized unit words.
func (b *Bundle) FormatTime(years int64) string {
	switch {
	case years <= 1:
		return b.TimeUnitYear1
	case years < 1_000_000:
		return fmt.Sprintf("%s %s %s", formatCompact(float64(years)/1_000), b.TimeUnitThousand, b.TimeUnitYears)
	case years < 1_000_000_000:
		return fmt.Sprintf("%s %s %s", formatCompact(float64(years)/1_000_000), b.TimeUnitMillion, b.TimeUnitYears)
	default:
		return fmt.Sprintf("%s %s %s", formatCompact(float64(years)/1_000_000_000), b.TimeUnitBillion, b.TimeUnitYears)
	}
}

func formatCompact(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}
