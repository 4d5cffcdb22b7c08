package gateway

import (
	"fmt"
	"strings"

	"astrochat/internal/i18n"
)

const baseInstruction = `You are AstroChat AI, an expert astronomer and enthusiastic educator. Your purpose is to provide clear, accurate, and engaging answers to questions about astronomy, astrophysics, and space exploration.
- When asked about a celestial object, try to include a fascinating fact.
- Structure your responses for readability using markdown (lists, bolding, etc.).
- Your passion for the cosmos should be evident in your tone.
- For mathematical formulas, use LaTeX syntax. Enclose inline formulas with single dollar signs (e.g., $E=mc^2$) and block formulas with double dollar signs.`

var levelInstructions = map[i18n.EducationLevel]string{
	i18n.LevelElementary:   "You are speaking to an elementary school student. Explain concepts in very simple terms, using fun analogies a child can understand. Avoid jargon and keep sentences short. Be very encouraging and excited!",
	i18n.LevelHighSchool:   "You are speaking to a high school student. You can use common scientific terms but should explain them clearly. Assume a baseline knowledge of science, but not advanced physics or math. Your goal is to make learning engaging and clear for a teenager.",
	i18n.LevelIntermediate: "You are speaking to a university-level student. Provide detailed, in-depth answers. You can use complex terminology and assume a strong foundation in physics and mathematics. Your answers should be precise, comprehensive, and suitable for someone studying astronomy or a related field.",
}

var languageInstructions = map[i18n.Language]string{
	i18n.LangEnglish:    "Respond in English.",
	i18n.LangIndonesian: "Respond in Indonesian (Bahasa Indonesia).",
}

// systemInstruction composes the persona, audience level, and language
// directives for a chat session. Plain concatenation; the pieces are fixed
// for the lifetime of the session.
func systemInstruction(level i18n.EducationLevel, lang i18n.Language) string {
	levelText, ok := levelInstructions[level]
	if !ok {
		levelText = levelInstructions[i18n.LevelHighSchool]
	}
	langText, ok := languageInstructions[lang]
	if !ok {
		langText = languageInstructions[i18n.LangEnglish]
	}
	return fmt.Sprintf("%s\n\n**Audience Level Context:**\n%s\n\n%s", baseInstruction, levelText, langText)
}

const imagePromptInstruction = `You are an AI assistant that creates concise, descriptive, and visually rich prompts for an image generation model. Based on the following text about astronomy, create a single, clear, artistic prompt that captures the main subject and atmosphere. The prompt should be a single sentence or a short phrase, focusing on visual elements. Example style: "A breathtaking nebula with swirling clouds of pink and blue gas, newborn stars twinkling within, hyperrealistic, 8k". Do not add any extra text or explanations.`

const visualizationInstruction = `You are an expert web developer specializing in creative and scientific visualizations. Your task is to generate a single, self-contained HTML file with embedded CSS and JavaScript. This file should create a visually engaging, animated representation of the described cosmic scene.
- The visualization must be responsive and fill its container. Use a dark, cosmic theme.
- The animation should start automatically on load and loop.
- DO NOT use any external libraries (like p5.js, three.js), images, or fonts. All assets must be generated with vanilla JS/CSS/HTML (e.g., canvas, svg, css animations).
- The code must be a complete HTML document, starting with <!DOCTYPE html> and ending with </html>.
- Ensure the animation is performant and lightweight.`

const defaultVisualizationConcept = `An animated representation of the Big Bang and the early universe expansion. Example concept: an initial flash from the center, followed by particles expanding outwards, changing color as they "cool", and eventually forming complex structures or galaxies in a simplified way.`

// visualizationPrompt returns the user-turn prompt for visualization code
// generation. A nil event falls back to the Big Bang default.
func visualizationPrompt(event *i18n.CosmicEvent) string {
	if event == nil {
		return "Generate the visualization code now. Scene to depict:\n" + defaultVisualizationConcept
	}
	return fmt.Sprintf("Generate the visualization code for %q now. Scene to depict:\n%s", event.Name, event.VisualizationPrompt)
}

// stripCodeFences removes a surrounding markdown code fence, with or
// without a language tag, from a raw model response.
func stripCodeFences(raw string) string {
	code := strings.TrimSpace(raw)
	if !strings.HasPrefix(code, "```") {
		return code
	}
	code = strings.TrimPrefix(code, "```")
	// Drop the language tag up to the first newline, if any.
	if idx := strings.IndexByte(code, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(code[:idx])
		if firstLine == "" || isFenceTag(firstLine) {
			code = code[idx+1:]
		}
	}
	code = strings.TrimSuffix(strings.TrimSpace(code), "```")
	return strings.TrimSpace(code)
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-') {
			return false
		}
	}
	return true
}
