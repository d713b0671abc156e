// Package langdetect classifies input text as English, Hindi, or Hinglish and
// maps each language to a fixed system prompt.
package langdetect

import "unicode"

// Language is a detected language tag.
type Language string

const (
	English  Language = "en"
	Hindi    Language = "hi"
	Hinglish Language = "hinglish"
)

// Devanagari Unicode block boundaries (U+0900 to U+097F).
const (
	devanagariLo = 0x0900
	devanagariHi = 0x097F
)

// hindiRatioThreshold separates Hindi from code-mixed Hinglish: above this
// share of Devanagari characters the text counts as Hindi.
const hindiRatioThreshold = 0.3

// Detect classifies text by its share of Devanagari characters. Text with no
// Devanagari at all is English; a ratio above the threshold is Hindi; anything
// in between is Hinglish. Empty or whitespace-only input defaults to English.
func Detect(text string) Language {
	var devanagari, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if r >= devanagariLo && r <= devanagariHi {
			devanagari++
		}
	}

	if total == 0 || devanagari == 0 {
		return English
	}
	if float64(devanagari)/float64(total) > hindiRatioThreshold {
		return Hindi
	}
	return Hinglish
}

var prompts = map[Language]string{
	English: "You are a helpful, knowledgeable AI assistant. " +
		"Respond naturally and conversationally in English. " +
		"Be concise, accurate, and friendly.",
	Hindi: "आप एक सहायक, ज्ञानी AI सहायक हैं। " +
		"हिंदी में स्वाभाविक और बातचीत के तरीके से जवाब दें। " +
		"संक्षिप्त, सटीक और मित्रतापूर्ण रहें।",
	Hinglish: "You are a helpful, knowledgeable AI assistant. " +
		"Respond naturally in Hinglish (Hindi-English mix). " +
		"Use a mix of Hindi and English as appropriate. " +
		"Be concise, accurate, and friendly.",
}

// SystemPrompt returns the instruction string for a language, falling back to
// the English prompt for any unrecognized tag. It never fails; callers depend
// on always receiving a valid prompt.
func SystemPrompt(lang Language) string {
	if p, ok := prompts[lang]; ok {
		return p
	}
	return prompts[English]
}
