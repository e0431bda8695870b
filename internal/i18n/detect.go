// Package i18n implements the heuristic language detector and the
// per-language keyword classification tables. Both are deterministic and
// dependency free; accuracy is sufficient for routing, not translation.
package i18n

import (
	"strings"

	"github.com/frostline-games/support-agent/internal/domain"
)

// Characters whose written form differs between the two Chinese scripts.
// Used only to disambiguate once CJK ideographs are present.
var simplifiedChars = runeSet("的了在是有个为之与")

var traditionalChars = runeSet(
	"這們個來說時過對機經開長場愛現動國從當點問裡後" +
		"麼東車馬魚鳥門語話見貝電頭體會" +
		"沒帳遊戲題請員號舉裏")

// Spanish stop words recognizable without diacritics.
var spanishStopWords = wordSet(
	"el", "la", "los", "las", "un", "una", "unos", "unas",
	"mi", "tu", "su", "mis", "tus", "sus",
	"y", "o", "pero", "porque", "para", "por", "con", "sin",
	"en", "de", "a", "que", "como", "cuando", "donde",
	"no", "si", "sí", "esta", "este", "esto", "está",
	"quiero", "necesito", "tengo", "hay", "son", "es",
	"pago", "cuenta", "juego", "ayuda", "problema", "cuestión", "funciona",
	"reembolso", "devolución", "congela", "suspendida", "reportar", "trampa",
)

const spanishMarkers = "áéíóúüñ¿¡ÁÉÍÓÚÜÑ"

// Detect returns the language tag for text. It is total: inconclusive input
// yields LanguageUnknown rather than an error.
//
// Priority order, first match wins:
//  1. Hangul            -> ko
//  2. Hiragana/Katakana -> ja
//  3. CJK ideographs    -> zh-CN vs zh-TW by script-specific character counts
//  4. Latin script      -> es by markers or stop-word ratio, else en
//  5. otherwise         -> unknown
func Detect(text string) domain.Language {
	if strings.TrimSpace(text) == "" {
		return domain.LanguageUnknown
	}

	if containsHangul(text) {
		return domain.LanguageKorean
	}
	if containsKana(text) {
		return domain.LanguageJapanese
	}

	if containsCJKIdeograph(text) {
		return detectChineseVariant(text)
	}

	if containsLatin(text) {
		if strings.ContainsAny(text, spanishMarkers) {
			return domain.LanguageSpanish
		}
		if hasSpanishStopWords(text) {
			return domain.LanguageSpanish
		}
		return domain.LanguageEnglish
	}

	return domain.LanguageUnknown
}

func detectChineseVariant(text string) domain.Language {
	var simp, trad int
	for _, r := range text {
		if _, ok := simplifiedChars[r]; ok {
			simp++
		}
		if _, ok := traditionalChars[r]; ok {
			trad++
		}
	}
	if trad > simp {
		return domain.LanguageTraditionalChinese
	}
	// Ties and absence of both marker sets default to Simplified, which has
	// the larger user base.
	return domain.LanguageSimplifiedChinese
}

func containsHangul(text string) bool {
	for _, r := range text {
		if (r >= 0xAC00 && r <= 0xD7AF) || // Hangul syllables
			(r >= 0x1100 && r <= 0x11FF) || // Hangul jamo
			(r >= 0x3130 && r <= 0x318F) { // compatibility jamo
			return true
		}
	}
	return false
}

func containsKana(text string) bool {
	for _, r := range text {
		if (r >= 0x3040 && r <= 0x309F) || // hiragana
			(r >= 0x30A0 && r <= 0x30FF) || // katakana
			(r >= 0x31F0 && r <= 0x31FF) { // katakana phonetic extensions
			return true
		}
	}
	return false
}

func containsCJKIdeograph(text string) bool {
	for _, r := range text {
		if r >= 0x4E00 && r <= 0x9FFF {
			return true
		}
	}
	return false
}

func containsLatin(text string) bool {
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func hasSpanishStopWords(text string) bool {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return false
	}
	matches := 0
	for _, w := range words {
		if _, ok := spanishStopWords[w]; ok {
			matches++
		}
	}
	return matches >= 1 && float64(matches)/float64(len(words)) >= 0.3
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
