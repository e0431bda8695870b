package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/frostline-games/support-agent/internal/domain"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		name string
		text string
		want domain.Language
	}{
		{"korean", "결제가 안돼요", domain.LanguageKorean},
		{"japanese hiragana", "ゲームがクラッシュします", domain.LanguageJapanese},
		{"japanese katakana", "チャージできない", domain.LanguageJapanese},
		{"simplified chinese", "充值了但没到账", domain.LanguageSimplifiedChinese},
		{"traditional chinese", "遊戲閃退了，請幫我看看這個問題", domain.LanguageTraditionalChinese},
		{"chinese without marker chars defaults simplified", "充值失败", domain.LanguageSimplifiedChinese},
		{"english", "I paid but didn't receive my item", domain.LanguageEnglish},
		{"spanish diacritics", "¿Dónde está mi compra?", domain.LanguageSpanish},
		{"spanish stop words", "quiero un reembolso por mi compra", domain.LanguageSpanish},
		{"empty", "", domain.LanguageUnknown},
		{"whitespace", "   \n\t", domain.LanguageUnknown},
		{"digits only", "1234567890", domain.LanguageUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Detect(tc.text))
		})
	}
}

func TestDetectPriorityOverCJK(t *testing.T) {
	// Hangul wins even when CJK ideographs are present.
	assert.Equal(t, domain.LanguageKorean, Detect("결제 問題"))
	// Kana wins even when CJK ideographs are present.
	assert.Equal(t, domain.LanguageJapanese, Detect("課金できない"))
	// Hangul outranks kana.
	assert.Equal(t, domain.LanguageKorean, Detect("결제 チャージ"))
}

func TestDetectMixedChineseCountsMarkers(t *testing.T) {
	// More traditional marker characters than simplified ones.
	assert.Equal(t, domain.LanguageTraditionalChinese, Detect("這個遊戲的問題"))
	// Tie between marker sets falls back to simplified.
	assert.Equal(t, domain.LanguageSimplifiedChinese, Detect("的 這"))
}
