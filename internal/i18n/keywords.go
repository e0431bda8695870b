package i18n

import (
	"fmt"
	"strings"

	"github.com/frostline-games/support-agent/internal/domain"
)

// categoryKeywords maps every (category, language) pair to its curated
// keyword list. Every pair has a non-empty list; the unknown-language row is
// the fallback when detection is inconclusive.
var categoryKeywords = map[domain.Category]map[domain.Language][]string{
	domain.CategoryPayment: {
		domain.LanguageSimplifiedChinese:  {"充值", "支付", "付款", "扣费", "到账", "充值失败", "没到账"},
		domain.LanguageTraditionalChinese: {"充值", "支付", "付款", "扣費", "到帳", "儲值"},
		domain.LanguageEnglish:            {"payment", "pay", "paid", "purchase", "purchased", "charged", "billing", "not received"},
		domain.LanguageJapanese:           {"課金", "支払い", "購入", "請求", "チャージ"},
		domain.LanguageKorean:             {"결제", "충전", "구매", "청구"},
		domain.LanguageSpanish:            {"pago", "compra", "cobro", "facturación"},
		domain.LanguageUnknown:            {"payment", "pay", "purchase", "充值", "退款"},
	},
	domain.CategoryRefund: {
		domain.LanguageSimplifiedChinese:  {"退款", "退钱", "返还", "退课金"},
		domain.LanguageTraditionalChinese: {"退款", "退錢", "返還", "退費"},
		domain.LanguageEnglish:            {"refund", "money back", "return", "chargeback"},
		domain.LanguageJapanese:           {"返金", "払い戻し", "キャンセル"},
		domain.LanguageKorean:             {"환불", "반품", "취소"},
		domain.LanguageSpanish:            {"reembolso", "devolución", "cancelar"},
		domain.LanguageUnknown:            {"refund", "return", "退款", "退钱"},
	},
	domain.CategoryBug: {
		domain.LanguageSimplifiedChinese:  {"闪退", "卡顿", "崩溃", "bug", "打不开", "黑屏", "白屏", "报错", "无法打开"},
		domain.LanguageTraditionalChinese: {"閃退", "卡頓", "崩潰", "打不開", "黑畫面"},
		domain.LanguageEnglish:            {"crash", "bug", "freeze", "lag", "black screen"},
		domain.LanguageJapanese:           {"クラッシュ", "バグ", "フリーズ", "重い", "落ちる"},
		domain.LanguageKorean:             {"충돌", "버그", "멈춤", "렉", "검은 화면"},
		domain.LanguageSpanish:            {"error", "fallo", "congelado", "pantalla negra", "falla"},
		domain.LanguageUnknown:            {"crash", "bug", "error", "闪退", "崩溃"},
	},
	domain.CategoryBanAppeal: {
		domain.LanguageSimplifiedChinese:  {"封号", "封禁", "解封", "申诉", "误封", "被封"},
		domain.LanguageTraditionalChinese: {"封號", "封禁", "解封", "申訴", "誤封", "被封"},
		domain.LanguageEnglish:            {"banned", "suspended", "ban appeal", "account blocked", "ban"},
		domain.LanguageJapanese:           {"BAN", "アカウント停止", "異議申し立て", "解除", "停止"},
		domain.LanguageKorean:             {"밴", "정지", "해제", "이의제기", "계정"},
		domain.LanguageSpanish:            {"suspendido", "bloqueado", "apelación", "cuenta", "baneado"},
		domain.LanguageUnknown:            {"banned", "ban", "封号", "封禁", "解封"},
	},
	domain.CategoryAbuse: {
		domain.LanguageSimplifiedChinese:  {"举报", "辱骂", "外挂", "作弊", "开挂"},
		domain.LanguageTraditionalChinese: {"舉報", "辱罵", "外掛", "作弊", "開掛"},
		domain.LanguageEnglish:            {"report", "cheating", "hack", "abuse", "toxic", "cheater"},
		domain.LanguageJapanese:           {"通報", "チート", "暴言", "ハック"},
		domain.LanguageKorean:             {"신고", "욕설", "핵", "치트"},
		domain.LanguageSpanish:            {"reportar", "trampa", "hack", "abuso", "tramposo"},
		domain.LanguageUnknown:            {"report", "hack", "cheat", "举报", "外挂"},
	},
	domain.CategoryGeneral: {
		domain.LanguageSimplifiedChinese:  {"问题", "咨询", "帮助", "客服"},
		domain.LanguageTraditionalChinese: {"問題", "諮詢", "幫助", "客服"},
		domain.LanguageEnglish:            {"question", "help", "support", "issue"},
		domain.LanguageJapanese:           {"質問", "ヘルプ", "サポート", "問題"},
		domain.LanguageKorean:             {"질문", "도움", "지원", "문제"},
		domain.LanguageSpanish:            {"pregunta", "ayuda", "soporte", "problema"},
		domain.LanguageUnknown:            {"question", "help", "support", "问题", "咨询"},
	},
}

// Keywords returns the keyword list for a (category, language) pair. Both
// enums are produced upstream, so an unknown value is a programming error and
// panics rather than returning a recoverable error.
func Keywords(category domain.Category, language domain.Language) []string {
	byLang, ok := categoryKeywords[category]
	if !ok {
		panic(fmt.Sprintf("i18n: invalid category %q", category))
	}
	keywords, ok := byLang[language]
	if !ok {
		panic(fmt.Sprintf("i18n: invalid language %q", language))
	}
	return keywords
}

// Score returns the keyword-match confidence in [0,1] for text against one
// category's language-specific list: matched keywords divided by list size,
// case-insensitive substring match.
func Score(text string, category domain.Category, language domain.Language) float64 {
	keywords := Keywords(category, language)
	lower := strings.ToLower(text)

	matches := 0
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matches++
		}
	}
	return float64(matches) / float64(len(keywords))
}

// BestCategory scores every category and returns the winner with its
// confidence. Ties and all-zero results default to general.
func BestCategory(text string, language domain.Language) (domain.Category, float64) {
	best := domain.CategoryGeneral
	bestScore := 0.0
	for _, category := range domain.Categories {
		if score := Score(text, category, language); score > bestScore {
			bestScore = score
			best = category
		}
	}
	return best, bestScore
}
