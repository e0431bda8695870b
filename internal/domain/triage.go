package domain

// Category enumerates the closed set of support request categories.
type Category string

const (
	CategoryPayment   Category = "payment"
	CategoryRefund    Category = "refund"
	CategoryBug       Category = "bug"
	CategoryBanAppeal Category = "ban_appeal"
	CategoryAbuse     Category = "abuse"
	CategoryGeneral   Category = "general"
)

// Categories lists every valid category in classification order.
var Categories = []Category{
	CategoryPayment,
	CategoryRefund,
	CategoryBug,
	CategoryBanAppeal,
	CategoryAbuse,
	CategoryGeneral,
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Severity enumerates triage urgency.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a member of the closed severity set.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Language enumerates detectable user languages. LanguageUnknown is a valid
// routing outcome, not an error.
type Language string

const (
	LanguageSimplifiedChinese  Language = "zh-CN"
	LanguageTraditionalChinese Language = "zh-TW"
	LanguageEnglish            Language = "en"
	LanguageJapanese           Language = "ja"
	LanguageKorean             Language = "ko"
	LanguageSpanish            Language = "es"
	LanguageUnknown            Language = "unknown"
)

// Languages lists every valid language tag including the unknown fallback.
var Languages = []Language{
	LanguageSimplifiedChinese,
	LanguageTraditionalChinese,
	LanguageEnglish,
	LanguageJapanese,
	LanguageKorean,
	LanguageSpanish,
	LanguageUnknown,
}

// Valid reports whether l is a member of the closed language set.
func (l Language) Valid() bool {
	for _, known := range Languages {
		if l == known {
			return true
		}
	}
	return false
}

// ClassificationSource records which classifier produced a decision.
type ClassificationSource string

const (
	SourceRemote  ClassificationSource = "remote"
	SourceKeyword ClassificationSource = "keyword"
)

// Classification is the raw output of a classifier before policy is applied.
type Classification struct {
	Category   Category
	Confidence float64
	Reasoning  string
	Severity   Severity
	Source     ClassificationSource
}

// TriageDecision is the policy outcome for one inbound message. It is folded
// into the case record and the TRIAGED audit action rather than persisted on
// its own.
type TriageDecision struct {
	Category         Category             `json:"category"`
	Severity         Severity             `json:"severity"`
	AutoAllowed      bool                 `json:"auto_allowed"`
	Language         Language             `json:"detected_language"`
	Confidence       float64              `json:"confidence"`
	Reasoning        string               `json:"reasoning"`
	Source           ClassificationSource `json:"source"`
	EscalationReason string               `json:"escalation_reason,omitempty"`
}
