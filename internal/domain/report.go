package domain

// OpenCaseSummary is the digest view of one still-open case.
type OpenCaseSummary struct {
	CaseID   string     `json:"case_id"`
	Category Category   `json:"category"`
	Status   CaseStatus `json:"status"`
}

// DailyReport aggregates case activity inside one reporting window.
type DailyReport struct {
	TotalThreads  int               `json:"total_threads"`
	AutoResolved  int               `json:"auto_resolved"`
	Escalated     int               `json:"escalated"`
	TopCategories map[Category]int  `json:"top_categories"`
	Languages     map[Language]int  `json:"languages"`
	HighPriority  int               `json:"high_priority"`
	OpenCases     []OpenCaseSummary `json:"open_cases"`
}

// DigestLog is one persisted digest run.
type DigestLog struct {
	ID          string
	TimestampMs int64
	ReportMD    string
	StatsJSON   string
	DurationMs  int64
}
