package model

// PatternStats summarizes the global pattern store
type PatternStats struct {
	TotalGlobalPatterns int            `json:"totalGlobalPatterns"`
	IntentBreakdown     map[string]int `json:"intentBreakdown"`
}

// CountStats is a total plus a trailing-24h window, computed at call time
type CountStats struct {
	Total     int `json:"total"`
	Recent24h int `json:"recent24h"`
}

// SummaryStats backs the extension's overlay panel
type SummaryStats struct {
	Users    CountStats `json:"users"`
	Feedback CountStats `json:"feedback"`
}
