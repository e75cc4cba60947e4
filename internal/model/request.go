package model

// PredictRequest is the extension's ask: a form question plus its context.
// UserProfile, when present, is used instead of a store lookup.
type PredictRequest struct {
	Question    string                 `json:"question"`
	FieldType   string                 `json:"fieldType,omitempty"`
	Options     []string               `json:"options,omitempty"`
	UserEmail   string                 `json:"userEmail,omitempty"`
	UserProfile map[string]interface{} `json:"userProfile,omitempty"`
}

// PredictResponse is the answer returned for a form question, whether it came
// from pattern memory or the hosted model. Intent is never empty.
type PredictResponse struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Intent     string  `json:"intent"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// PatternUploadRequest carries a pre-curated pattern for the direct write path
type PatternUploadRequest struct {
	Pattern Pattern `json:"pattern"`
}
