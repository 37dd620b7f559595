package models

// AnalysisResult is the AI annotation of an entry. Only Mood and Summary are persisted.
type AnalysisResult struct {
	Mood    string `json:"mood"`
	Summary string `json:"summary"`
	Advice  string `json:"advice"`
}

// FallbackAnalysis is returned whenever the analysis provider fails.
var FallbackAnalysis = AnalysisResult{
	Mood:    "Reflective",
	Summary: "An entry about your personal growth and thoughts.",
	Advice:  "Keep expressing yourself; it's the path to clarity.",
}
