package domain

// Recommendation is one scored candidate returned by the engine. Score and
// SuggestedAction stay nullable in the API payload: within_limit ships
// without an action and clients treat a missing score as 0.
type Recommendation struct {
	Type            string   `json:"type"`
	Title           string   `json:"title"`
	Detail          string   `json:"detail"`
	Score           *float64 `json:"score"`
	SuggestedAction *string  `json:"suggested_action"`
}

// ScoreValue returns the score with nil treated as 0, the ordering the
// ranker uses.
func (r Recommendation) ScoreValue() float64 {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}

// ApplyRequest is the confirmation payload for applying a recommendation.
type ApplyRequest struct {
	RecType  string                 `json:"rec_type"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Confirm  bool                   `json:"confirm"`
}

// ApplyResult reports the outcome of an apply call. Success false covers
// both benign outcomes (not confirmed, unsupported type) and storage
// failures; the latter additionally surface a typed error.
type ApplyResult struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}
