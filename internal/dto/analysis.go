package dto

// RunAnalysisRequest selects which classification driver to run and how.
// FULL re-evaluates every candidate transaction; PENDING touches only the
// still-undetermined ones.
type RunAnalysisRequest struct {
	Domain string `json:"domain" binding:"required,oneof=CATEGORY ENTITY_TYPE SCOPE"`
	Mode   string `json:"mode" binding:"omitempty,oneof=FULL PENDING"`
}

// RunSummaryResponse reports the outcome of one classification run.
type RunSummaryResponse struct {
	Matched      int `json:"matched"`
	NewUnmatched int `json:"newUnmatched"`
	Cleared      int `json:"cleared"`
}
