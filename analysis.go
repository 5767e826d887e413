package prospect

import "context"

// Analysis is the sales-relevant reading of a company's corpus.
type Analysis struct {
	CompanyName      string   `json:"company_name"`
	CompanySummary   string   `json:"company_summary"`
	Industry         string   `json:"industry"`
	ServicesOffered  []string `json:"services_offered"`
	PainPoints       []string `json:"pain_points"`
	AIOpportunities  []string `json:"ai_opportunities"`
	ValueProposition string   `json:"value_proposition"`
	RecommendedAngle string   `json:"recommended_angle"`
}

// Validate returns an error if the analysis is unusable for drafting.
func (a *Analysis) Validate() error {
	if a.CompanyName == "" {
		return Errorf(EINVALID, "analysis company name required")
	}
	return nil
}

// Analyzer identifies pain points and opportunities in a crawled corpus.
type Analyzer interface {
	// Analyze returns EINVALID for an empty corpus.
	Analyze(ctx context.Context, corpus *Corpus) (*Analysis, error)
}
