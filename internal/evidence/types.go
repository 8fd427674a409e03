// Package evidence resolves literature citations and candidate trials for a
// patient profile. Live lookups run against external registries through
// narrow client interfaces; any upstream failure resolves locally to static
// curated sets and is never surfaced to the pipeline as an error.
package evidence

// Search type markers. Downstream recommendation logic branches on whether
// results came from a live search.
const (
	SearchTypeLive           = "pubmed_live"
	SearchTypeFallbackStatic = "fallback_static"
	SearchTypeFallbackError  = "fallback_error"
)

// Citation is one ranked literature reference.
type Citation struct {
	Title    string `json:"title"`
	Source   string `json:"source"`
	Link     string `json:"link"`
	Strength string `json:"strength"`
	Abstract string `json:"abstract,omitempty"`
	Authors  string `json:"authors,omitempty"`
	PMID     string `json:"pmid,omitempty"`
}

// Result is the literature resolution outcome. SearchType distinguishes live
// results from fallback substitution.
type Result struct {
	Citations  []Citation `json:"citations"`
	SearchType string     `json:"search_type"`
	TotalFound int        `json:"total_found"`
	Error      string     `json:"error,omitempty"`
}

// Live reports whether the citations came from a live search.
func (r *Result) Live() bool {
	return r.SearchType == SearchTypeLive
}

// Paper is a literature record as returned by the literature client.
type Paper struct {
	PMID           string   `json:"pmid"`
	Title          string   `json:"title"`
	Authors        []string `json:"authors"`
	Journal        string   `json:"journal"`
	Year           string   `json:"year"`
	Abstract       string   `json:"abstract"`
	URL            string   `json:"url"`
	RelevanceScore int      `json:"relevance_score"`
}

// Study is a registry record as returned by the trials client.
type Study struct {
	NCTID   string
	Title   string
	Summary string
	Phase   string
}

// TrialCitation is a supporting reference attached to a matched trial.
type TrialCitation struct {
	Title   string `json:"title"`
	Authors string `json:"authors"`
	Journal string `json:"journal"`
	Year    string `json:"year"`
	PMID    string `json:"pmid"`
}

// Trial is one candidate trial matched to the patient profile.
type Trial struct {
	NCTID       string          `json:"nct_id"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	Status      string          `json:"status"`
	Locations   []string        `json:"locations"`
	URL         string          `json:"url"`
	MatchReason string          `json:"match_reason"`
	MatchScore  string          `json:"match_score"`
	Phase       string          `json:"phase"`
	Citations   []TrialCitation `json:"citations"`
}

// Profile is the structured query input: the slice of patient state the
// resolver needs to build registry queries and score matches.
type Profile struct {
	RiskTier       string
	CognitiveScore int
	Age            int
	// HasImagingFindings indicates imaging features were extracted, which
	// widens the literature query to atrophy terms.
	HasImagingFindings bool
}
