package treatment

// Entry is one lifestyle or medical-management intervention.
type Entry struct {
	Intervention  string `json:"intervention"`
	Priority      string `json:"priority"`
	EvidenceLevel string `json:"evidence_level"`
	Rationale     string `json:"rationale"`
}

// MonitoringEntry is one scheduled follow-up assessment.
type MonitoringEntry struct {
	Assessment string `json:"assessment"`
	Frequency  string `json:"frequency"`
	Priority   string `json:"priority"`
}

// Referral is a specialist referral. Timeframe is set only when the
// referral has been upgraded to urgent.
type Referral struct {
	Specialist string `json:"specialist"`
	Priority   string `json:"priority"`
	Rationale  string `json:"rationale"`
	Timeframe  string `json:"timeframe,omitempty"`
}

// TrialConsideration flags a class of studies worth discussing.
type TrialConsideration struct {
	Consideration string `json:"consideration"`
	Priority      string `json:"priority"`
	Rationale     string `json:"rationale"`
}

// RecommendationSet is the layered intervention plan. Higher tiers extend
// the lists of lower tiers; monitoring schedules are replaced wholesale at
// MODERATE and again at URGENT.
type RecommendationSet struct {
	LifestyleInterventions []Entry              `json:"lifestyle_interventions"`
	MedicalManagement      []Entry              `json:"medical_management"`
	MonitoringSchedule     []MonitoringEntry    `json:"monitoring_schedule"`
	Referrals              []Referral           `json:"referrals"`
	ClinicalTrials         []TrialConsideration `json:"clinical_trials"`
	ConfidenceScores       map[string]float64   `json:"confidence_scores"`
	Rationale              []string             `json:"rationale"`
	PriorityScore          float64              `json:"priority_score"`
}
