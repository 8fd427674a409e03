package evidence

// fallbackLimit caps how many curated entries substitute a failed search.
const fallbackLimit = 6

// staticCitations is the curated evidence set substituted when a live
// literature search is unavailable or empty.
var staticCitations = []Citation{
	{
		Title:    "NIA-AA Research Framework: Toward a biological definition of Alzheimer's disease",
		Source:   "Alzheimers & Dementia (2018)",
		Link:     "https://doi.org/10.1016/j.jalz.2018.02.018",
		Strength: "high",
	},
	{
		Title:    "Medial temporal atrophy on MRI in normal aging and Alzheimer's disease",
		Source:   "Neurology (1992)",
		Link:     "https://doi.org/10.1212/WNL.42.1.39",
		Strength: "high",
	},
	{
		Title:    "Hippocampal atrophy in mild cognitive impairment",
		Source:   "Lancet Neurology (2004)",
		Link:     "https://doi.org/10.1016/S1474-4422(04)00752-3",
		Strength: "moderate",
	},
	{
		Title:    "AAN practice guideline update: Mild cognitive impairment",
		Source:   "Neurology (2018)",
		Link:     "https://doi.org/10.1212/WNL.0000000000004821",
		Strength: "high",
	},
	{
		Title:    "Hippocampal volume normative data and percentiles",
		Source:   "NeuroImage (2016)",
		Link:     "https://doi.org/10.1016/j.neuroimage.2016.09.051",
		Strength: "moderate",
	},
}

// staticTrials is the curated trial set substituted when the registry is
// unreachable.
var staticTrials = []Trial{
	{
		NCTID:       "NCT04468659",
		Title:       "AHEAD 3-45 Study: A Study to Evaluate Efficacy and Safety of Treatment in Preclinical Alzheimer's Disease",
		Summary:     "Anti-amyloid intervention in participants with elevated brain amyloid who are clinically normal.",
		Status:      "Recruiting",
		Locations:   []string{"Multiple locations available"},
		URL:         "https://clinicaltrials.gov/study/NCT04468659",
		MatchReason: "Curated fallback entry for cognitive-decline risk profiles.",
		MatchScore:  "medium",
		Phase:       "PHASE3",
	},
	{
		NCTID:       "NCT05026866",
		Title:       "Cognitive Training and Lifestyle Intervention for Mild Cognitive Impairment",
		Summary:     "Multimodal lifestyle and cognitive-training program for adults with early cognitive concerns.",
		Status:      "Recruiting",
		Locations:   []string{"Multiple locations available"},
		URL:         "https://clinicaltrials.gov/study/NCT05026866",
		MatchReason: "Curated fallback entry for cognitive-decline risk profiles.",
		MatchScore:  "medium",
		Phase:       "PHASE2",
	},
}

// FallbackCitations returns the curated evidence set, capped at the
// fallback limit.
func FallbackCitations() []Citation {
	n := len(staticCitations)
	if n > fallbackLimit {
		n = fallbackLimit
	}
	out := make([]Citation, n)
	copy(out, staticCitations[:n])
	return out
}

// FallbackTrials returns a copy of the curated trial set.
func FallbackTrials() []Trial {
	out := make([]Trial, len(staticTrials))
	copy(out, staticTrials)
	return out
}

// StaticSetSize is the total number of curated citations, reported as
// total_found on fallback results.
func StaticSetSize() int {
	return len(staticCitations)
}
