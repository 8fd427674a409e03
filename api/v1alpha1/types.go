package v1alpha1

// Volume is a decoded scalar scan volume. Binary format decoding happens
// upstream; the service only ever sees numeric arrays with known spacing.
type Volume struct {
	// Dims holds the grid dimensions, x/y/z (a trailing frame dimension is
	// ignored by the extractor).
	Dims []int `json:"dims" validate:"required,min=3,max=4"`
	// VoxelSpacingMM is the physical size of one voxel edge, in millimetres.
	VoxelSpacingMM []float64 `json:"voxel_spacing_mm" validate:"required,len=3"`
	// Data is the intensity grid in x-fastest order; len must equal the
	// product of Dims.
	Data []float64 `json:"data" validate:"required,volume_shape"`
}

// ScanPayload is one scan in the intake bundle: either an inline decoded
// volume or a reference naming an already-uploaded file.
type ScanPayload struct {
	Filename string  `json:"filename" validate:"required,scan_filename"`
	Volume   *Volume `json:"volume,omitempty"`
}

// CognitiveAssessment carries the cognitive-test result for the intake.
type CognitiveAssessment struct {
	Total int `json:"total" validate:"cognitive_total"`
}

// Demographics is the subject metadata attached to an intake bundle.
type Demographics struct {
	Age int    `json:"age" validate:"gte=0,lte=120"`
	Sex string `json:"sex" validate:"required,oneof=M F U"`
}

// IntakeRequest is the submission payload for a new triage job.
type IntakeRequest struct {
	Scans     []ScanPayload       `json:"scans" validate:"required,min=1,dive"`
	Cognitive CognitiveAssessment `json:"cognitive"`
	Meta      Demographics        `json:"meta"`
}

// SubmitReply acknowledges an accepted submission.
type SubmitReply struct {
	JobID string `json:"job_id"`
}

// StageView is the externally visible state of one pipeline stage.
type StageView struct {
	Status string  `json:"status"`
	Output any     `json:"output,omitempty"`
	Error  *string `json:"error,omitempty"`
}

// StatusReply reports job progress for polling clients.
type StatusReply struct {
	JobID    string               `json:"job_id"`
	Status   string               `json:"status"`
	Progress int                  `json:"progress"`
	Stages   map[string]StageView `json:"stages"`
}

// ResultReply carries the final triage report once the job is terminal.
// Result is populated only when Status is "completed".
type ResultReply struct {
	JobID  string  `json:"job_id"`
	Status string  `json:"status"`
	Result any     `json:"result,omitempty"`
	Error  *string `json:"error,omitempty"`
}

// PatientProfile drives the standalone literature/trials lookups.
type PatientProfile struct {
	RiskTier       string  `json:"risk_tier"`
	CognitiveScore int     `json:"cognitive_score"`
	Age            int     `json:"age"`
	MinHippocampal float64 `json:"min_hippocampal_ml,omitempty"`
	AtrophyScore   int     `json:"atrophy_score,omitempty"`
}

// LiteratureReply is the standalone literature search response.
type LiteratureReply struct {
	Papers    any    `json:"papers"`
	QueryUsed string `json:"query_used"`
}

// TrialsReply is the standalone clinical trials search response.
type TrialsReply struct {
	Trials any `json:"trials"`
}

// Error is the generic error body returned by all endpoints.
type Error struct {
	Message   string  `json:"message"`
	RequestID *string `json:"request_id,omitempty"`
}
