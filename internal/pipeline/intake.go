package pipeline

import (
	"fmt"
	"strings"

	"github.com/cognitriage/cognitriage/internal/imaging"
	"github.com/cognitriage/cognitriage/internal/risk"
)

// Scan is one submitted imaging file. Volume may be nil for reference-only
// submissions; feature extraction then derives deterministic simulated
// features from the filename and age.
type Scan struct {
	Filename string
	Volume   *imaging.Volume
}

// Intake is the validated submission consumed by the orchestrator.
type Intake struct {
	Scans          []Scan
	CognitiveTotal int
	Age            int
	Sex            string
}

// InvalidIntakeError reports a submission rejected before any job record is
// created.
type InvalidIntakeError struct {
	Reason string
}

func (e *InvalidIntakeError) Error() string {
	return fmt.Sprintf("invalid intake: %s", e.Reason)
}

// Validate checks the intake synchronously, before job creation. A rejected
// submission never produces a job ID.
func (in *Intake) Validate() error {
	if len(in.Scans) == 0 {
		return &InvalidIntakeError{Reason: "at least one scan is required"}
	}
	for i, scan := range in.Scans {
		if strings.TrimSpace(scan.Filename) == "" {
			return &InvalidIntakeError{Reason: fmt.Sprintf("scan %d has no filename", i)}
		}
	}
	if in.CognitiveTotal < 0 || in.CognitiveTotal > risk.CognitiveTotalMax {
		return &InvalidIntakeError{
			Reason: fmt.Sprintf("cognitive total %d outside 0-%d", in.CognitiveTotal, risk.CognitiveTotalMax),
		}
	}
	if in.Age < 0 || in.Age > 130 {
		return &InvalidIntakeError{Reason: fmt.Sprintf("implausible age %d", in.Age)}
	}
	switch in.Sex {
	case "M", "F", "U", "":
	default:
		return &InvalidIntakeError{Reason: fmt.Sprintf("unknown sex %q", in.Sex)}
	}
	return nil
}

// primaryVolume returns the first scan carrying a decoded volume.
func (in *Intake) primaryVolume() *imaging.Volume {
	for _, scan := range in.Scans {
		if scan.Volume != nil {
			return scan.Volume
		}
	}
	return nil
}

// filenames lists the submitted scan names in order.
func (in *Intake) filenames() []string {
	names := make([]string, len(in.Scans))
	for i, scan := range in.Scans {
		names[i] = scan.Filename
	}
	return names
}

// scanFormat classifies a filename by extension.
func scanFormat(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".nii") || strings.HasSuffix(lower, ".nii.gz"):
		return "nifti"
	case strings.HasSuffix(lower, ".dcm") || strings.HasSuffix(lower, ".dicom"):
		return "dicom"
	default:
		return "unknown"
	}
}
