// Package mappers converts between the wire types and the internal pipeline
// and store types.
package mappers

import (
	api "github.com/cognitriage/cognitriage/api/v1alpha1"
	"github.com/cognitriage/cognitriage/internal/evidence"
	"github.com/cognitriage/cognitriage/internal/imaging"
	"github.com/cognitriage/cognitriage/internal/pipeline"
	"github.com/cognitriage/cognitriage/internal/store/model"
)

// IntakeFromApi builds the pipeline intake from a validated request. A
// trailing frame dimension beyond x/y/z is dropped.
func IntakeFromApi(req api.IntakeRequest) (pipeline.Intake, error) {
	scans := make([]pipeline.Scan, 0, len(req.Scans))
	for _, scan := range req.Scans {
		s := pipeline.Scan{Filename: scan.Filename}
		if scan.Volume != nil {
			vol, err := volumeFromApi(scan.Volume)
			if err != nil {
				return pipeline.Intake{}, err
			}
			s.Volume = vol
		}
		scans = append(scans, s)
	}
	return pipeline.Intake{
		Scans:          scans,
		CognitiveTotal: req.Cognitive.Total,
		Age:            req.Meta.Age,
		Sex:            req.Meta.Sex,
	}, nil
}

func volumeFromApi(v *api.Volume) (*imaging.Volume, error) {
	var dims [3]int
	copy(dims[:], v.Dims)
	var spacing [3]float64
	copy(spacing[:], v.VoxelSpacingMM)
	return imaging.NewVolume(dims, spacing, v.Data)
}

// JobToStatusApi maps a job snapshot to the polling reply.
func JobToStatusApi(job *model.Job) api.StatusReply {
	stages := make(map[string]api.StageView, len(job.Stages))
	for name, rec := range job.Stages {
		view := api.StageView{Status: string(rec.Status), Output: rec.Output}
		if rec.Error != "" {
			errMsg := rec.Error
			view.Error = &errMsg
		}
		stages[name] = view
	}
	return api.StatusReply{
		JobID:    job.ID,
		Status:   string(job.Status),
		Progress: job.Progress,
		Stages:   stages,
	}
}

// JobToResultApi maps a job snapshot to the result reply. Result is only
// attached for completed jobs; a failed job carries its error instead.
func JobToResultApi(job *model.Job) api.ResultReply {
	reply := api.ResultReply{
		JobID:  job.ID,
		Status: string(job.Status),
	}
	if !job.IsTerminal() {
		return reply
	}
	if job.Status == model.JobStatusCompleted {
		reply.Result = job.Result
	} else if job.Error != "" {
		errMsg := job.Error
		reply.Error = &errMsg
	}
	return reply
}

// ProfileFromApi maps the standalone lookup profile.
func ProfileFromApi(p api.PatientProfile) evidence.Profile {
	return evidence.Profile{
		RiskTier:           p.RiskTier,
		CognitiveScore:     p.CognitiveScore,
		Age:                p.Age,
		HasImagingFindings: p.MinHippocampal > 0 || p.AtrophyScore > 0,
	}
}
