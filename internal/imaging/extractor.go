package imaging

import (
	"fmt"
	"math"
)

// Features is the full output of volumetric feature extraction.
type Features struct {
	FileInfo           FileInfo           `json:"file_info"`
	HippocampalVolumes HippocampalVolumes `json:"hippocampal_volumes"`
	BrainVolumes       BrainVolumes       `json:"brain_volumes"`
	AtrophyScore       int                `json:"atrophy_score"`
	Percentiles        Percentiles        `json:"percentiles"`
	QualityMetrics     QualityMetrics     `json:"quality_metrics"`
}

type FileInfo struct {
	Dimensions  []int     `json:"dimensions"`
	VoxelSizeMM []float64 `json:"voxel_size"`
	VolumeML    float64   `json:"volume_ml"`
}

// HippocampalVolumes in millilitres. Asymmetry and Total are derived:
// asymmetry = |left - right|, total = left + right.
type HippocampalVolumes struct {
	LeftML      float64 `json:"left_ml"`
	RightML     float64 `json:"right_ml"`
	AsymmetryML float64 `json:"asymmetry_ml"`
	TotalML     float64 `json:"total_ml"`
}

// MinML returns the smaller of the two hemisphere volumes.
func (h HippocampalVolumes) MinML() float64 {
	return math.Min(h.LeftML, h.RightML)
}

type BrainVolumes struct {
	TotalBrainML  float64 `json:"total_brain_ml"`
	GrayMatterML  float64 `json:"gray_matter_ml"`
	WhiteMatterML float64 `json:"white_matter_ml"`
}

// Percentiles are ranks against an age-adjusted normative curve, clamped to
// 1..99.
type Percentiles struct {
	LeftPct  int `json:"left_pct"`
	RightPct int `json:"right_pct"`
	MeanPct  int `json:"mean_pct"`
}

type QualityMetrics struct {
	SNR            float64    `json:"snr"`
	MeanIntensity  float64    `json:"mean_intensity"`
	IntensityRange [2]float64 `json:"intensity_range"`
	QualityScore   string     `json:"quality_score"`
}

const (
	// Hemisphere volume estimates are clamped into a physiologically
	// plausible band before reporting.
	minPlausibleML = 2.0
	maxPlausibleML = 5.0
	floorML        = 1.5

	leftBaselineML  = 3.5
	rightBaselineML = 3.6

	// Normative curve: expected hemisphere volume at age 60, declining
	// 0.02 ml per year after that.
	expectedLeftAt60ML  = 4.2
	expectedRightAt60ML = 4.3
	declinePerYearML    = 0.02

	backgroundBorder = 5
)

// Extractor derives volumetric features from a decoded scan. It is a pure
// function of its inputs: identical volumes and metadata produce identical
// features.
//
// The hemisphere split is a heuristic index-midpoint partition with
// per-region median thresholding, not an anatomical segmentation.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract computes all features for the given volume and subject age.
func (e *Extractor) Extract(vol *Volume, age int) (*Features, error) {
	if err := e.validate(vol); err != nil {
		return nil, err
	}

	hippo := e.hippocampalVolumes(vol)
	feats := &Features{
		FileInfo: FileInfo{
			Dimensions:  []int{vol.Dims[0], vol.Dims[1], vol.Dims[2]},
			VoxelSizeMM: []float64{vol.SpacingMM[0], vol.SpacingMM[1], vol.SpacingMM[2]},
			VolumeML:    round1(vol.TotalVolumeML()),
		},
		HippocampalVolumes: hippo,
		BrainVolumes:       e.brainVolumes(vol),
		AtrophyScore:       AtrophyScore(hippo.MinML()),
		Percentiles:        e.percentiles(hippo, age),
		QualityMetrics:     e.assessQuality(vol),
	}
	return feats, nil
}

func (e *Extractor) validate(vol *Volume) error {
	for _, dim := range vol.Dims {
		if dim < 10 || dim > 1000 {
			return fmt.Errorf("unusual brain dimensions detected: %v", vol.Dims)
		}
	}
	maxIntensity := math.Inf(-1)
	for _, v := range vol.Data {
		if v > maxIntensity {
			maxIntensity = v
		}
	}
	if maxIntensity <= 0 {
		return fmt.Errorf("invalid intensity values in volume")
	}
	return nil
}

// hippocampalVolumes estimates per-hemisphere volumes by splitting the grid
// at the x midpoint, windowing around the y/z centre, and counting voxels
// above each sub-region's own median intensity.
func (e *Extractor) hippocampalVolumes(vol *Volume) HippocampalVolumes {
	yc := vol.Dims[1] / 2
	zc := vol.Dims[2] / 2

	left := vol.clampRegion(0, vol.Dims[0]/2, yc-20, yc+10, zc-15, zc+15)
	right := vol.clampRegion(vol.Dims[0]/2, vol.Dims[0], yc-20, yc+10, zc-15, zc+15)

	leftML := e.regionEstimateML(vol, left, leftBaselineML)
	rightML := e.regionEstimateML(vol, right, rightBaselineML)

	leftML = round2(math.Max(floorML, leftML))
	rightML = round2(math.Max(floorML, rightML))

	return HippocampalVolumes{
		LeftML:      leftML,
		RightML:     rightML,
		AsymmetryML: round2(math.Abs(leftML - rightML)),
		TotalML:     round2(leftML + rightML),
	}
}

func (e *Extractor) regionEstimateML(vol *Volume, r region, baselineML float64) float64 {
	vals := vol.regionValues(r)
	median := percentile(vals, 50)
	count := 0
	for _, v := range vals {
		if v > median {
			count++
		}
	}
	estimate := float64(count)*vol.VoxelVolumeML() + baselineML
	return math.Max(minPlausibleML, math.Min(maxPlausibleML, estimate))
}

// AtrophyScore maps the minimum hemisphere volume to the 0-4 ordinal scale.
func AtrophyScore(minVolumeML float64) int {
	switch {
	case minVolumeML > 3.5:
		return 0
	case minVolumeML > 3.0:
		return 1
	case minVolumeML > 2.5:
		return 2
	case minVolumeML > 2.0:
		return 3
	default:
		return 4
	}
}

func (e *Extractor) brainVolumes(vol *Volume) BrainVolumes {
	voxML := vol.VoxelVolumeML()

	positive := make([]float64, 0, len(vol.Data))
	for _, v := range vol.Data {
		if v > 0 {
			positive = append(positive, v)
		}
	}
	maskThreshold := percentile(positive, 10)

	brain := make([]float64, 0, len(positive))
	for _, v := range vol.Data {
		if v > maskThreshold {
			brain = append(brain, v)
		}
	}
	highIntensity := percentile(brain, 80)
	lowIntensity := percentile(brain, 40)

	var white, gray int
	for _, v := range vol.Data {
		switch {
		case v > highIntensity:
			white++
		case v > lowIntensity:
			gray++
		}
	}

	return BrainVolumes{
		TotalBrainML:  round1(float64(len(brain)) * voxML),
		GrayMatterML:  round1(float64(gray) * voxML),
		WhiteMatterML: round1(float64(white) * voxML),
	}
}

func (e *Extractor) percentiles(hippo HippocampalVolumes, age int) Percentiles {
	expectedLeft := expectedLeftAt60ML - float64(age-60)*declinePerYearML
	expectedRight := expectedRightAt60ML - float64(age-60)*declinePerYearML

	left := clampPct(int(100 * hippo.LeftML / expectedLeft))
	right := clampPct(int(100 * hippo.RightML / expectedRight))
	return Percentiles{
		LeftPct:  left,
		RightPct: right,
		MeanPct:  (left + right) / 2,
	}
}

func clampPct(p int) int {
	if p < 1 {
		return 1
	}
	if p > 99 {
		return 99
	}
	return p
}

// assessQuality computes signal (mean brain intensity) over noise (standard
// deviation of the background border) and maps the ratio to a label.
func (e *Extractor) assessQuality(vol *Volume) QualityMetrics {
	var brain []float64
	minI, maxI := math.Inf(1), math.Inf(-1)
	for _, v := range vol.Data {
		if v > 0 {
			brain = append(brain, v)
		}
		if v < minI {
			minI = v
		}
		if v > maxI {
			maxI = v
		}
	}
	if len(brain) == 0 {
		return QualityMetrics{QualityScore: "poor"}
	}

	signal := mean(brain)

	background := e.borderBackground(vol)
	var noise float64
	if len(background) > 0 {
		noise = stddev(background)
	} else {
		// Fully filled grid: fall back to the dimmest brain voxels.
		threshold := percentile(brain, 10)
		var dim []float64
		for _, v := range brain {
			if v < threshold {
				dim = append(dim, v)
			}
		}
		noise = stddev(dim)
	}

	var snr float64
	if noise > 0 {
		snr = signal / noise
	}

	var label string
	switch {
	case snr > 50:
		label = "excellent"
	case snr > 30:
		label = "good"
	case snr > 15:
		label = "fair"
	default:
		label = "poor"
	}

	return QualityMetrics{
		SNR:            round1(snr),
		MeanIntensity:  round1(signal),
		IntensityRange: [2]float64{round1(minI), round1(maxI)},
		QualityScore:   label,
	}
}

// borderBackground collects zero-or-negative voxels within the outer border
// of the grid.
func (e *Extractor) borderBackground(vol *Volume) []float64 {
	var bg []float64
	nx, ny, nz := vol.Dims[0], vol.Dims[1], vol.Dims[2]
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				onBorder := x < backgroundBorder || x >= nx-backgroundBorder ||
					y < backgroundBorder || y >= ny-backgroundBorder ||
					z < backgroundBorder || z >= nz-backgroundBorder
				if !onBorder {
					continue
				}
				if v := vol.At(x, y, z); v <= 0 {
					bg = append(bg, v)
				}
			}
		}
	}
	return bg
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
