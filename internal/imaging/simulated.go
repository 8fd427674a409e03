package imaging

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
)

// SimulatedFeatures produces deterministic plausible features for intake
// bundles that reference a scan by name without an inline decoded volume.
// The filename hash seeds the jitter, so identical bundles always yield
// identical features.
func SimulatedFeatures(filenames []string, age int) *Features {
	seed := filenameSeed(filenames)

	baseLeft := 3.8
	baseRight := 3.9
	ageEffect := math.Max(0, float64(age-60)*0.015)

	left := math.Max(2.0, baseLeft-ageEffect) + float64(seed%20)/200.0
	right := math.Max(2.0, baseRight-ageEffect) + float64((seed/7)%20)/200.0
	left = round2(left)
	right = round2(right)

	atrophy := 1
	if age >= 65 {
		atrophy = 2
	}
	if left < 2.6 || right < 2.6 {
		atrophy = max(atrophy, 3)
	}
	if left < 2.3 || right < 2.3 {
		atrophy = max(atrophy, 4)
	}

	leftPct := clampPct(int(100 - (4.5-left)*40))
	rightPct := clampPct(int(100 - (4.5-right)*40))

	return &Features{
		HippocampalVolumes: HippocampalVolumes{
			LeftML:      left,
			RightML:     right,
			AsymmetryML: round2(math.Abs(left - right)),
			TotalML:     round2(left + right),
		},
		AtrophyScore: atrophy,
		BrainVolumes: BrainVolumes{
			TotalBrainML:  round1(1200 + float64(seed%100)),
			GrayMatterML:  round1(600 + float64(seed%50)),
			WhiteMatterML: round1(500 + float64(seed%30)),
		},
		Percentiles: Percentiles{
			LeftPct:  leftPct,
			RightPct: rightPct,
			MeanPct:  (leftPct + rightPct) / 2,
		},
		QualityMetrics: QualityMetrics{QualityScore: "unknown"},
	}
}

func filenameSeed(filenames []string) int {
	h := sha256.New()
	for _, name := range filenames {
		h.Write([]byte(strings.ToLower(name)))
	}
	sum := h.Sum(nil)
	return int(binary.BigEndian.Uint32(sum[:4]) % 1000)
}
