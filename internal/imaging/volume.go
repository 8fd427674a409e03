package imaging

import (
	"fmt"
	"math"
	"sort"
)

// Volume is a decoded 3-D scalar grid with known voxel spacing. A trailing
// frame dimension from 4-D acquisitions is dropped by the caller; the
// extractor only reads the first frame.
type Volume struct {
	// Dims is the grid size in x, y, z.
	Dims [3]int
	// SpacingMM is the voxel edge length per axis, in millimetres.
	SpacingMM [3]float64
	// Data holds intensities in x-fastest order; len(Data) == Dims[0]*Dims[1]*Dims[2].
	Data []float64
}

// NewVolume validates the grid shape against the data length.
func NewVolume(dims [3]int, spacingMM [3]float64, data []float64) (*Volume, error) {
	n := dims[0] * dims[1] * dims[2]
	if n <= 0 {
		return nil, fmt.Errorf("invalid volume dimensions %v", dims)
	}
	if len(data) != n {
		return nil, fmt.Errorf("volume data length %d does not match dimensions %v", len(data), dims)
	}
	for i, s := range spacingMM {
		if s <= 0 {
			return nil, fmt.Errorf("voxel spacing axis %d must be positive, got %v", i, s)
		}
	}
	return &Volume{Dims: dims, SpacingMM: spacingMM, Data: data}, nil
}

// At returns the intensity at grid position (x, y, z).
func (v *Volume) At(x, y, z int) float64 {
	return v.Data[x+v.Dims[0]*(y+v.Dims[1]*z)]
}

// VoxelVolumeML is the physical volume of a single voxel, in millilitres.
func (v *Volume) VoxelVolumeML() float64 {
	return v.SpacingMM[0] * v.SpacingMM[1] * v.SpacingMM[2] / 1000.0
}

// TotalVolumeML is the physical volume of the whole grid, in millilitres.
func (v *Volume) TotalVolumeML() float64 {
	return v.VoxelVolumeML() * float64(len(v.Data))
}

// region is a half-open box of grid coordinates, clamped to the grid.
type region struct {
	x0, x1, y0, y1, z0, z1 int
}

func (v *Volume) clampRegion(x0, x1, y0, y1, z0, z1 int) region {
	clamp := func(n, lo, hi int) int {
		if n < lo {
			return lo
		}
		if n > hi {
			return hi
		}
		return n
	}
	return region{
		x0: clamp(x0, 0, v.Dims[0]), x1: clamp(x1, 0, v.Dims[0]),
		y0: clamp(y0, 0, v.Dims[1]), y1: clamp(y1, 0, v.Dims[1]),
		z0: clamp(z0, 0, v.Dims[2]), z1: clamp(z1, 0, v.Dims[2]),
	}
}

func (v *Volume) regionValues(r region) []float64 {
	vals := make([]float64, 0, (r.x1-r.x0)*(r.y1-r.y0)*(r.z1-r.z0))
	for z := r.z0; z < r.z1; z++ {
		for y := r.y0; y < r.y1; y++ {
			for x := r.x0; x < r.x1; x++ {
				vals = append(vals, v.At(x, y, z))
			}
		}
	}
	return vals
}

// percentile computes the p-th percentile (0-100) with linear interpolation
// between closest ranks, matching the numeric convention of the scientific
// stacks this estimator was calibrated against.
func percentile(vals []float64, p float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	frac := rank - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)))
}
