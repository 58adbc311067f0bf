package geometry

import (
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"
)

// DepthScale is the fixed-point factor OpenCV stores defect depths with.
const DepthScale = 256

// Defect is a place where the contour dips inside its convex hull.
// Start, End and Far are indices into the contour; Start and End are hull
// vertices and Far is the deepest contour point between them.
type Defect struct {
	Start int     `json:"start"`
	End   int     `json:"end"`
	Far   int     `json:"far"`
	Depth float64 `json:"depth"` // distance from Far to the hull edge, in pixels
}

// ConvexityDefects reports, for each hull edge, the contour point farthest
// from it. Edges with no point strictly inside the hull produce no defect.
// Defects are ordered by Start. A hull with fewer than three vertices
// yields nil.
func ConvexityDefects(contour []image.Point, hull Hull) ([]Defect, error) {
	if hull.Degenerate() || len(contour) <= 3 {
		return nil, nil
	}

	pv := gocv.NewPointVectorFromPoints(contour)
	defer pv.Close()

	indices := hull.indexMat()
	defer indices.Close()

	result := gocv.NewMat()
	defer result.Close()
	if err := gocv.ConvexityDefects(pv, indices, &result); err != nil {
		return nil, fmt.Errorf("convexity defects of %d points: %w", len(contour), err)
	}

	var defects []Defect
	for i := 0; i < result.Rows(); i++ {
		defects = append(defects, Defect{
			Start: int(result.GetIntAt(i, 0)),
			End:   int(result.GetIntAt(i, 1)),
			Far:   int(result.GetIntAt(i, 2)),
			Depth: float64(result.GetIntAt(i, 3)) / DepthScale,
		})
	}
	sort.Slice(defects, func(a, b int) bool {
		return defects[a].Start < defects[b].Start
	})
	return defects, nil
}
