// Package geometry implements the contour geometry used to count fingers:
// convex hulls, convexity defects and the valley angle test.
//
// Hulls and defects come from OpenCV; contours and results are plain
// point slices so callers never hold Mats.
package geometry

import (
	"fmt"
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"
)

// Hull is the convex hull of a contour in the two forms the pipeline needs.
type Hull struct {
	// Points is the hull polygon in hull order, used for drawing.
	Points []image.Point
	// Indices are positions of the hull vertices in the contour, ascending.
	Indices []int
}

// Len returns the number of hull vertices.
func (h Hull) Len() int {
	return len(h.Indices)
}

// Degenerate reports whether the hull encloses no area.
func (h Hull) Degenerate() bool {
	return len(h.Indices) < 3
}

// ConvexHull computes the convex hull of a contour with OpenCV. Indices
// are sorted by contour position, which is the order ConvexityDefects
// requires.
func ConvexHull(contour []image.Point) (Hull, error) {
	if len(contour) == 0 {
		return Hull{}, nil
	}

	pv := gocv.NewPointVectorFromPoints(contour)
	defer pv.Close()

	hull := gocv.NewMat()
	defer hull.Close()
	if err := gocv.ConvexHull(pv, &hull, false, false); err != nil {
		return Hull{}, fmt.Errorf("convex hull of %d points: %w", len(contour), err)
	}

	h := Hull{
		Points:  make([]image.Point, 0, hull.Rows()),
		Indices: make([]int, 0, hull.Rows()),
	}
	for i := 0; i < hull.Rows(); i++ {
		idx := int(hull.GetIntAt(i, 0))
		h.Points = append(h.Points, contour[idx])
		h.Indices = append(h.Indices, idx)
	}
	sort.Ints(h.Indices)
	return h, nil
}

// indexMat packs hull indices into the single column CV_32S layout that
// gocv.ConvexityDefects reads. The caller must close it.
func (h Hull) indexMat() gocv.Mat {
	m := gocv.NewMatWithSize(len(h.Indices), 1, gocv.MatTypeCV32S)
	for i, idx := range h.Indices {
		m.SetIntAt(i, 0, int32(idx))
	}
	return m
}

// Area returns the absolute area enclosed by a closed polygon.
func Area(points []image.Point) float64 {
	if len(points) < 3 {
		return 0
	}

	sum := 0
	for i, p := range points {
		q := points[(i+1)%len(points)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}
