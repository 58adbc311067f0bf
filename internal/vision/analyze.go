package vision

import (
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingercount/internal/geometry"
)

// Options configures the segmentation step of Analyze.
type Options struct {
	BlurSize int
}

// DefaultOptions returns the fixed parameters the counter was tuned with.
func DefaultOptions() Options {
	return Options{BlurSize: DefaultBlurSize}
}

// Analysis is everything computed for one ROI. It owns two images that
// must be released with Close; nothing in it is shared with other frames.
type Analysis struct {
	Count   int
	Contour []image.Point // dominant contour, nil when the mask is empty
	Hull    geometry.Hull
	Defects []geometry.Defect
	Valleys []geometry.Defect // defects accepted as finger valleys

	// Mask is the binary silhouette.
	Mask gocv.Mat
	// Drawing is a black canvas of the ROI size with the contour, hull and
	// valley markers drawn on it.
	Drawing gocv.Mat
}

// Analyze segments roi and counts the raised fingers in it. On error no
// images are left open.
func Analyze(roi gocv.Mat, opts Options) (*Analysis, error) {
	return analyzeMask(Segment(roi, opts.BlurSize))
}

// AnalyzeMask runs the contour and finger analysis on a ready binary mask.
// The mask is copied, so the caller keeps ownership of it.
func AnalyzeMask(mask gocv.Mat) (*Analysis, error) {
	return analyzeMask(mask.Clone())
}

func analyzeMask(mask gocv.Mat) (*Analysis, error) {
	a := &Analysis{
		Mask:    mask,
		Drawing: gocv.NewMatWithSize(mask.Rows(), mask.Cols(), gocv.MatTypeCV8UC3),
	}
	a.Drawing.SetTo(gocv.NewScalar(0, 0, 0, 0))

	contour, ok := DominantContour(mask)
	if !ok {
		return a, nil
	}

	hull, err := geometry.ConvexHull(contour)
	if err != nil {
		a.Close()
		return nil, err
	}
	defects, err := geometry.ConvexityDefects(contour, hull)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Contour = contour
	a.Hull = hull
	a.Defects = defects
	a.Count, a.Valleys = geometry.CountFingers(contour, defects)

	drawPolygon(&a.Drawing, contour, ColorContour)
	drawPolygon(&a.Drawing, hull.Points, ColorHull)
	for _, v := range a.Valleys {
		gocv.Circle(&a.Drawing, contour[v.Far], 4, ColorValley, -1)
	}

	return a, nil
}

// Close releases the mask and the drawing.
func (a *Analysis) Close() {
	a.Mask.Close()
	a.Drawing.Close()
}

// Reading summarises an analysis for observers outside the frame loop.
type Reading struct {
	Seq          int64         `json:"seq"`
	Timestamp    time.Time     `json:"timestamp"`
	Count        int           `json:"count"`
	ContourArea  float64       `json:"contour_area"`
	HullVertices int           `json:"hull_vertices"`
	Defects      int           `json:"defects"`
	Valleys      []image.Point `json:"valleys"`
}

// Reading copies the numeric results of the analysis. The returned value
// holds no reference to the analysis or its images.
func (a *Analysis) Reading(seq int64, at time.Time) Reading {
	r := Reading{
		Seq:          seq,
		Timestamp:    at,
		Count:        a.Count,
		ContourArea:  geometry.Area(a.Contour),
		HullVertices: a.Hull.Len(),
		Defects:      len(a.Defects),
		Valleys:      make([]image.Point, 0, len(a.Valleys)),
	}
	for _, v := range a.Valleys {
		r.Valleys = append(r.Valleys, a.Contour[v.Far])
	}
	return r
}
