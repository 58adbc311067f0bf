package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// DominantContour traces every boundary in mask and returns the one that
// encloses the largest area. Among equal areas the first traced wins.
// It reports false when the mask has no foreground.
func DominantContour(mask gocv.Mat) ([]image.Point, bool) {
	contours := gocv.FindContours(mask, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 {
		return nil, false
	}

	best := 0
	bestArea := gocv.ContourArea(contours.At(0))
	for i := 1; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > bestArea {
			best = i
			bestArea = area
		}
	}

	return contours.At(best).ToPoints(), true
}
