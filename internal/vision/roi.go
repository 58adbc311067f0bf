// Package vision runs the per-frame hand analysis on OpenCV images: ROI
// extraction, silhouette segmentation, contour selection and the overlays
// drawn for the user.
package vision

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// DefaultROI is the fixed region of the mirrored frame that is analysed.
var DefaultROI = image.Rect(100, 100, 400, 400)

// ErrROIOutOfBounds is returned when the ROI does not fit inside a frame.
var ErrROIOutOfBounds = errors.New("roi exceeds frame bounds")

// Overlay colours
var (
	ColorROI     = color.RGBA{G: 255, A: 255}
	ColorContour = color.RGBA{G: 255, A: 255}
	ColorHull    = color.RGBA{R: 255, A: 255}
	ColorValley  = color.RGBA{R: 255, A: 255}
	ColorText    = color.RGBA{G: 255, A: 255}
)

// Views holds the two images derived from a camera frame.
type Views struct {
	// Display is the mirrored frame with the ROI outlined, shown to the user.
	Display gocv.Mat
	// ROI is a copy of the region to analyse, taken before any overlay.
	ROI gocv.Mat
}

// Close releases both images.
func (v *Views) Close() {
	v.Display.Close()
	v.ROI.Close()
}

// CheckBounds returns an error wrapping ErrROIOutOfBounds unless roi is a
// non-empty rectangle inside a width x height frame.
func CheckBounds(width, height int, roi image.Rectangle) error {
	if roi.Empty() || !roi.In(image.Rect(0, 0, width, height)) {
		return fmt.Errorf("roi %v exceeds frame %dx%d: %w", roi, width, height, ErrROIOutOfBounds)
	}
	return nil
}

// ExtractROI mirrors frame horizontally, copies roi out of the mirrored
// image and outlines roi on it. The caller must close the returned Views.
func ExtractROI(frame gocv.Mat, roi image.Rectangle) (*Views, error) {
	if frame.Empty() {
		return nil, fmt.Errorf("empty frame: %w", ErrROIOutOfBounds)
	}
	if err := CheckBounds(frame.Cols(), frame.Rows(), roi); err != nil {
		return nil, err
	}

	display := gocv.NewMat()
	if err := gocv.Flip(frame, &display, 1); err != nil {
		display.Close()
		return nil, fmt.Errorf("mirror frame: %w", err)
	}

	region := display.Region(roi)
	crop := region.Clone()
	region.Close()

	gocv.Rectangle(&display, roi, ColorROI, 2)

	return &Views{Display: display, ROI: crop}, nil
}
