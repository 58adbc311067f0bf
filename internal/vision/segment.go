package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// DefaultBlurSize is the side of the Gaussian kernel applied before
// thresholding. It has to be odd.
const DefaultBlurSize = 35

// Segment turns a BGR region into a binary mask where the hand is 255.
//
// Steps:
// 1. Convert to grayscale
// 2. Gaussian blur (blurSize x blurSize) to smooth skin texture and noise
// 3. Otsu threshold with inverted polarity, so the darker region is foreground
//
// The caller must close the returned Mat.
func Segment(roi gocv.Mat, blurSize int) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()

	if roi.Channels() > 1 {
		gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)
	} else {
		roi.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurSize, Y: blurSize}, 0, 0, gocv.BorderDefault)

	mask := gocv.NewMat()
	gocv.Threshold(blurred, &mask, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	return mask
}
