package fixtures

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// Fan hand geometry, in pixels relative to the palm centre.
const (
	PalmRadius  = 55
	FingerReach = 130
	FingerWidth = 28
)

// FanFingers are the finger directions of the fan hand in degrees, with
// -90 pointing straight up. Neighbouring fingers are 30 degrees apart.
var FanFingers = []float64{-150, -120, -90, -60, -30}

var (
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black = color.RGBA{A: 255}
)

// FillOutline fills a closed polygon onto img.
func FillOutline(img *gocv.Mat, outline []image.Point, c color.RGBA) {
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{outline})
	defer pv.Close()
	gocv.FillPoly(img, pv, c)
}

// DrawFanHand draws an open hand: a round palm with five straight fingers
// spread like a fan, which leaves four narrow valleys between them.
func DrawFanHand(img *gocv.Mat, center image.Point, c color.RGBA) {
	gocv.Circle(img, center, PalmRadius, c, -1)

	half := float64(FingerWidth) / 2
	for _, deg := range FanFingers {
		theta := deg * math.Pi / 180
		ux, uy := math.Cos(theta), math.Sin(theta)
		nx, ny := -uy, ux

		corner := func(along, across float64) image.Point {
			return image.Point{
				X: center.X + int(math.Round(ux*along+nx*across)),
				Y: center.Y + int(math.Round(uy*along+ny*across)),
			}
		}

		FillOutline(img, []image.Point{
			corner(0, -half),
			corner(FingerReach, -half),
			corner(FingerReach, half),
			corner(0, half),
		}, c)
	}
}

// HandCenter is the palm centre of the fan hand inside a ROI.
var HandCenter = image.Point{X: 150, Y: 200}

// HandROI returns a ROISize x ROISize BGR image of a dark fan hand on a
// white background. The caller must close it.
func HandROI() gocv.Mat {
	roi := UniformFrame(ROISize, ROISize, 255)
	DrawFanHand(&roi, HandCenter, Black)
	return roi
}

// HandMask returns a single channel mask of the HandOutline silhouette.
func HandMask() gocv.Mat {
	mask := gocv.NewMatWithSize(ROISize, ROISize, gocv.MatTypeCV8U)
	mask.SetTo(gocv.NewScalar(0, 0, 0, 0))
	FillOutline(&mask, HandOutline(), White)
	return mask
}

// HandFrame returns a camera frame with the fan hand placed so that it
// lands inside roi once the frame is mirrored horizontally.
func HandFrame(width, height int, roi image.Rectangle) gocv.Mat {
	frame := UniformFrame(height, width, 255)
	center := image.Point{
		X: width - 1 - (roi.Min.X + HandCenter.X),
		Y: roi.Min.Y + HandCenter.Y,
	}
	DrawFanHand(&frame, center, Black)
	return frame
}

// UniformFrame returns a BGR frame with every channel set to value.
func UniformFrame(rows, cols int, value float64) gocv.Mat {
	frame := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	frame.SetTo(gocv.NewScalar(value, value, value, 0))
	return frame
}

// Sequence returns n hand frames for playback through a mock camera.
func Sequence(n, width, height int, roi image.Rectangle) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		frame := HandFrame(width, height, roi)
		frames = append(frames, &frame)
	}
	return frames
}
