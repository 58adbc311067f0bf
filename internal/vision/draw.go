package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// CountOrigin is where the finger count is written on the display frame.
var CountOrigin = image.Point{X: 50, Y: 50}

// DrawCount writes "Fingers: N" onto the display frame.
func DrawCount(img *gocv.Mat, count int) {
	gocv.PutText(img, fmt.Sprintf("Fingers: %d", count), CountOrigin, gocv.FontHersheySimplex, 1, ColorText, 2)
}

func drawPolygon(img *gocv.Mat, points []image.Point, c color.RGBA) {
	if len(points) == 0 {
		return
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{points})
	defer pv.Close()
	gocv.DrawContours(img, pv, -1, c, 2)
}
