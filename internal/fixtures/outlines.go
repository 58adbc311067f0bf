// Package fixtures provides synthetic hand silhouettes and frames shared by
// the package tests.
package fixtures

import (
	"image"
	"math"
)

// ROISize is the side of the square region the fixtures are drawn for.
const ROISize = 300

// HandOutline returns a 300x300 hand silhouette: five pointed fingers with
// four acute valleys between them and one obtuse (135 degree) indentation
// on the right side of the wrist.
func HandOutline() []image.Point {
	return []image.Point{
		{X: 70, Y: 60},   // thumb tip
		{X: 90, Y: 85},   // valley
		{X: 110, Y: 45},  // index tip
		{X: 130, Y: 80},  // valley
		{X: 150, Y: 40},  // middle tip
		{X: 170, Y: 80},  // valley
		{X: 190, Y: 45},  // ring tip
		{X: 210, Y: 85},  // valley
		{X: 230, Y: 60},  // little finger tip
		{X: 250, Y: 120}, // right edge of the palm
		{X: 240, Y: 200},
		{X: 200, Y: 240}, // wrist indentation
		{X: 200, Y: 290},
		{X: 100, Y: 290},
		{X: 60, Y: 200},
		{X: 50, Y: 120}, // left edge of the palm
	}
}

// HandValleys are the HandOutline indices of the four finger valleys.
var HandValleys = []int{1, 3, 5, 7}

// HandWrist is the HandOutline index of the obtuse wrist indentation.
const HandWrist = 11

// StarOutline returns a star with n points of radius outer and n notches
// of radius inner, starting with a point straight up from center.
func StarOutline(center image.Point, n int, outer, inner float64) []image.Point {
	points := make([]image.Point, 0, 2*n)
	step := 2 * math.Pi / float64(n)
	for k := 0; k < n; k++ {
		theta := -math.Pi/2 + float64(k)*step
		points = append(points, polar(center, outer, theta), polar(center, inner, theta+step/2))
	}
	return points
}

// CircleOutline returns n points evenly spaced on a circle.
func CircleOutline(center image.Point, radius float64, n int) []image.Point {
	points := make([]image.Point, n)
	for k := range points {
		points[k] = polar(center, radius, 2*math.Pi*float64(k)/float64(n))
	}
	return points
}

func polar(center image.Point, radius, theta float64) image.Point {
	return image.Point{
		X: center.X + int(math.Round(radius*math.Cos(theta))),
		Y: center.Y + int(math.Round(radius*math.Sin(theta))),
	}
}
