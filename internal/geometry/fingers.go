package geometry

import (
	"image"
	"math"
)

// MaxValleyAngle is the widest angle at a defect's far point that still
// counts as the valley between two extended fingers.
const MaxValleyAngle = math.Pi / 2

// Angle returns the angle at far in the triangle (start, far, end), using
// the law of cosines. It reports false when far coincides with start or
// end, in which case the angle is undefined.
func Angle(start, far, end image.Point) (float64, bool) {
	a := distance(start, end)
	b := distance(start, far)
	c := distance(end, far)
	if b == 0 || c == 0 {
		return 0, false
	}

	cos := (b*b + c*c - a*a) / (2 * b * c)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos), true
}

// IsValley reports whether a defect of the contour is the valley between
// two raised fingers.
func IsValley(contour []image.Point, d Defect) bool {
	if !inRange(contour, d.Start) || !inRange(contour, d.End) || !inRange(contour, d.Far) {
		return false
	}

	angle, ok := Angle(contour[d.Start], contour[d.Far], contour[d.End])
	return ok && angle <= MaxValleyAngle
}

// CountFingers applies the valley test to every defect and returns how
// many passed along with the accepted defects, in input order.
func CountFingers(contour []image.Point, defects []Defect) (int, []Defect) {
	var valleys []Defect
	for _, d := range defects {
		if IsValley(contour, d) {
			valleys = append(valleys, d)
		}
	}
	return len(valleys), valleys
}

func distance(p, q image.Point) float64 {
	return math.Hypot(float64(p.X-q.X), float64(p.Y-q.Y))
}

func inRange(contour []image.Point, i int) bool {
	return i >= 0 && i < len(contour)
}
