package geom

import "math"

// Circumradius returns the radius of the circle through the corners of a
// regular n-gon with the given side length. n below 3 is treated as 3.
func Circumradius(side float64, n int) float64 {
	if n < 3 {
		n = 3
	}
	return side / (2 * math.Sin(math.Pi/float64(n)))
}

// Apothem returns the distance from the center of a regular n-gon to the
// midpoint of a side, given its circumradius.
func Apothem(circumradius float64, n int) float64 {
	if n < 3 {
		n = 3
	}
	return circumradius * math.Cos(math.Pi/float64(n))
}

// CentralAngle returns the angle subtended at the center of a regular n-gon
// by one side.
func CentralAngle(n int) float64 {
	if n < 3 {
		n = 3
	}
	return 2 * math.Pi / float64(n)
}

// ToRad converts degrees to radians.
func ToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// ToDeg converts radians to degrees.
func ToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
