package data

// Contains data of a Point Cloud Point needed by the updater, namely X,Y,Z coords
// and Intensity
type Point struct {
	X         float64
	Y         float64
	Z         float64
	Intensity uint16
}

// Builds a new Point from the given coordinates and intensity value
func NewPoint(X, Y, Z float64, Intensity uint16) *Point {
	return &Point{
		X:         X,
		Y:         Y,
		Z:         Z,
		Intensity: Intensity,
	}
}
