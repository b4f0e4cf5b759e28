package geo

import "math"

const wgs84_radius = 6371009.0

func to_radians(deg float64) float64 {
	return (deg * math.Pi / 180.0)
}

func to_degrees(rad float64) float64 {
	return (rad * 180.0 / math.Pi)
}

// Csedist returns the course (degrees) and flat-earth distance (metres)
// between two positions. Adequate for the few-km spans of a drone flight.
func Csedist(lat1, lon1, lat2, lon2 float64) (float64, float64) {
	x := to_radians(lon2-lon1) * math.Cos(to_radians((lat1+lat2)/2))
	y := to_radians(lat2 - lat1)
	d := math.Sqrt(x*x+y*y) * wgs84_radius
	cse := math.Mod(to_degrees(math.Atan2(x, y))+360.0, 360.0)
	return cse, d
}
