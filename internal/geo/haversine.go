package geo

import "math"

// HaversineMeters returns the great-circle distance between two WGS84
// points, in meters. Used only for user-visible route length reporting;
// the spatial index itself works entirely in the planar projection.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const r = earthRadiusMeters
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return r * c
}
