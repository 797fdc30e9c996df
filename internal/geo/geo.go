// Package geo contains pure geographic computation helpers.
package geo

import "math"

const earthRadiusKm = 6371.0

var directions = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat" validate:"lat"`
	Lng float64 `json:"lng" validate:"lng"`
}

// DistanceKm returns the great-circle distance in kilometres between two
// points, using the haversine formula on a spherical earth.
func DistanceKm(a, b Point) float64 {
	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)

	rLat1 := deg2rad(a.Lat)
	rLat2 := deg2rad(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// BearingDegrees returns the initial compass bearing in [0, 360) travelling
// from a toward b. 0 is due north, increasing clockwise. For identical
// points the bearing is undefined; 0 is returned.
func BearingDegrees(a, b Point) float64 {
	if a == b {
		return 0
	}

	rLat1 := deg2rad(a.Lat)
	rLat2 := deg2rad(b.Lat)
	dLng := deg2rad(b.Lng - a.Lng)

	y := math.Sin(dLng) * math.Cos(rLat2)
	x := math.Cos(rLat1)*math.Sin(rLat2) -
		math.Sin(rLat1)*math.Cos(rLat2)*math.Cos(dLng)

	deg := rad2deg(math.Atan2(y, x))
	return math.Mod(deg+360, 360)
}

// DirectionLabel maps a bearing to one of the 8 compass labels. The circle
// is split into equal 45 degree sectors centred on each label, so N covers
// [337.5, 360) and [0, 22.5).
func DirectionLabel(bearing float64) string {
	bearing = math.Mod(math.Mod(bearing, 360)+360, 360)
	idx := int(math.Floor((bearing+22.5)/45)) % 8
	return directions[idx]
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func rad2deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
