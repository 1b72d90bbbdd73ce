package geo

import (
	"errors"
	"math"
)

// EarthRadiusKM is the spherical Earth model radius used for all
// great-circle math in this service; the SQL predicate in the location
// repository must use the same constant so both sides agree.
const EarthRadiusKM = 6371.0

const MaxRadiusKM = 1000.0

var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
	ErrInvalidRadius    = errors.New("radius must be between 0 and 1000 km")
)

// ValidateCoordinates rejects out-of-range lat/lon pairs.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return ErrInvalidLatitude
	}
	if lon < -180 || lon > 180 {
		return ErrInvalidLongitude
	}
	return nil
}

// ValidateQuery rejects out-of-range proximity query parameters.
func ValidateQuery(lat, lon, radiusKM float64) error {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return err
	}
	if radiusKM <= 0 || radiusKM > MaxRadiusKM {
		return ErrInvalidRadius
	}
	return nil
}

// Distance returns the great-circle distance in kilometers between two
// points, using the Haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return EarthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
