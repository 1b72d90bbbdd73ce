package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCoordinates(t *testing.T) {
	require.NoError(t, ValidateCoordinates(0, 0))
	require.NoError(t, ValidateCoordinates(90, 180))
	require.NoError(t, ValidateCoordinates(-90, -180))

	assert.ErrorIs(t, ValidateCoordinates(90.01, 0), ErrInvalidLatitude)
	assert.ErrorIs(t, ValidateCoordinates(-91, 0), ErrInvalidLatitude)
	assert.ErrorIs(t, ValidateCoordinates(0, 180.01), ErrInvalidLongitude)
	assert.ErrorIs(t, ValidateCoordinates(0, -181), ErrInvalidLongitude)
}

func TestValidateQuery(t *testing.T) {
	require.NoError(t, ValidateQuery(48.85, 2.35, 10))
	require.NoError(t, ValidateQuery(0, 0, MaxRadiusKM))

	assert.ErrorIs(t, ValidateQuery(0, 0, 0), ErrInvalidRadius)
	assert.ErrorIs(t, ValidateQuery(0, 0, -5), ErrInvalidRadius)
	assert.ErrorIs(t, ValidateQuery(0, 0, MaxRadiusKM+1), ErrInvalidRadius)
	assert.ErrorIs(t, ValidateQuery(120, 0, 10), ErrInvalidLatitude)
}

func TestDistanceZeroForSamePoint(t *testing.T) {
	assert.Zero(t, Distance(48.8566, 2.3522, 48.8566, 2.3522))
}

func TestDistanceParisLondon(t *testing.T) {
	// Paris to London is roughly 343 km on the great circle.
	d := Distance(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, 343.5, d, 1.0)
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := Distance(40.7128, -74.0060, 35.6762, 139.6503)
	b := Distance(35.6762, 139.6503, 40.7128, -74.0060)
	assert.InDelta(t, a, b, 1e-9)
}
