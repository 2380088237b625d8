package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatePolicy_Validate(t *testing.T) {
	policy := CoordinatePolicy{}

	tests := []struct {
		name     string
		lat, lon float64
		wantErr  bool
	}{
		{"valid", 52.52, 13.405, false},
		{"boundary lat", 90, 0.1, false},
		{"boundary lon", 0.1, -180, false},
		{"lat too high", 90.001, 0, true},
		{"lat too low", -91, 0, true},
		{"lon too high", 0, 180.5, true},
		{"lon too low", 0, -181, true},
		{"zero sentinel", 0, 0, true},
		{"zero lat only", 0, 6.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Validate(tt.lat, tt.lon)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrOutOfRange)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCoordinatePolicy_AllowZero(t *testing.T) {
	policy := CoordinatePolicy{AllowZero: true}

	require.NoError(t, policy.Validate(0, 0))
	require.ErrorIs(t, policy.Validate(0, 181), ErrOutOfRange, "range checks still apply")
}

func TestParseCoordinate(t *testing.T) {
	got, err := parseCoordinate(String("52.520008"))
	require.NoError(t, err)
	assert.Equal(t, 52.520008, got)

	got, err = parseCoordinate(String("13,405"))
	require.NoError(t, err)
	assert.Equal(t, 13.405, got)

	got, err = parseCoordinate(Number(-98.44))
	require.NoError(t, err)
	assert.Equal(t, -98.44, got)

	_, err = parseCoordinate(String("north"))
	require.ErrorIs(t, err, ErrNotNumeric)

	_, err = parseCoordinate(Null())
	require.ErrorIs(t, err, ErrNotNumeric)
}
