package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		absent  bool
		wantLat *float64
	}{
		{name: "sql null", raw: "", absent: true},
		{name: "json null", raw: "null", absent: true},
		{name: "padded json null", raw: "  null\n", absent: true},
		{name: "empty object", raw: "{}"},
		{name: "not an object", raw: `"pending"`},
		{name: "coordinates", raw: `{"latitude": 54.2, "longitude": -1.3}`, wantLat: ptrFloat(54.2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLocation([]byte(tt.raw))
			if tt.absent {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantLat, got.Latitude)
		})
	}
}

func TestLocationScan_NullIsEmpty(t *testing.T) {
	l := *NewLocation(1, 2)
	require.NoError(t, l.Scan([]byte("null")))
	assert.Equal(t, Location{}, l)

	require.NoError(t, l.Scan(`{"latitude": 3, "longitude": 4}`))
	assert.Equal(t, 3.0, *l.Latitude)

	assert.Error(t, l.Scan(42))
}

func ptrFloat(v float64) *float64 { return &v }
