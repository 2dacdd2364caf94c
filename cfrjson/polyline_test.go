package cfrjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodePolylineCanonicalExample(t *testing.T) {
	points := []LatLng{
		{Latitude: 38.5, Longitude: -120.2},
		{Latitude: 40.7, Longitude: -120.95},
		{Latitude: 43.252, Longitude: -126.453},
	}
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", EncodePolyline(points))
}

func TestEncodePolylineEmpty(t *testing.T) {
	assert.Equal(t, "", EncodePolyline(nil))
}

func TestDecodePolylineEmpty(t *testing.T) {
	assert.Nil(t, DecodePolyline(""))
}

func TestPolylineRoundTrip(t *testing.T) {
	points := []LatLng{
		{Latitude: 38.5, Longitude: -120.2},
		{Latitude: 40.7, Longitude: -120.95},
		{Latitude: 43.252, Longitude: -126.453},
		{Latitude: 40.0, Longitude: -120.0},
	}
	encoded := EncodePolyline(points)
	decoded := DecodePolyline(encoded)
	if assert.Len(t, decoded, len(points)) {
		for i := range points {
			assert.InDelta(t, points[i].Latitude, decoded[i].Latitude, 1e-5)
			assert.InDelta(t, points[i].Longitude, decoded[i].Longitude, 1e-5)
		}
	}
}

func TestMergePolylinesFromTransitions(t *testing.T) {
	a := EncodePolyline([]LatLng{{Latitude: 1, Longitude: 1}, {Latitude: 2, Longitude: 2}})
	b := EncodePolyline([]LatLng{{Latitude: 2, Longitude: 2}, {Latitude: 3, Longitude: 3}})
	merged := MergePolylinesFromTransitions([]Transition{
		{RoutePolyline: &Polyline{Points: a}},
		{RoutePolyline: &Polyline{Points: b}},
	})
	decoded := DecodePolyline(merged)
	assert.Len(t, decoded, 3)
}

func TestMergePolylinesFromTransitionsNoneSet(t *testing.T) {
	assert.Equal(t, "", MergePolylinesFromTransitions([]Transition{{}, {}}))
}
