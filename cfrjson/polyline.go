package cfrjson

import "strings"

// EncodePolyline encodes a sequence of lat/lng points using the Google Maps
// polyline algorithm (https://developers.google.com/maps/documentation/utilities/polylinealgorithm).
func EncodePolyline(points []LatLng) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	var prevLat, prevLng int64
	for _, p := range points {
		lat := round1e5(p.Latitude)
		lng := round1e5(p.Longitude)
		encodeSignedValue(&b, lat-prevLat)
		encodeSignedValue(&b, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return b.String()
}

// DecodePolyline is the inverse of EncodePolyline.
func DecodePolyline(encoded string) []LatLng {
	if encoded == "" {
		return nil
	}
	var points []LatLng
	var lat, lng int64
	index := 0
	for index < len(encoded) {
		dLat, next := decodeSignedValue(encoded, index)
		index = next
		dLng, next2 := decodeSignedValue(encoded, index)
		index = next2
		lat += dLat
		lng += dLng
		points = append(points, LatLng{
			Latitude:  float64(lat) / 1e5,
			Longitude: float64(lng) / 1e5,
		})
	}
	return points
}

func round1e5(v float64) int64 {
	if v >= 0 {
		return int64(v*1e5 + 0.5)
	}
	return int64(v*1e5 - 0.5)
}

func encodeSignedValue(b *strings.Builder, value int64) {
	shifted := value << 1
	if value < 0 {
		shifted = ^shifted
	}
	encodeUnsignedValue(b, shifted)
}

func encodeUnsignedValue(b *strings.Builder, value int64) {
	for value >= 0x20 {
		chunk := (value & 0x1f) | 0x20
		b.WriteByte(byte(chunk + 63))
		value >>= 5
	}
	b.WriteByte(byte(value + 63))
}

func decodeSignedValue(encoded string, index int) (int64, int) {
	result := int64(0)
	shift := uint(0)
	for {
		b := int64(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), index
	}
	return result >> 1, index
}
