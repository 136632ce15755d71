package exif

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tags is a flat map of metadata tag names to values, as reported by
// exiftool's JSON output. Values are strings or numbers.
type Tags map[string]any

// String returns the tag as trimmed text, or "" when absent.
func (t Tags) String(key string) string {
	v, ok := t[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(strings.Trim(val, "\x00"))
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// Float returns the tag as a number.
func (t Tags) Float(key string) (float64, bool) {
	v, ok := t[key]
	if !ok || v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, !math.IsNaN(val) && !math.IsInf(val, 0)
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// GPS is a signed decimal-degree coordinate (negative is South/West).
type GPS struct {
	Latitude  float64
	Longitude float64
}

// GPSFromTags reads GPSLatitude/GPSLongitude with their hemisphere
// references. Magnitudes are taken as absolute values and negated for
// South and West. Either coordinate missing yields false.
func GPSFromTags(tags Tags) (GPS, bool) {
	lat, ok := tags.Float("GPSLatitude")
	if !ok {
		return GPS{}, false
	}
	lon, ok := tags.Float("GPSLongitude")
	if !ok {
		return GPS{}, false
	}

	lat = math.Abs(lat)
	lon = math.Abs(lon)
	if strings.HasPrefix(strings.ToUpper(tags.String("GPSLatitudeRef")), "S") {
		lat = -lat
	}
	if strings.HasPrefix(strings.ToUpper(tags.String("GPSLongitudeRef")), "W") {
		lon = -lon
	}
	if lat > 90 || lon > 180 || lat < -90 || lon < -180 {
		return GPS{}, false
	}
	return GPS{Latitude: lat, Longitude: lon}, true
}
