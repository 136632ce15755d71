package exif

import (
	"strings"
	"time"
)

// captureTags are consulted in order; the first non-empty one is used.
var captureTags = []string{"DateTimeOriginal", "CreateDate", "ModifyDate"}

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2006:1:2 15:4:5",
	"2006-1-2 15:4:5",
	"2006/1/2 15:4:5",
	"2006.1.2 15:4:5",
	"2006:1:2",
	"2006-1-2",
}

// Metadata is the result of extraction. Nil fields mean "unknown".
type Metadata struct {
	Date   *string
	Camera *string
}

// IsEmpty reports whether nothing was extracted.
func (m Metadata) IsEmpty() bool {
	return m.Date == nil && m.Camera == nil
}

// ParseCaptureDate normalizes a raw EXIF timestamp to YYYY-MM-DD.
func ParseCaptureDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// FromTags derives capture date and camera model from a tag map.
func FromTags(tags Tags) Metadata {
	var m Metadata

	for _, key := range captureTags {
		raw := tags.String(key)
		if raw == "" {
			continue
		}
		if date, ok := ParseCaptureDate(raw); ok {
			m.Date = &date
		}
		break
	}

	if model := tags.String("Model"); model != "" {
		m.Camera = &model
	}
	return m
}
