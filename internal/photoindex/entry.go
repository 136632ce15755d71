package photoindex

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the layout of Entry.Date.
const DateLayout = "2006-01-02"

// SentinelYear marks an unknown capture date. Some importers stamp
// "2100-01-01" on photos without metadata, so the year is never treated as
// a real capture year.
const SentinelYear = 2100

const minPathYear = 1900

// DefaultYearRange is reported by YearRange when no entry carries a usable year.
var DefaultYearRange = YearRange{Min: 2003, Max: 2025}

var validAngles = map[int]bool{0: true, 90: true, 180: true, 270: true, -90: true}

// ValidAngle reports whether angle is one of 0, 90, 180, 270 or -90.
func ValidAngle(angle int) bool {
	return validAngles[angle]
}

// GPS is a signed decimal-degree coordinate (negative is South/West).
type GPS struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a reverse-geocoded locality. An empty Location records a
// geocoding attempt that produced no address.
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// IsEmpty reports whether no address component is set.
func (l Location) IsEmpty() bool {
	return l.City == "" && l.State == "" && l.Country == ""
}

// Entry is one indexed photo.
type Entry struct {
	// Filename is the forward-slash path relative to the media root; it is
	// the entry's unique key.
	Filename string    `json:"filename"`
	Date     *string   `json:"date"`
	Camera   *string   `json:"camera"`
	Angle    int       `json:"angle"`
	HasFaces bool      `json:"hasFaces"`
	GPS      *GPS      `json:"gps"`
	Location *Location `json:"location"`
}

// YearRange is an inclusive span of capture years.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Year returns the capture year used for filtering. The first four
// characters of Date win when Date is set; otherwise the first all-digit
// path segment within [1900, 2100) is used. The sentinel year 2100 yields
// no year in both cases.
func (e Entry) Year() (int, bool) {
	if e.Date != nil && *e.Date != "" {
		prefix := *e.Date
		if len(prefix) > 4 {
			prefix = prefix[:4]
		}
		y, err := strconv.Atoi(strings.TrimSpace(prefix))
		if err != nil || y == SentinelYear {
			return 0, false
		}
		return y, true
	}

	for _, part := range strings.Split(e.Filename, "/") {
		if !isDigits(part) {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		if y == SentinelYear {
			return 0, false
		}
		if y >= minPathYear && y < SentinelYear {
			return y, true
		}
	}
	return 0, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// normalize repairs invariant violations in a loaded or submitted entry and
// returns a description of each repair.
func normalize(e Entry) (Entry, []string) {
	var repairs []string

	if strings.Contains(e.Filename, "\\") {
		e.Filename = strings.ReplaceAll(e.Filename, "\\", "/")
		repairs = append(repairs, "filename separators normalized")
	}

	if !ValidAngle(e.Angle) {
		repairs = append(repairs, "angle "+strconv.Itoa(e.Angle)+" reset to 0")
		e.Angle = 0
	}

	if e.Date != nil {
		if _, err := time.Parse(DateLayout, *e.Date); err != nil {
			repairs = append(repairs, "invalid date "+strconv.Quote(*e.Date)+" cleared")
			e.Date = nil
		}
	}

	if e.Camera != nil && strings.TrimSpace(*e.Camera) == "" {
		e.Camera = nil
	}

	return e, repairs
}
