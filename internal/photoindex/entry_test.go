package photoindex

import "testing"

func strPtr(s string) *string { return &s }

func TestEntryYear(t *testing.T) {
	tests := []struct {
		name     string
		entry    Entry
		wantYear int
		wantOK   bool
	}{
		{
			name:     "date prefix",
			entry:    Entry{Filename: "x/a.jpg", Date: strPtr("2004-05-01")},
			wantYear: 2004, wantOK: true,
		},
		{
			name:     "date wins over path",
			entry:    Entry{Filename: "1999/a.jpg", Date: strPtr("2004-05-01")},
			wantYear: 2004, wantOK: true,
		},
		{
			name:     "path segment when date is null",
			entry:    Entry{Filename: "2004/trip/a.jpg"},
			wantYear: 2004, wantOK: true,
		},
		{
			name:     "empty date falls back to path",
			entry:    Entry{Filename: "photos/2011/a.jpg", Date: strPtr("")},
			wantYear: 2011, wantOK: true,
		},
		{
			name:   "sentinel date",
			entry:  Entry{Filename: "2004/a.jpg", Date: strPtr("2100-01-01")},
			wantOK: false,
		},
		{
			name:   "sentinel path segment",
			entry:  Entry{Filename: "2100/a.jpg"},
			wantOK: false,
		},
		{
			name:   "sentinel stops the scan",
			entry:  Entry{Filename: "2100/2004/a.jpg"},
			wantOK: false,
		},
		{
			name:     "out of range segment is skipped",
			entry:    Entry{Filename: "01/2007/a.jpg"},
			wantYear: 2007, wantOK: true,
		},
		{
			name:   "no numeric segment",
			entry:  Entry{Filename: "holiday/a.jpg"},
			wantOK: false,
		},
		{
			name:   "file name digits are not a segment year",
			entry:  Entry{Filename: "misc/2004.jpg"},
			wantOK: false,
		},
		{
			name:   "unparseable date",
			entry:  Entry{Filename: "2004/a.jpg", Date: strPtr("abcd-01-01")},
			wantOK: false,
		},
		{
			name:     "lower bound inclusive",
			entry:    Entry{Filename: "1900/a.jpg"},
			wantYear: 1900, wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.entry.Year()
			if ok != tt.wantOK {
				t.Fatalf("Year() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.wantYear {
				t.Errorf("Year() = %d, want %d", got, tt.wantYear)
			}
		})
	}
}

func TestValidAngle(t *testing.T) {
	for _, a := range []int{0, 90, 180, 270, -90} {
		if !ValidAngle(a) {
			t.Errorf("ValidAngle(%d) = false, want true", a)
		}
	}
	for _, a := range []int{45, -180, 360, -270, 1} {
		if ValidAngle(a) {
			t.Errorf("ValidAngle(%d) = true, want false", a)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		in          Entry
		wantName    string
		wantAngle   int
		wantDate    bool
		wantCamera  bool
		wantRepairs int
	}{
		{
			name:     "valid entry untouched",
			in:       Entry{Filename: "a.jpg", Angle: 90, Date: strPtr("2010-02-03"), Camera: strPtr("X100")},
			wantName: "a.jpg", wantAngle: 90, wantDate: true, wantCamera: true,
		},
		{
			name:     "bad angle reset",
			in:       Entry{Filename: "a.jpg", Angle: 45},
			wantName: "a.jpg", wantAngle: 0, wantRepairs: 1,
		},
		{
			name:     "invalid calendar date cleared",
			in:       Entry{Filename: "a.jpg", Date: strPtr("2010-02-30")},
			wantName: "a.jpg", wantRepairs: 1,
		},
		{
			name:     "backslashes normalized",
			in:       Entry{Filename: `2004\trip\a.jpg`},
			wantName: "2004/trip/a.jpg", wantRepairs: 1,
		},
		{
			name:     "blank camera becomes null",
			in:       Entry{Filename: "a.jpg", Camera: strPtr("  ")},
			wantName: "a.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, repairs := normalize(tt.in)
			if got.Filename != tt.wantName {
				t.Errorf("Filename = %q, want %q", got.Filename, tt.wantName)
			}
			if got.Angle != tt.wantAngle {
				t.Errorf("Angle = %d, want %d", got.Angle, tt.wantAngle)
			}
			if (got.Date != nil) != tt.wantDate {
				t.Errorf("Date set = %v, want %v", got.Date != nil, tt.wantDate)
			}
			if (got.Camera != nil) != tt.wantCamera {
				t.Errorf("Camera set = %v, want %v", got.Camera != nil, tt.wantCamera)
			}
			if len(repairs) != tt.wantRepairs {
				t.Errorf("repairs = %v, want %d", repairs, tt.wantRepairs)
			}
		})
	}
}

func TestLocationIsEmpty(t *testing.T) {
	if !(Location{}).IsEmpty() {
		t.Error("zero Location should be empty")
	}
	if (Location{Country: "Brazil"}).IsEmpty() {
		t.Error("Location with country should not be empty")
	}
}
