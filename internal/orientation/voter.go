package orientation

import (
	"context"
	"math"
	"strconv"
	"time"

	"photo-index/internal/faces"
	"photo-index/internal/logging"
	"photo-index/internal/metrics"
)

const (
	// MinConfidence is the lowest detector confidence that casts a vote.
	MinConfidence = 0.7

	// minEyeDelta is the pixel distance below which the eye pair is degenerate.
	minEyeDelta = 3.0

	// Absolute eye-line angles (degrees) up to levelMaxDeg or from
	// uprightMinDeg on count as an upright face.
	levelMaxDeg   = 70.0
	uprightMinDeg = 120.0

	// wideFaceRatio is the width/height ratio above which an eyeless face box
	// is treated as lying on its side.
	wideFaceRatio = 1.13
)

// Result is the outcome of inference on one photo.
type Result struct {
	// Angle is one of 0, 90, -90.
	Angle int
	// Faces counts every detected face regardless of confidence.
	Faces int
}

// vote returns the rotation one face suggests, or ok=false when the face
// abstains.
func vote(f faces.Face) (int, bool) {
	if f.Confidence < MinConfidence {
		return 0, false
	}

	if !f.HasEyes() {
		if f.Box.W > f.Box.H*wideFaceRatio {
			return 90, true
		}
		return 0, true
	}

	dx := f.RightEye.X - f.LeftEye.X
	dy := f.RightEye.Y - f.LeftEye.Y
	if math.Abs(dx) < minEyeDelta && math.Abs(dy) < minEyeDelta {
		return 0, false
	}

	deg := math.Abs(math.Atan2(dy, dx) * 180 / math.Pi)
	if deg <= levelMaxDeg || deg >= uprightMinDeg {
		return 0, true
	}

	mid := (f.LeftEye.X + f.RightEye.X) / 2
	distLeft := mid - f.Box.X
	distRight := f.Box.X + f.Box.W - mid
	if distRight > distLeft {
		return 90, true
	}
	return -90, true
}

// Vote tallies the faces' votes and returns the winning angle, or 0 when no
// face voted.
func Vote(detected []faces.Face) int {
	counts := make(map[int]int, 3)
	for _, f := range detected {
		if v, ok := vote(f); ok {
			counts[v]++
		}
	}

	best, bestCount := 0, 0
	for _, candidate := range []int{0, 90, -90} {
		if counts[candidate] > bestCount {
			best, bestCount = candidate, counts[candidate]
		}
	}
	return best
}

// Voter runs detection and voting for a file.
type Voter struct {
	detector faces.Detector
	timeout  time.Duration
}

// NewVoter creates a voter. A nil detector makes every inference return the
// zero Result.
func NewVoter(detector faces.Detector, timeout time.Duration) *Voter {
	return &Voter{detector: detector, timeout: timeout}
}

// Enabled reports whether a detector is configured.
func (v *Voter) Enabled() bool {
	return v.detector != nil
}

// InferRotation detects faces in path and votes on its rotation. Detector
// failures and timeouts yield the zero Result.
func (v *Voter) InferRotation(ctx context.Context, path string) Result {
	if v.detector == nil {
		return Result{}
	}

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	detected, err := v.detector.Detect(ctx, path)
	if err != nil {
		logging.Warn("Face detection failed for %s: %v", path, err)
		return Result{}
	}

	angle := Vote(detected)
	metrics.OrientationVotesTotal.WithLabelValues(strconv.Itoa(angle)).Inc()
	logging.Debug("Orientation for %s: %d (%d faces)", path, angle, len(detected))
	return Result{Angle: angle, Faces: len(detected)}
}
