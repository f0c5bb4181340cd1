// Package quality decides, from detector output alone, whether a capture is
// worth submitting downstream. No network calls; every function is pure.
package quality

import (
	"math"
)

// Detection is the raw detector output for a single frame.
type Detection struct {
	FrameWidth  float64 `json:"frame_width"`
	FrameHeight float64 `json:"frame_height"`

	// Face bounding box, pixels.
	BoxX      float64 `json:"box_x"`
	BoxY      float64 `json:"box_y"`
	BoxWidth  float64 `json:"box_width"`
	BoxHeight float64 `json:"box_height"`

	// Head pose, degrees.
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`

	// Per-eye open probability, 0..1.
	LeftEyeOpen  float64 `json:"left_eye_open"`
	RightEyeOpen float64 `json:"right_eye_open"`

	// Brightness proxy from the detector, 0..1.
	Lighting float64 `json:"lighting"`
}

// Reason codes for a not-ready capture, used only as UI hints.
const (
	ReasonFaceTooSmall   = "face_too_small"
	ReasonTooClose       = "too_close"
	ReasonNotCentered    = "not_centered"
	ReasonHeadTurned     = "head_turned"
	ReasonEyesNotVisible = "eyes_not_visible"
)

// Report is the gate's verdict for one detection.
type Report struct {
	Ready     bool    `json:"ready"`
	Score     float64 `json:"score"`
	Size      float64 `json:"size"`
	Centering float64 `json:"centering"`
	Pose      float64 `json:"pose"`
	Eyes      float64 `json:"eyes"`
	Lighting  float64 `json:"lighting"`
	Reason    string  `json:"reason,omitempty"`
}

const (
	// Relative face size: below the floor the face is too far away, above
	// the ceiling it fills the frame and clips.
	sizeFloor   = 0.15
	sizeCeiling = 0.85

	// Face-box center may drift up to this fraction of the frame from the
	// frame center before the centering score zeroes out.
	maxCenterOffset = 0.40

	// Per-axis pose tolerance, degrees.
	maxPoseAngle = 30.0

	eyeOpenThreshold = 0.5

	// The composite must reach this for the capture to be ready, on top of
	// the hard per-dimension requirements.
	completionThreshold = 0.7

	// Weights of the composite. Size dominates: a distant face defeats
	// every other metric.
	weightSize      = 0.5
	weightCentering = 0.2
	weightPose      = 0.1
	weightEyes      = 0.1
	weightLighting  = 0.1
)

// Evaluate runs the quality gate over one detection. The capture is ready
// only when the face size is above the floor, at least one eye is visible,
// and the weighted composite clears the completion threshold. A single
// missing hard dimension blocks regardless of the aggregate.
func Evaluate(d Detection) Report {
	r := Report{
		Size:      sizeScore(d),
		Centering: centeringScore(d),
		Pose:      poseScore(d),
		Eyes:      eyesScore(d),
		Lighting:  clamp01(d.Lighting),
	}

	r.Score = weightSize*r.Size +
		weightCentering*r.Centering +
		weightPose*r.Pose +
		weightEyes*r.Eyes +
		weightLighting*r.Lighting

	rel := relativeSize(d)
	eyesVisible := d.LeftEyeOpen >= eyeOpenThreshold || d.RightEyeOpen >= eyeOpenThreshold

	switch {
	case rel < sizeFloor:
		r.Reason = ReasonFaceTooSmall
	case rel > 1.0:
		r.Reason = ReasonTooClose
	case !eyesVisible:
		r.Reason = ReasonEyesNotVisible
	case r.Centering == 0:
		r.Reason = ReasonNotCentered
	case r.Pose == 0:
		r.Reason = ReasonHeadTurned
	case r.Score >= completionThreshold:
		r.Ready = true
	default:
		r.Reason = dominantShortfall(r)
	}

	return r
}

// relativeSize is max(box side) over min(frame side).
func relativeSize(d Detection) float64 {
	frame := math.Min(d.FrameWidth, d.FrameHeight)
	if frame <= 0 {
		return 0
	}
	return math.Max(d.BoxWidth, d.BoxHeight) / frame
}

// sizeScore maps relative face size to 0..1 with clamped linear
// interpolation between the floor and the ceiling.
func sizeScore(d Detection) float64 {
	rel := relativeSize(d)
	return clamp01((rel - sizeFloor) / (sizeCeiling - sizeFloor))
}

// centeringScore measures how far the face-box center sits from the frame
// center, normalized by frame size; full score at dead center, zero at
// maxCenterOffset or beyond.
func centeringScore(d Detection) float64 {
	if d.FrameWidth <= 0 || d.FrameHeight <= 0 {
		return 0
	}

	cx := (d.BoxX + d.BoxWidth/2) / d.FrameWidth
	cy := (d.BoxY + d.BoxHeight/2) / d.FrameHeight
	offset := math.Hypot(cx-0.5, cy-0.5)

	return clamp01(1 - offset/maxCenterOffset)
}

// poseScore penalizes the summed absolute pitch/yaw/roll, tolerating up to
// maxPoseAngle per axis.
func poseScore(d Detection) float64 {
	total := math.Abs(d.Pitch) + math.Abs(d.Yaw) + math.Abs(d.Roll)
	return clamp01(1 - total/(3*maxPoseAngle))
}

// eyesScore: both eyes open is full score, one eye partial, none low.
func eyesScore(d Detection) float64 {
	left := d.LeftEyeOpen >= eyeOpenThreshold
	right := d.RightEyeOpen >= eyeOpenThreshold

	switch {
	case left && right:
		return 1.0
	case left || right:
		return 0.5
	default:
		return 0.1
	}
}

// dominantShortfall picks the reason hint for a capture that failed only on
// the composite: the weakest weighted dimension.
func dominantShortfall(r Report) string {
	reason := ReasonFaceTooSmall
	worst := r.Size

	if r.Centering < worst {
		worst = r.Centering
		reason = ReasonNotCentered
	}
	if r.Pose < worst {
		worst = r.Pose
		reason = ReasonHeadTurned
	}
	if r.Eyes < worst {
		reason = ReasonEyesNotVisible
	}

	return reason
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
