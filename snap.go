package main

import (
	"math"
	"sync"
	"time"
)

const (
	snapThreshold = 0.05
	snapEpsilon   = 1e-9
	pulseDebounce = 150 * time.Millisecond
)

type SnapTarget int

const (
	SnapNone SnapTarget = iota
	SnapCover
	SnapContain
)

func (t SnapTarget) String() string {
	switch t {
	case SnapCover:
		return "cover"
	case SnapContain:
		return "contain"
	default:
		return "none"
	}
}

func (t SnapTarget) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

type SnapDecision struct {
	Scale  float64
	Target SnapTarget
}

// Snap applies a zoom delta to current and pulls the result onto the cover
// (1.0) or contain scale when it lands within snapThreshold of either. Cover
// wins ties.
func Snap(current, delta, imgAspect, slotAspect float64) SnapDecision {
	scale := clamp(current+delta, minStitchScale, maxStitchScale)
	const cover = 1.0
	contain := ContainScale(imgAspect, slotAspect)

	toCover := math.Abs(scale - cover)
	toContain := math.Abs(scale - contain)
	switch {
	case toCover < snapThreshold && toCover <= toContain:
		return SnapDecision{Scale: cover, Target: SnapCover}
	case toContain < snapThreshold:
		return SnapDecision{Scale: contain, Target: SnapContain}
	default:
		return SnapDecision{Scale: scale, Target: SnapNone}
	}
}

// SnapAssist drives zoom of one item during a gesture. Each time the scale
// jumps onto a snap point it calls Feedback, at most once per pulseDebounce.
type SnapAssist struct {
	Feedback func()
	Now      func() time.Time

	mu        sync.Mutex
	lastPulse time.Time
}

func NewSnapAssist(feedback func()) *SnapAssist {
	return &SnapAssist{Feedback: feedback, Now: time.Now}
}

// Zoom applies delta to item. A snapped item is re-centered. It reports what
// the scale snapped to.
func (a *SnapAssist) Zoom(item *StitchItem, delta, imgAspect, slotAspect float64) SnapTarget {
	prev := item.Scale
	d := Snap(prev, delta, imgAspect, slotAspect)
	item.Scale = d.Scale
	if d.Target == SnapNone {
		return SnapNone
	}
	item.X, item.Y = 0, 0
	if math.Abs(prev-d.Scale) > snapEpsilon {
		a.pulse()
	}
	return d.Target
}

func (a *SnapAssist) pulse() {
	a.mu.Lock()
	now := a.Now()
	if !a.lastPulse.IsZero() && now.Sub(a.lastPulse) < pulseDebounce {
		a.mu.Unlock()
		return
	}
	a.lastPulse = now
	a.mu.Unlock()
	if a.Feedback != nil {
		a.Feedback()
	}
}
