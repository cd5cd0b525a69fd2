package main

import (
	"strconv"
	"strings"
)

// CoverFit scales an imgW x imgH image so that it completely covers a boxW x
// boxH box while preserving its aspect ratio. The excess is cropped by the
// caller's clip. boxH must be positive.
func CoverFit(imgW, imgH, boxW, boxH float64) (drawW, drawH float64) {
	imgAspect := imgW / imgH
	boxAspect := boxW / boxH
	if imgAspect > boxAspect {
		return boxH * imgAspect, boxH
	}
	return boxW, boxW / imgAspect
}

// ContainScale gives the zoom, relative to the cover fit at scale 1, at which
// the whole image becomes visible inside the slot. It is never above 1.
func ContainScale(imgAspect, slotAspect float64) float64 {
	if imgAspect > slotAspect {
		return slotAspect / imgAspect
	}
	return imgAspect / slotAspect
}

// Ratio is the slot shape chosen for a stitch item.
type Ratio string

const (
	RatioOriginal  Ratio = "original"
	RatioSquare    Ratio = "1:1"
	RatioLandscape Ratio = "4:3"
	RatioPortrait  Ratio = "3:4"
	RatioWide      Ratio = "16:9"
	RatioTall      Ratio = "9:16"
)

func ParseRatio(s string) (Ratio, error) {
	switch r := Ratio(s); r {
	case RatioOriginal, RatioSquare, RatioLandscape, RatioPortrait, RatioWide, RatioTall:
		return r, nil
	case "":
		return RatioOriginal, nil
	default:
		return "", invalidf("unknown ratio %q", s)
	}
}

// Aspect is the width/height of a slot with this ratio holding an image of
// the given aspect.
func (r Ratio) Aspect(imgAspect float64) (float64, error) {
	if r == RatioOriginal || r == "" {
		return imgAspect, nil
	}
	w, h, ok := strings.Cut(string(r), ":")
	if !ok {
		return 0, invalidf("malformed ratio %q", r)
	}
	wf, errW := strconv.ParseFloat(w, 64)
	hf, errH := strconv.ParseFloat(h, 64)
	if errW != nil || errH != nil || wf <= 0 || hf <= 0 {
		return 0, invalidf("malformed ratio %q", r)
	}
	return wf / hf, nil
}

func (r Ratio) String() string {
	if r == "" {
		return string(RatioOriginal)
	}
	return string(r)
}
