package postfx

import (
	"math"
	"testing"
)

func TestResolutionScaleRoundTrip(t *testing.T) {
	cases := []struct {
		w, h  int
		scale float64
	}{
		{1920, 1080, 1.0},
		{1920, 1080, 0.5},
		{1280, 720, 0.75},
		{333, 777, 0.1},
		{100, 100, 0.333},
	}
	for _, tc := range cases {
		r := NewResolution(tc.w, tc.h, tc.scale)
		wantW := int(math.Round(float64(tc.w) * tc.scale))
		wantH := int(math.Round(float64(tc.h) * tc.scale))
		if r.Width() != wantW || r.Height() != wantH {
			t.Errorf("size(%dx%d, %v) = %dx%d, want %dx%d",
				tc.w, tc.h, tc.scale, r.Width(), r.Height(), wantW, wantH)
		}
	}
}

func TestResolutionNeverBecomesZero(t *testing.T) {
	r := NewResolution(3, 3, 0.1)
	if r.Width() < 1 || r.Height() < 1 {
		t.Errorf("size = %dx%d, want at least 1x1", r.Width(), r.Height())
	}
}

func TestResolutionPreferredOverridesScale(t *testing.T) {
	r := NewResolution(1000, 1000, 0.5)
	r.SetPreferredSize(320, 240)

	if r.Width() != 320 || r.Height() != 240 {
		t.Errorf("size = %dx%d, want 320x240", r.Width(), r.Height())
	}

	r.SetPreferredSize(AutoSize, AutoSize)
	if r.Width() != 500 || r.Height() != 500 {
		t.Errorf("size = %dx%d after AutoSize, want 500x500", r.Width(), r.Height())
	}
}

func TestResolutionInvalidScaleClamped(t *testing.T) {
	r := NewResolution(100, 100, -2)
	if r.Scale() != 1 {
		t.Errorf("Scale() = %v, want 1 for invalid input", r.Scale())
	}
	r.SetScale(4)
	if r.Scale() != 1 {
		t.Errorf("Scale() = %v after SetScale(4), want 1", r.Scale())
	}
}

func TestResolutionListenerFiresOnChange(t *testing.T) {
	r := NewResolution(100, 100, 1)
	fired := 0
	r.AddListener(func(*Resolution) { fired++ })

	r.SetBaseSize(200, 100)
	if fired != 1 {
		t.Errorf("listener fired %d times after base change, want 1", fired)
	}

	// No effective change: same size again.
	r.SetBaseSize(200, 100)
	if fired != 1 {
		t.Errorf("listener fired %d times after no-op change, want 1", fired)
	}

	r.SetScale(0.5)
	if fired != 2 {
		t.Errorf("listener fired %d times after scale change, want 2", fired)
	}
}
