package postfx

import (
	"testing"

	"github.com/gogpu/postfx/gfx"
)

func TestClassifySupport(t *testing.T) {
	cases := []struct {
		name        string
		attachments int
		want        bool
	}{
		{"no attachments", 0, false},
		{"single attachment", 1, false},
		{"two attachments", 2, true},
		{"webgpu minimum", 8, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifySupport(gfx.Capabilities{MaxColorAttachments: tc.attachments})
			if got.MultiTarget != tc.want {
				t.Errorf("MultiTarget = %v, want %v", got.MultiTarget, tc.want)
			}
		})
	}
}

func TestProbeSupportFunctionalCheck(t *testing.T) {
	// Capability advertised and working.
	ctx, err := gfx.NewSoftwareContext(16, 16)
	if err != nil {
		t.Fatalf("NewSoftwareContext: %v", err)
	}
	if got := ProbeSupport(ctx); !got.MultiTarget {
		t.Error("MultiTarget = false on a capable context")
	}

	// Capability not advertised: probe must not even attempt allocation.
	single, _ := gfx.NewSoftwareContext(16, 16, gfx.WithMaxColorAttachments(1))
	if got := ProbeSupport(single); got.MultiTarget {
		t.Error("MultiTarget = true on a single-attachment context")
	}

	// Capability advertised but allocations fail: probe must downgrade.
	broken, _ := gfx.NewSoftwareContext(16, 16, gfx.WithFailingAllocations())
	if got := ProbeSupport(broken); got.MultiTarget {
		t.Error("MultiTarget = true on a context with non-functional allocations")
	}
}
