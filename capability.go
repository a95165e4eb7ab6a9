package postfx

import (
	"github.com/gogpu/postfx/gfx"
)

// Support is the pipeline's view of what a context can actually do.
type Support struct {
	// MultiTarget reports working support for multiple simultaneous
	// color attachments on one render target.
	MultiTarget bool
}

// ClassifySupport derives Support from raw context capabilities. It is a
// pure function of its input, so it can be unit-tested against any
// capability combination without a real graphics context.
func ClassifySupport(caps gfx.Capabilities) Support {
	return Support{
		MultiTarget: caps.MaxColorAttachments >= 2,
	}
}

// ProbeSupport classifies capabilities and then verifies the result
// functionally: capability flags can be present without working support,
// so a trivial two-attachment target is allocated and immediately
// discarded. A failed allocation downgrades MultiTarget.
//
// The probe runs once per context attach; the result is cached by the
// Composer and never re-probed unless the context is replaced.
func ProbeSupport(ctx gfx.Context) Support {
	s := ClassifySupport(ctx.Capabilities())
	if !s.MultiTarget {
		return s
	}
	probe, err := ctx.NewTarget(gfx.TargetDescriptor{
		Label:            "mrt-probe",
		Width:            2,
		Height:           2,
		ColorAttachments: 2,
	})
	if err != nil {
		Logger().Warn("multi-target capability advertised but not functional",
			"err", err)
		s.MultiTarget = false
		return s
	}
	probe.Dispose()
	return s
}
