package encoder

import (
	"fmt"
	"strings"
	"sync"

	"github.com/AnyUserName/imgpress/internal/extcodec"
	"github.com/AnyUserName/imgpress/internal/format"
)

// Options overrides the PATH lookup of the external encoders.
type Options struct {
	CwebpPath   string
	AvifencPath string
}

// Capabilities describes what the installed codec tools can do.
// PNG and JPEG are always available.
type Capabilities struct {
	WebP         bool
	AVIF         bool
	AVIFLossless bool
}

func (c Capabilities) and(o Capabilities) Capabilities {
	return Capabilities{
		WebP:         c.WebP && o.WebP,
		AVIF:         c.AVIF && o.AVIF,
		AVIFLossless: c.AVIFLossless && o.AVIFLossless,
	}
}

type probe struct {
	once sync.Once
	caps Capabilities
}

// Registry holds the encoders and what the host can run. Safe for
// concurrent use.
type Registry struct {
	cwebp   *extcodec.Tool
	avifenc *extcodec.Tool

	probe *probe
	mask  *Capabilities
}

// New creates a registry. Tools are probed on first use.
func New(opts Options) *Registry {
	return &Registry{
		cwebp:   extcodec.NewTool("cwebp", opts.CwebpPath),
		avifenc: extcodec.NewTool("avifenc", opts.AvifencPath),
		probe:   &probe{},
	}
}

// Capabilities probes the external tools once and returns the result,
// narrowed by Restrict if set.
func (r *Registry) Capabilities() Capabilities {
	r.probe.once.Do(func() {
		r.probe.caps.WebP = r.cwebp.Available()
		r.probe.caps.AVIF = r.avifenc.Available()
		// Older libavif builds have no lossless switch.
		r.probe.caps.AVIFLossless = r.probe.caps.AVIF && r.avifenc.HelpMentions("--lossless")
	})
	caps := r.probe.caps
	if r.mask != nil {
		caps = caps.and(*r.mask)
	}
	return caps
}

// Restrict returns a registry that never reports more than c. The tools
// and the probe result are shared with r.
func (r *Registry) Restrict(c Capabilities) *Registry {
	if r.mask != nil {
		c = c.and(*r.mask)
	}
	return &Registry{cwebp: r.cwebp, avifenc: r.avifenc, probe: r.probe, mask: &c}
}

// Supports reports whether f can be produced, with or without lossless.
func (r *Registry) Supports(f format.Format, lossless bool) bool {
	if !f.Encodable() {
		return false
	}
	return r.check(f, lossless) == nil
}

// Available returns the encodable formats in priority order.
func (r *Registry) Available() []format.Format {
	var result []format.Format
	for _, f := range format.Targets() {
		if r.Supports(f, false) {
			result = append(result, f)
		}
	}
	return result
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	avail := r.Available()
	names := make([]string, len(avail))
	for i, f := range avail {
		names[i] = f.String()
	}
	return fmt.Sprintf("encoders: %s", strings.Join(names, ", "))
}
