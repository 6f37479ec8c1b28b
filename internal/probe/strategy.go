// Package probe sequences candidate command frames across the classified
// interfaces of the device. The authoritative command format is unknown, so
// every strategy here is speculative: frames are sent, never trusted, and
// success is only asserted later from device-originated evidence.
package probe

import (
	"github.com/Alia5/razerctl/internal/protocol"
)

// FrameKind selects how a candidate frame reaches the device.
type FrameKind int

const (
	FrameOutput FrameKind = iota
	FrameFeature
	FrameProperty
)

// Frame is one candidate to try against one interface. For Output/Feature
// frames Data carries the literal report bytes; for Property frames Key and
// Value name a device-level property write.
type Frame struct {
	Strategy string
	Kind     FrameKind
	Data     []byte
	Key      string
	Value    int
}

// Strategy generates candidate frames for a command against one classified
// interface. A strategy that does not apply returns an empty list.
type Strategy interface {
	Name() string
	Frames(cmd protocol.Command, iface protocol.ClassifiedInterface) []Frame
}

// DefaultStrategies returns the full probe catalog in send order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		fragmentStrategy{},
		shortCommandStrategy{},
		featureReportStrategy{},
		propertyStrategy{},
	}
}

// fragmentStrategy carries the full logical command over the output pipe.
// When the interface's maximum output report is smaller than the command it
// is split into 1- or 2-byte frames preserving order; the engine spaces them
// with the inter-frame delay instead of one atomic write.
type fragmentStrategy struct{}

func (fragmentStrategy) Name() string { return "fragment" }

func (fragmentStrategy) Frames(cmd protocol.Command, iface protocol.ClassifiedInterface) []Frame {
	maxOut := iface.MaxOutputReportSize
	if maxOut <= 0 {
		return nil
	}

	logical := protocol.LogicalCommand(cmd)
	size := maxOut
	if size >= len(logical) {
		size = len(logical)
	} else if size > 2 {
		// mid-sized pipes are covered by the short-command strategy
		return nil
	}

	var out []Frame
	for _, chunk := range protocol.Fragment(logical, size) {
		out = append(out, Frame{Strategy: "fragment", Kind: FrameOutput, Data: chunk})
	}
	return out
}

// shortCommandStrategy tries abbreviated encodings: single bytes and pairs
// built from the command's constituent bytes.
type shortCommandStrategy struct{}

func (shortCommandStrategy) Name() string { return "short" }

func (shortCommandStrategy) Frames(cmd protocol.Command, iface protocol.ClassifiedInterface) []Frame {
	maxOut := iface.MaxOutputReportSize
	if maxOut <= 0 {
		return nil
	}

	var out []Frame
	for _, data := range protocol.ShortPermutations(cmd) {
		if len(data) > maxOut {
			continue
		}
		out = append(out, Frame{Strategy: "short", Kind: FrameOutput, Data: data})
	}
	return out
}

// featureReportStrategy sends one full logical frame padded (and on the
// 90-byte layout, checksummed) to the interface's declared feature size.
type featureReportStrategy struct{}

func (featureReportStrategy) Name() string { return "feature" }

func (featureReportStrategy) Frames(cmd protocol.Command, iface protocol.ClassifiedInterface) []Frame {
	if !iface.Roles.Has(protocol.RoleFeatureCapable) {
		return nil
	}
	data := protocol.FeatureFrame(cmd, iface.MaxFeatureReportSize)
	return []Frame{{Strategy: "feature", Kind: FrameFeature, Data: data}}
}

// propertyStrategy bypasses report framing and tries to set device-level
// named properties to the target value. Best effort; most backends reject it.
type propertyStrategy struct{}

func (propertyStrategy) Name() string { return "property" }

func (propertyStrategy) Frames(cmd protocol.Command, _ protocol.ClassifiedInterface) []Frame {
	var out []Frame
	for _, key := range protocol.PropertyKeys(cmd.Field) {
		out = append(out, Frame{Strategy: "property", Kind: FrameProperty, Key: key, Value: cmd.Value})
	}
	return out
}
