package protocol

import (
	"strings"

	"github.com/Alia5/razerctl/internal/hidio"
)

// Role is one capability an interface can be routed by. An interface may
// hold several roles at once; FeatureCapable in particular stacks on top of
// the two primary roles.
type Role uint8

const (
	RolePrimaryCommand Role = 1 << iota
	RoleInputReport
	RoleFeatureCapable
)

// RoleSet is the capability set derived from an interface's descriptors.
// The zero value means unclassified.
type RoleSet uint8

func (s RoleSet) Has(r Role) bool { return uint8(s)&uint8(r) != 0 }

func (s RoleSet) String() string {
	if s == 0 {
		return "unclassified"
	}
	var parts []string
	if s.Has(RolePrimaryCommand) {
		parts = append(parts, "primaryCommand")
	}
	if s.Has(RoleInputReport) {
		parts = append(parts, "inputReport")
	}
	if s.Has(RoleFeatureCapable) {
		parts = append(parts, "featureCapable")
	}
	return strings.Join(parts, "+")
}

// minFeatureSize is the smallest feature report that can carry the 6-byte
// logical command.
const minFeatureSize = 6

// Classify derives the capability set for one interface. It never fails;
// missing descriptor metadata reads as zero and degrades to unclassified.
func Classify(iface hidio.Interface) RoleSet {
	var s RoleSet

	switch {
	case iface.UsagePage == UsagePageGenericDesktop && iface.Usage == UsageMouse:
		s |= RoleSet(RolePrimaryCommand)
	case iface.UsagePage == UsagePageVendor && iface.Usage == UsageVendorControl &&
		iface.MaxInputReportSize >= 2 && iface.MaxOutputReportSize >= 1:
		s |= RoleSet(RoleInputReport)
	}

	if iface.MaxFeatureReportSize >= minFeatureSize {
		s |= RoleSet(RoleFeatureCapable)
	}

	return s
}

// ClassifiedInterface pairs an interface with its derived roles.
type ClassifiedInterface struct {
	hidio.Interface
	Roles RoleSet
}

// ClassifyAll classifies every interface and orders the result for probing:
// vendor usage pages first, then lower interface numbers. An interface whose
// path equals preferPath is moved to the front regardless (last known good
// interface from the cached profile).
func ClassifyAll(ifaces []hidio.Interface, preferPath string) []ClassifiedInterface {
	out := make([]ClassifiedInterface, 0, len(ifaces))
	for _, iface := range ifaces {
		out = append(out, ClassifiedInterface{Interface: iface, Roles: Classify(iface)})
	}

	// insertion sort keeps the enumeration order stable within each rank
	rank := func(c ClassifiedInterface) int {
		r := c.Number
		if c.UsagePage < UsagePageVendor {
			r += 1 << 16
		}
		return r
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && rank(out[j]) < rank(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}

	if preferPath != "" {
		for i := range out {
			if out[i].Path == preferPath && i != 0 {
				c := out[i]
				copy(out[1:i+1], out[0:i])
				out[0] = c
				break
			}
		}
	}

	// At most one interface may hold each primary role; later duplicates
	// keep only their remaining capabilities.
	var sawPrimary, sawInput bool
	for i := range out {
		if out[i].Roles.Has(RolePrimaryCommand) {
			if sawPrimary {
				out[i].Roles &^= RoleSet(RolePrimaryCommand)
			}
			sawPrimary = true
		}
		if out[i].Roles.Has(RoleInputReport) {
			if sawInput {
				out[i].Roles &^= RoleSet(RoleInputReport)
			}
			sawInput = true
		}
	}
	return out
}
