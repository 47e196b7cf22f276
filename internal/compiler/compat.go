package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/gearmatrix/internal/ir"
)

// CompatMode controls how type-compatibility violations are handled.
type CompatMode string

const (
	// CompatOff skips the compatibility check.
	CompatOff CompatMode = "off"

	// CompatWarn reports violations as warnings and continues.
	CompatWarn CompatMode = "warn"

	// CompatStrict rejects the train with an IncompatibleTypes error.
	CompatStrict CompatMode = "strict"
)

// ValidCompatModes lists the accepted compatibility modes.
var ValidCompatModes = []CompatMode{CompatOff, CompatWarn, CompatStrict}

// ParseCompatMode resolves a mode name. An empty name means CompatWarn.
func ParseCompatMode(s string) (CompatMode, error) {
	if s == "" {
		return CompatWarn, nil
	}
	for _, m := range ValidCompatModes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid compatibility mode %q: must be one of %v", s, ValidCompatModes)
}

// CheckCompatibility reports every edge whose driven gear type is not an
// allowed successor of the driving gear type. Edges are visited in
// gear-index then declaration order.
func CheckCompatibility(gears []ir.GearSpec, g *ir.Graph) []ir.CompatWarning {
	var warnings []ir.CompatWarning

	for _, edge := range g.Edges() {
		from, to := gears[edge[0]], gears[edge[1]]
		if from.Type.CanDrive(to.Type) {
			continue
		}
		warnings = append(warnings, ir.CompatWarning{
			From:     from.Index,
			To:       to.Index,
			FromType: from.Type,
			ToType:   to.Type,
			Message: fmt.Sprintf("%s gear %d cannot drive %s gear %d (allowed: %s)",
				from.Type, from.Index, to.Type, to.Index, describeSuccessors(from.Type)),
			Level: "warning",
		})
	}

	return warnings
}

func describeSuccessors(t ir.GearType) string {
	succ := t.AllowedSuccessors()
	if len(succ) == 0 {
		return "none"
	}
	names := make([]string, len(succ))
	for i, s := range succ {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
