package ir

import (
	"fmt"
	"slices"
	"strings"
)

// GearType identifies the kind of gear.
type GearType string

const (
	Spur        GearType = "Spur"
	Helical     GearType = "Helical"
	Bevel       GearType = "Bevel"
	Miter       GearType = "Miter"
	SpiralBevel GearType = "Spiral Bevel"
	Worm        GearType = "Worm"
	Rack        GearType = "Rack"
	Internal    GearType = "Internal"
)

// gearTypes lists every gear type in display order.
var gearTypes = []GearType{Spur, Helical, Bevel, Miter, SpiralBevel, Worm, Rack, Internal}

// validTransitions maps a driving gear type to the types it may drive.
// Rack is terminal.
var validTransitions = map[GearType][]GearType{
	Spur:        {Spur, Helical, Rack, Internal},
	Helical:     {Spur, Helical, Rack, Internal},
	Bevel:       {Bevel, Miter, SpiralBevel},
	Miter:       {Bevel, Miter},
	SpiralBevel: {Bevel, SpiralBevel},
	Worm:        {Spur},
	Rack:        {},
	Internal:    {Spur, Helical},
}

// GearTypes returns all known gear types in display order.
func GearTypes() []GearType {
	return slices.Clone(gearTypes)
}

// Valid reports whether t is a known gear type.
func (t GearType) Valid() bool {
	_, ok := validTransitions[t]
	return ok
}

// String returns the display name.
func (t GearType) String() string {
	return string(t)
}

// AllowedSuccessors returns the gear types t may drive.
// The returned slice is a copy; callers may modify it.
func (t GearType) AllowedSuccessors() []GearType {
	return slices.Clone(validTransitions[t])
}

// CanDrive reports whether a gear of type t may drive a gear of type next.
func (t GearType) CanDrive(next GearType) bool {
	return slices.Contains(validTransitions[t], next)
}

// ParseGearType resolves a user-supplied type name.
// Matching ignores case, and "-" or "_" stand in for the space in
// "Spiral Bevel".
func ParseGearType(s string) (GearType, error) {
	want := normalizeTypeName(s)
	for _, t := range gearTypes {
		if normalizeTypeName(string(t)) == want {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown gear type %q", s)
}

func normalizeTypeName(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
