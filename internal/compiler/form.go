package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/gearmatrix/internal/ir"
)

// ParseGearRow parses one form-style gear row "TYPE:TEETH:RADIUS[:CONN,...]"
// for the gear at the given index, e.g. "Spur:20:50:1,2".
// Parse failures are InvalidValue errors; range checks happen in BuildGraph.
func ParseGearRow(index int, row string) (ir.GearSpec, error) {
	parts := strings.SplitN(row, ":", 4)
	if len(parts) < 3 {
		return ir.GearSpec{}, NewInvalidValueError(index,
			"gear %d: expected TYPE:TEETH:RADIUS[:CONNECTIONS], got %q", index, row)
	}

	gearType, err := ir.ParseGearType(parts[0])
	if err != nil {
		return ir.GearSpec{}, NewInvalidValueError(index, "gear %d: %v", index, err)
	}

	teeth, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return ir.GearSpec{}, NewInvalidValueError(index,
			"gear %d: teeth %q is not an integer", index, parts[1])
	}

	radius, err := ParseNumber(parts[2])
	if err != nil {
		return ir.GearSpec{}, NewInvalidValueError(index,
			"gear %d: radius %q is not a number", index, parts[2])
	}

	gear := ir.GearSpec{
		Index:  index,
		Type:   gearType,
		Teeth:  teeth,
		Radius: radius,
	}

	if len(parts) == 4 {
		conns, err := ParseConnections(parts[3])
		if err != nil {
			return ir.GearSpec{}, NewInvalidValueError(index, "gear %d: %v", index, err)
		}
		gear.Connections = conns
	}

	return gear, nil
}

// ParseConnections parses a comma-separated list of gear indices.
// Blank entries are ignored, so "" and "1,,2" are accepted.
func ParseConnections(s string) ([]int, error) {
	var conns []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("connection %q is not a gear index", field)
		}
		conns = append(conns, n)
	}
	return conns, nil
}

// ParseNumber parses a finite decimal number from form input.
func ParseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if !isFinite(f) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}

// ParseForm builds a TrainSpec from form-style strings: one row per gear,
// root RPM and root torque. Units are left for the caller to set.
func ParseForm(rows []string, rpm, torque string) (ir.TrainSpec, error) {
	spec := ir.TrainSpec{Gears: make([]ir.GearSpec, 0, len(rows))}

	for i, row := range rows {
		gear, err := ParseGearRow(i, row)
		if err != nil {
			return ir.TrainSpec{}, err
		}
		spec.Gears = append(spec.Gears, gear)
	}

	r, err := ParseNumber(rpm)
	if err != nil {
		return ir.TrainSpec{}, NewInvalidValueError(-1, "RPM %q is not a number", rpm)
	}
	spec.RootRPM = r

	t, err := ParseNumber(torque)
	if err != nil {
		return ir.TrainSpec{}, NewInvalidValueError(-1, "torque %q is not a number", torque)
	}
	spec.RootTorque = t

	return spec, nil
}
