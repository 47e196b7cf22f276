// Package report renders calculation results for people.
//
// The text layout lists every transmission in traversal order, then the
// final gear, the module of every gear, any compatibility warnings, and the
// per-gear speed and torque series:
//
//	Gear 0 → Gear 1: Ratio 2.00, RPM 2000.00, Torque 5.00, Efficiency: 100.00%
//
//	★ Final Gear 1:
//	    RPM: 2000.00 RPM
//	    Torque: 5.00 Nm
//
//	★ Module Calculations:
//	    Gear 0: Module = 2.50 mm
//	    Gear 1: Module = 2.50 mm
//
// Results are in base units (mm, Nm); Options selects the units shown.
package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/roach88/gearmatrix/internal/ir"
	"github.com/roach88/gearmatrix/internal/units"
)

// Options selects display units. Empty names mean the base units.
type Options struct {
	LengthUnit string
	TorqueUnit string
}

// resolve returns the canonical display unit names.
func (o Options) resolve() (length, torque string, err error) {
	length, torque = units.BaseLength, units.BaseTorque
	if o.LengthUnit != "" {
		if length, err = units.CanonicalLength(o.LengthUnit); err != nil {
			return "", "", err
		}
	}
	if o.TorqueUnit != "" {
		if torque, err = units.CanonicalTorque(o.TorqueUnit); err != nil {
			return "", "", err
		}
	}
	return length, torque, nil
}

// Text writes the text report of r to w.
func Text(w io.Writer, r *ir.Result, opts Options) error {
	lengthUnit, torqueUnit, err := opts.resolve()
	if err != nil {
		return err
	}
	torque := func(nm float64) float64 {
		v, _ := units.FromBaseTorque(nm, torqueUnit)
		return v
	}

	var buf bytes.Buffer

	for _, ev := range r.Events {
		fmt.Fprintf(&buf, "Gear %d → Gear %d: Ratio %.2f, RPM %.2f, Torque %.2f, Efficiency: %.2f%%\n",
			ev.From, ev.To, ev.GearRatio, ev.Speed, torque(ev.Torque), ev.Efficiency*100)
	}
	if len(r.Events) > 0 {
		buf.WriteString("\n")
	}

	if len(r.States) > 0 {
		fmt.Fprintf(&buf, "★ Final Gear %d:\n", r.Final.Index)
		fmt.Fprintf(&buf, "    RPM: %.2f RPM\n", r.Final.Speed)
		fmt.Fprintf(&buf, "    Torque: %.2f %s\n", torque(r.Final.Torque), torqueUnit)
		buf.WriteString("\n")
	}

	buf.WriteString("★ Module Calculations:\n")
	for i, m := range r.Modules() {
		module, _ := units.FromBaseLength(m, lengthUnit)
		fmt.Fprintf(&buf, "    Gear %d: Module = %.2f %s\n", i, module, lengthUnit)
	}

	if len(r.Warnings) > 0 {
		buf.WriteString("\n★ Compatibility Warnings:\n")
		for _, warn := range r.Warnings {
			fmt.Fprintf(&buf, "    %s\n", warn.Message)
		}
	}

	buf.WriteString("\n★ Gearwise RPM & Torque:\n")
	for _, s := range r.States {
		if !s.Reached() {
			fmt.Fprintf(&buf, "    Gear %d: not driven\n", s.Index)
			continue
		}
		fmt.Fprintf(&buf, "    Gear %d: RPM %.2f, Torque %.2f %s\n",
			s.Index, *s.Speed, torque(*s.Torque), torqueUnit)
	}

	_, err = w.Write(buf.Bytes())
	return err
}

// TextString returns the text report of r.
func TextString(r *ir.Result, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := Text(&buf, r, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}
