package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gearmatrix/internal/units"
)

// UnitInfo describes one supported unit.
type UnitInfo struct {
	Name   string  `json:"name"`
	Factor float64 `json:"factor"` // size of one unit in the base unit
}

// UnitsOutput lists the supported units.
type UnitsOutput struct {
	BaseLength string     `json:"base_length"`
	BaseTorque string     `json:"base_torque"`
	Length     []UnitInfo `json:"length"`
	Torque     []UnitInfo `json:"torque"`
}

// NewUnitsCommand creates the units command.
func NewUnitsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "units",
		Short: "List supported length and torque units",
		Long: `List the length and torque units accepted in train files and form
input, with their size in the base units (mm and Nm). Unit names match
case-insensitively.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnits(newFormatter(rootOpts, cmd))
		},
	}
}

func runUnits(formatter *OutputFormatter) error {
	out := UnitsOutput{
		BaseLength: units.BaseLength,
		BaseTorque: units.BaseTorque,
	}
	for _, name := range units.LengthUnits() {
		f, _ := units.LengthFactor(name)
		out.Length = append(out.Length, UnitInfo{Name: name, Factor: f})
	}
	for _, name := range units.TorqueUnits() {
		f, _ := units.TorqueFactor(name)
		out.Torque = append(out.Torque, UnitInfo{Name: name, Factor: f})
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "Length units:")
	for _, u := range out.Length {
		fmt.Fprintf(w, "    %-7s = %g %s\n", u.Name, u.Factor, out.BaseLength)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Torque units:")
	for _, u := range out.Torque {
		fmt.Fprintf(w, "    %-7s = %g %s\n", u.Name, u.Factor, out.BaseTorque)
	}
	return nil
}
