package report

import (
	"github.com/roach88/gearmatrix/internal/ir"
	"github.com/roach88/gearmatrix/internal/units"
)

// Series is one line of the gearwise chart: a value per gear index.
// Gears that were never driven plot as 0.
type Series struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Chart returns the speed and torque series of r, torque in the display
// unit of opts.
func Chart(r *ir.Result, opts Options) ([]Series, error) {
	_, torqueUnit, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	torques := r.TorqueSeries()
	for i, nm := range torques {
		if torques[i], err = units.FromBaseTorque(nm, torqueUnit); err != nil {
			return nil, err
		}
	}

	return []Series{
		{Label: "RPM", Values: r.SpeedSeries()},
		{Label: "Torque (" + torqueUnit + ")", Values: torques},
	}, nil
}
