package compiler

import (
	"fmt"

	"github.com/roach88/gearmatrix/internal/ir"
)

// TrainDocument is the YAML/JSON form of a train. Scenario files embed it
// inline under "train".
//
//	name: reducer
//	units: {length: mm, torque: Nm}
//	input: {rpm: 1000, torque: 10}
//	gears:
//	  - {type: Spur, teeth: 20, radius: 50, connects: [1]}
//	  - {type: Spur, teeth: 40, radius: 100}
type TrainDocument struct {
	Name  string         `yaml:"name,omitempty" json:"name,omitempty"`
	Units DocumentUnits  `yaml:"units,omitempty" json:"units,omitempty"`
	Input DocumentInput  `yaml:"input" json:"input"`
	Gears []DocumentGear `yaml:"gears" json:"gears"`
}

// DocumentUnits names the units radius and torque are written in.
type DocumentUnits struct {
	Length string `yaml:"length,omitempty" json:"length,omitempty"`
	Torque string `yaml:"torque,omitempty" json:"torque,omitempty"`
}

// DocumentInput is the root gear drive. Both fields are required.
type DocumentInput struct {
	RPM    *float64 `yaml:"rpm" json:"rpm"`
	Torque *float64 `yaml:"torque" json:"torque"`
}

// DocumentGear is one gear; its list position is its index.
type DocumentGear struct {
	Type     string  `yaml:"type,omitempty" json:"type,omitempty"` // defaults to Spur
	Teeth    int     `yaml:"teeth" json:"teeth"`
	Radius   float64 `yaml:"radius" json:"radius"`
	Connects []int   `yaml:"connects,omitempty" json:"connects,omitempty"`
}

// Spec converts the document into a TrainSpec. defaultName is used when
// the document has no name.
func (d TrainDocument) Spec(defaultName string) (ir.TrainSpec, error) {
	spec := ir.TrainSpec{
		Name:  d.Name,
		Units: ir.Units{Length: d.Units.Length, Torque: d.Units.Torque},
	}
	if spec.Name == "" {
		spec.Name = defaultName
	}

	if d.Input.RPM == nil {
		return ir.TrainSpec{}, fmt.Errorf("input.rpm is required")
	}
	if d.Input.Torque == nil {
		return ir.TrainSpec{}, fmt.Errorf("input.torque is required")
	}
	spec.RootRPM = *d.Input.RPM
	spec.RootTorque = *d.Input.Torque

	spec.Gears = make([]ir.GearSpec, len(d.Gears))
	for i, g := range d.Gears {
		gearType := ir.Spur
		if g.Type != "" {
			t, err := ir.ParseGearType(g.Type)
			if err != nil {
				return ir.TrainSpec{}, fmt.Errorf("gears[%d].type: %w", i, err)
			}
			gearType = t
		}
		spec.Gears[i] = ir.GearSpec{
			Index:       i,
			Type:        gearType,
			Teeth:       g.Teeth,
			Radius:      g.Radius,
			Connections: append([]int(nil), g.Connects...),
		}
	}

	return spec, nil
}
