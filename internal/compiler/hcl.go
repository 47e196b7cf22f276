package compiler

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/roach88/gearmatrix/internal/ir"
)

// hclFile is the HCL form of one or more trains:
//
//	train "reducer" {
//	  units {
//	    length = "mm"
//	  }
//	  input {
//	    rpm    = 1000
//	    torque = 10
//	  }
//	  gear {
//	    type     = "Spur"
//	    teeth    = 20
//	    radius   = 50
//	    connects = [1]
//	  }
//	  gear {
//	    teeth  = 40
//	    radius = 100
//	  }
//	}
type hclFile struct {
	Trains []hclTrain `hcl:"train,block"`
}

type hclTrain struct {
	Name  string    `hcl:"name,label"`
	Units *hclUnits `hcl:"units,block"`
	Input hclInput  `hcl:"input,block"`
	Gears []hclGear `hcl:"gear,block"`
}

type hclUnits struct {
	Length string `hcl:"length,optional"`
	Torque string `hcl:"torque,optional"`
}

type hclInput struct {
	RPM    float64 `hcl:"rpm"`
	Torque float64 `hcl:"torque"`
}

type hclGear struct {
	Type     string  `hcl:"type,optional"`
	Teeth    int     `hcl:"teeth"`
	Radius   float64 `hcl:"radius"`
	Connects []int   `hcl:"connects,optional"`
}

// DecodeHCL parses HCL source into trains. filename is used in
// diagnostics and must end in ".hcl".
func DecodeHCL(filename string, src []byte) ([]ir.TrainSpec, error) {
	var file hclFile
	if err := hclsimple.Decode(filename, src, nil, &file); err != nil {
		return nil, fmt.Errorf("failed to parse HCL: %w", err)
	}
	if len(file.Trains) == 0 {
		return nil, fmt.Errorf("no train block found in %s", filename)
	}

	trains := make([]ir.TrainSpec, 0, len(file.Trains))
	for _, t := range file.Trains {
		rpm, torque := t.Input.RPM, t.Input.Torque
		doc := TrainDocument{
			Name:  t.Name,
			Input: DocumentInput{RPM: &rpm, Torque: &torque},
			Gears: make([]DocumentGear, len(t.Gears)),
		}
		if t.Units != nil {
			doc.Units = DocumentUnits{Length: t.Units.Length, Torque: t.Units.Torque}
		}
		for i, g := range t.Gears {
			doc.Gears[i] = DocumentGear(g)
		}

		spec, err := doc.Spec(t.Name)
		if err != nil {
			return nil, fmt.Errorf("train %q: %w", t.Name, err)
		}
		trains = append(trains, spec)
	}
	return trains, nil
}
