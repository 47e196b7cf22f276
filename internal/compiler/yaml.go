package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gearmatrix/internal/ir"
)

// DecodeYAML parses one or more YAML documents (separated by "---") into
// trains. JSON input is accepted as well. Unknown fields are rejected.
// Unnamed trains are called defaultName, or defaultName-N after the first.
func DecodeYAML(data []byte, defaultName string) ([]ir.TrainSpec, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields

	var trains []ir.TrainSpec
	for n := 1; ; n++ {
		var doc TrainDocument
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}

		name := defaultName
		if n > 1 {
			name = fmt.Sprintf("%s-%d", defaultName, n)
		}
		spec, err := doc.Spec(name)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", n, err)
		}
		trains = append(trains, spec)
	}

	if len(trains) == 0 {
		return nil, fmt.Errorf("no train found in YAML input")
	}
	return trains, nil
}
