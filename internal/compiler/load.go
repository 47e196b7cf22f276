package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/gearmatrix/internal/ir"
)

// TrainFileExtensions lists the file extensions LoadTrainFile understands.
var TrainFileExtensions = []string{".cue", ".yaml", ".yml", ".json", ".hcl"}

// IsTrainFile reports whether path has a train file extension.
func IsTrainFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range TrainFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadTrainFile reads every train in a file. The format follows the
// extension. Unnamed trains are named after the file.
func LoadTrainFile(path string) ([]ir.TrainSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read train file: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		v := cuecontext.New().CompileBytes(data, cue.Filename(path))
		return CompileTrains(v)
	case ".yaml", ".yml", ".json":
		return DecodeYAML(data, base)
	case ".hcl":
		return DecodeHCL(path, data)
	default:
		return nil, fmt.Errorf("unsupported train file extension %q: must be one of %v",
			filepath.Ext(path), TrainFileExtensions)
	}
}
