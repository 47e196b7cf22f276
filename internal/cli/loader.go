package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue/token"

	"github.com/roach88/gearmatrix/internal/compiler"
	"github.com/roach88/gearmatrix/internal/ir"
)

// LoadedTrain is a train together with the file it came from.
type LoadedTrain struct {
	File  string
	Train ir.TrainSpec
}

// LoadError represents an error that occurred while loading train files.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadTrains loads every train from the given paths. A path may be a
// train file or a directory, which is searched recursively for train
// files. Trains keep path order, then file order within a directory.
// Loading stops at the first error.
func LoadTrains(paths []string) ([]LoadedTrain, error) {
	var loaded []LoadedTrain

	for _, path := range paths {
		files, err := resolveTrainFiles(path)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			trains, err := compiler.LoadTrainFile(file)
			if err != nil {
				return nil, convertLoadError(err, file)
			}
			for _, t := range trains {
				loaded = append(loaded, LoadedTrain{File: file, Train: t})
			}
		}
	}

	return loaded, nil
}

// resolveTrainFiles expands a path into train files.
func resolveTrainFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing path: %v", err)}
	}

	if !info.IsDir() {
		if !compiler.IsTrainFile(path) {
			return nil, &LoadError{
				Code:    ErrCodeLoadFailed,
				Message: fmt.Sprintf("%s: not a train file (want one of %v)", path, compiler.TrainFileExtensions),
			}
		}
		return []string{path}, nil
	}

	files, err := FindTrainFiles(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no train files found in %s", path)}
	}
	return files, nil
}

// FindTrainFiles walks the directory and returns all train file paths in
// lexical order.
func FindTrainFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && compiler.IsTrainFile(path) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// convertLoadError converts a compiler error to a LoadError with position info.
func convertLoadError(err error, file string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompile,
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	var graphErr *compiler.GraphError
	if errors.As(err, &graphErr) {
		return &LoadError{
			Code:    string(graphErr.Code),
			Message: fmt.Sprintf("%s: %s", file, graphErr.Message),
		}
	}
	return &LoadError{
		Code:    ErrCodeLoadFailed,
		Message: fmt.Sprintf("%s: %v", file, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeScanError  = "E002" // Directory scan error
	ErrCodeNoFiles    = "E003" // No train files found
	ErrCodeLoadFailed = "E004" // Train file could not be read or parsed
	ErrCodeNotFound   = "E005" // Path not found
	ErrCodeCompile    = "E006" // CUE train failed schema validation
	ErrCodeNoTrain    = "E007" // Neither a train file nor --gear rows given
)
