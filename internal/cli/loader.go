package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/skeinworks/skein/internal/program"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNoFiles     = "E002" // No CUE files found
	ErrCodeLoadFailed  = "E003" // CUE load failed
	ErrCodeNotFound    = "E004" // Path not found
	ErrCodeBuildFailed = "E005" // CUE build failed
	ErrCodeCompile     = "E006" // Program compilation failed
	ErrCodeConstruct   = "E101" // Workflow construction failed
	ErrCodeRender      = "E102" // Rendering failed
	ErrCodeWriteFailed = "E103" // Output write error
	ErrCodeCache       = "E104" // Render cache error
)

// LoadError is a program-loading failure with an optional CUE position.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadProgram loads a workflow program from a CUE file or a directory of
// CUE files and compiles it to a call-node tree.
func LoadProgram(path string) (*program.Program, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("program path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing program path: %v", err)}
	}

	var cfg *load.Config
	var targets []string
	if info.IsDir() {
		files, err := findCUEFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
		cfg = &load.Config{Dir: path}
		targets = []string{"."}
	} else {
		cfg = &load.Config{Dir: filepath.Dir(path)}
		targets = []string{filepath.Base(path)}
	}

	instances := load.Instances(targets, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	prog, err := program.Compile(value)
	if err != nil {
		var compileErr *program.CompileError
		if errors.As(err, &compileErr) {
			return nil, &LoadError{Code: ErrCodeCompile, Message: compileErr.Message, Pos: compileErr.Pos}
		}
		return nil, &LoadError{Code: ErrCodeCompile, Message: err.Error()}
	}
	return prog, nil
}

func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
