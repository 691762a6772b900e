// Package compiler turns metamodel sources into a model.Model.
//
// Three source formats are accepted: JSON (the canonical wire format), YAML
// with the same shape, and CUE. CUE sources are evaluated and exported to
// JSON, so CUE definitions and constraints can be used to author a model
// while only concrete regular fields become part of it.
package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"github.com/go-json-experiment/json"
	"gopkg.in/yaml.v3"

	"github.com/roach88/apimodel/internal/model"
)

// CompileFile compiles a metamodel source. The format is chosen by file
// extension; a directory is loaded as a CUE package.
func CompileFile(path string) (*model.Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return CompileCUEDir(path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".cue" {
		return compileCUEFile(path)
	}

	raw, err := os.ReadFile(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, err
	}
	switch ext {
	case ".json":
		return CompileJSON(raw)
	case ".yaml", ".yml":
		return CompileYAML(raw)
	default:
		return nil, &CompileError{Field: "source", Message: fmt.Sprintf("unsupported source extension %q", ext)}
	}
}

// CompileJSON decodes the canonical JSON form.
func CompileJSON(raw []byte) (*model.Model, error) {
	m, err := model.Decode(raw)
	if err != nil {
		return nil, &CompileError{Field: "model", Message: err.Error()}
	}
	return m, nil
}

// CompileYAML decodes a YAML document with the same shape as the JSON form.
func CompileYAML(raw []byte) (*model.Model, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, &CompileError{Field: "yaml", Message: fmt.Sprintf("convert to JSON: %v", err)}
	}
	return CompileJSON(data)
}

// CompileCUE exports a CUE value and decodes it as a model. The value must
// be concrete.
func CompileCUE(v cue.Value) (*model.Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	m, err := model.Decode(data)
	if err != nil {
		return nil, &CompileError{Field: "model", Message: err.Error(), Pos: v.Pos()}
	}
	return m, nil
}

// CompileCUESource compiles CUE source text. name is used in positions.
func CompileCUESource(name string, src []byte) (*model.Model, error) {
	ctx := cuecontext.New()
	return CompileCUE(ctx.CompileBytes(src, cue.Filename(name)))
}

// CompileCUEDir loads the CUE package in dir.
func CompileCUEDir(dir string) (*model.Model, error) {
	return compileCUEInstance(dir, ".")
}

func compileCUEFile(path string) (*model.Model, error) {
	return compileCUEInstance(filepath.Dir(path), "./"+filepath.Base(path))
}

func compileCUEInstance(dir, arg string) (*model.Model, error) {
	instances := load.Instances([]string{arg}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &CompileError{Field: "load", Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		err := formatCUEError(inst.Err)
		var ce *CompileError
		if errors.As(err, &ce) {
			ce.Field = "load"
		}
		return nil, err
	}

	ctx := cuecontext.New()
	return CompileCUE(ctx.BuildInstance(inst))
}
