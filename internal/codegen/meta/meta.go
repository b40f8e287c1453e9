package meta

import (
	"encoding/json"
	"fmt"

	"github.com/Alia5/giopgen/internal/idl"

	yaml "gopkg.in/yaml.v3"
)

// Options are the configuration inputs substituted verbatim into the
// generated text.
type Options struct {
	ProtocolName  string // display name, e.g. "ECHO"
	DissectorName string // C identifier stem, e.g. "echo"
	Description   string
	Indent        int
	Version       string
	Digest        string
}

// Metadata holds everything a backend needs for one generation run.
// Shared between generator orchestrator and backends.
type Metadata struct {
	Tree    *idl.Tree
	Source  string // input path, for diagnostics only
	Options Options
}

// RoutineKind names the entity category a generated routine decodes.
type RoutineKind string

const (
	RoutineOperation RoutineKind = "operation"
	RoutineStruct    RoutineKind = "struct"
	RoutineUnion     RoutineKind = "union"
	RoutineException RoutineKind = "exception"
	RoutineGetter    RoutineKind = "getter"
	RoutineSetter    RoutineKind = "setter"
)

// Routine is one generated decoding routine and the scratch declarations
// it opens with.
type Routine struct {
	Name         string      `json:"name" yaml:"name"`
	Entity       string      `json:"entity" yaml:"entity"`
	Kind         RoutineKind `json:"kind" yaml:"kind"`
	Declarations []string    `json:"declarations" yaml:"declarations"`
}

// Diagnostic marks a location where a kind could not be decoded.
type Diagnostic struct {
	Routine string `json:"routine" yaml:"routine"`
	Binding string `json:"binding" yaml:"binding"`
	Kind    int    `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// Result describes a finished generation run.
type Result struct {
	Target      string       `json:"target" yaml:"target"`
	Dissector   string       `json:"dissector" yaml:"dissector"`
	Version     string       `json:"version" yaml:"version"`
	Digest      string       `json:"digest" yaml:"digest"`
	Routines    []Routine    `json:"routines" yaml:"routines"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Marshal renders the result as a "json" or "yaml" manifest.
func (r *Result) Marshal(format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml":
		return yaml.Marshal(r)
	default:
		return nil, fmt.Errorf("unsupported manifest format %q (use json or yaml)", format)
	}
}
