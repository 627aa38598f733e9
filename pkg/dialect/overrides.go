package dialect

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// overrideFile is the on-disk shape of a function-map override file:
//
//	functions:
//	  median:
//	    sql_name: PERCENTILE_CONT
//	    kind: aggregate
type overrideFile struct {
	Functions map[string]overrideFunc `yaml:"functions"`
}

type overrideFunc struct {
	SQLName string `yaml:"sql_name"`
	Kind    string `yaml:"kind"`
	Prefix  string `yaml:"prefix"`
}

// LoadOverrides reads a YAML function-map override file and returns a copy of
// the dialect with the overrides merged in. The input dialect is not modified.
func LoadOverrides(d *Dialect, path string) (*Dialect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dialect overrides: %w", err)
	}

	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse dialect overrides: %w", err)
	}

	fns := make(map[string]Function, len(file.Functions))
	for name, f := range file.Functions {
		if f.SQLName == "" {
			return nil, fmt.Errorf("dialect override %q is missing sql_name", name)
		}
		kind := FuncScalar
		switch strings.ToLower(f.Kind) {
		case "", "scalar":
		case "aggregate":
			kind = FuncAggregate
		default:
			return nil, fmt.Errorf("dialect override %q has unknown kind %q", name, f.Kind)
		}
		fns[name] = Function{SQLName: f.SQLName, Kind: kind, Prefix: f.Prefix}
	}

	return d.WithFunctions(fns), nil
}
