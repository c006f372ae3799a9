package trace

import (
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// WriteYAML writes the trace to path, replacing any existing file.
func WriteYAML(st *SimulationTrace, path string) (re error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			re = multierror.Append(re, err)
		}
	}()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(st); err != nil {
		return err
	}
	return enc.Close()
}

// ReadYAML loads a trace written by WriteYAML. Unknown fields are errors.
func ReadYAML(path string) (*SimulationTrace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var st SimulationTrace
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&st); err != nil {
		return nil, err
	}
	return &st, nil
}
