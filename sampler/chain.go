package sampler

import (
	"encoding/json"
	"io"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// StageSpec is the on-disk form of a chain stage.
type StageSpec struct {
	Name    string         `json:"name"`
	Enabled bool           `json:"enabled"`
	Params  map[string]any `json:"params,omitempty"`
}

// LoadChainFile reads a chain from a JSON file, see LoadChain.
func LoadChainFile(path string) ([]Stage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open chain")
	}
	defer func() { _ = f.Close() }()
	stages, err := LoadChain(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return stages, nil
}

// LoadChain decodes a JSON list of stage specs. Parameters not given keep their
// defaults. Filter kinds missing from the list are appended, disabled.
func LoadChain(r io.Reader) ([]Stage, error) {
	var specs []StageSpec
	if err := json.NewDecoder(r).Decode(&specs); err != nil {
		return nil, errors.Wrap(err, "decode chain")
	}
	return BuildChain(specs)
}

// BuildChain turns stage specs into stages.
func BuildChain(specs []StageSpec) ([]Stage, error) {
	seen := make(map[Kind]bool)
	stages := make([]Stage, 0, len(Kinds()))
	for _, spec := range specs {
		kind, ok := ParseKind(spec.Name)
		if !ok {
			return nil, errors.Errorf("unknown filter %q", spec.Name)
		}
		if seen[kind] {
			return nil, errors.Errorf("filter %q listed twice", spec.Name)
		}
		seen[kind] = true
		f, err := decodeFilter(kind, spec.Params)
		if err != nil {
			return nil, errors.Wrapf(err, "filter %q", spec.Name)
		}
		stages = append(stages, Stage{Filter: f, Enabled: spec.Enabled})
	}
	for _, kind := range Kinds() {
		if !seen[kind] {
			stages = append(stages, Stage{Filter: DefaultFilter(kind)})
		}
	}
	return stages, nil
}

// stageSpecs converts stages back to their on-disk form.
func stageSpecs(stages []Stage) []StageSpec {
	out := make([]StageSpec, 0, len(stages))
	for _, st := range stages {
		params := make(map[string]any)
		for _, p := range st.Filter.Params() {
			switch {
			case p.Toggle:
				params[p.Name] = p.Value > 0
			case p.Step == 1:
				params[p.Name] = int(p.Value)
			default:
				params[p.Name] = p.Value
			}
		}
		out = append(out, StageSpec{Name: st.Filter.Kind().String(), Enabled: st.Enabled, Params: params})
	}
	return out
}

func decodeFilter(kind Kind, params map[string]any) (Filter, error) {
	switch kind {
	case KindTemperature:
		f := DefaultFilter(kind).(TemperatureFilter)
		err := decodeParams(params, &f)
		return f.Clamp(), err
	case KindTopK:
		f := DefaultFilter(kind).(TopKFilter)
		err := decodeParams(params, &f)
		return f.Clamp(), err
	case KindTopP:
		f := DefaultFilter(kind).(TopPFilter)
		err := decodeParams(params, &f)
		return f.Clamp(), err
	case KindMinP:
		f := DefaultFilter(kind).(MinPFilter)
		err := decodeParams(params, &f)
		return f.Clamp(), err
	}
	return nil, errors.Errorf("unknown filter kind %d", int(kind))
}

func decodeParams(params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(params)
}
