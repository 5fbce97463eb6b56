package sampler

import (
	"encoding/json"
	"io"
	"os"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/pkg/errors"
)

// LoadPromptsFile reads prompts from a JSON file, see LoadPrompts.
func LoadPromptsFile(path string) ([]Prompt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open prompts")
	}
	defer func() { _ = f.Close() }()
	prompts, err := LoadPrompts(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return prompts, nil
}

// LoadPrompts decodes a JSON array of [label, {token: probability, ...}] pairs.
// Token order within each object is kept as the tie-break order.
func LoadPrompts(r io.Reader) ([]Prompt, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode prompts")
	}
	if len(raw) == 0 {
		return nil, errors.New("no prompts")
	}
	prompts := make([]Prompt, 0, len(raw))
	for i, item := range raw {
		p, err := decodePrompt(item)
		if err != nil {
			return nil, errors.Wrapf(err, "prompt %d", i)
		}
		prompts = append(prompts, p)
	}
	return prompts, nil
}

func decodePrompt(data json.RawMessage) (Prompt, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return Prompt{}, errors.Wrap(err, "expected [label, distribution]")
	}
	if len(pair) != 2 {
		return Prompt{}, errors.Errorf("expected [label, distribution], got %d elements", len(pair))
	}
	var label string
	if err := json.Unmarshal(pair[0], &label); err != nil {
		return Prompt{}, errors.Wrap(err, "label")
	}

	m := linkedhashmap.New()
	if err := m.FromJSON(pair[1]); err != nil {
		return Prompt{}, errors.Wrapf(err, "distribution of %q", label)
	}
	order := make([]TokenID, 0, m.Size())
	probs := make(map[TokenID]float64, m.Size())
	it := m.Iterator()
	for it.Next() {
		tok := it.Key().(string)
		p, ok := it.Value().(float64)
		if !ok {
			return Prompt{}, errors.Errorf("token %q of %q: probability is not a number", tok, label)
		}
		order = append(order, tok)
		probs[tok] = p
	}
	dist, err := NewDistribution(order, probs)
	if err != nil {
		return Prompt{}, errors.Wrapf(err, "distribution of %q", label)
	}
	return Prompt{Label: label, Dist: dist}, nil
}
