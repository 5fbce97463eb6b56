package sampler

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Normalize returns a new map holding exactly the given tokens, rescaled to sum to 1.
// The input map is not modified. A zero or non-finite sum yields ErrZeroSum.
func Normalize(tokens []TokenID, probs map[TokenID]float64) (map[TokenID]float64, error) {
	values := make([]float64, len(tokens))
	for i, tok := range tokens {
		values[i] = probs[tok]
	}
	sum := floats.Sum(values)
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, errors.Wrapf(ErrZeroSum, "normalize %d tokens (sum=%v)", len(tokens), sum)
	}
	out := make(map[TokenID]float64, len(tokens))
	for i, tok := range tokens {
		out[tok] = values[i] / sum
	}
	return out, nil
}

// normalized is Normalize applied to a working set.
func (ws WorkingSet) normalized() (WorkingSet, error) {
	probs, err := Normalize(ws.Tokens, ws.Probs)
	if err != nil {
		return ws, err
	}
	tokens := make([]TokenID, len(ws.Tokens))
	copy(tokens, ws.Tokens)
	return ws.with(tokens, probs), nil
}
