package sampler

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// TokenID identifies a vocabulary entry. Unique within a Distribution.
type TokenID = string

// Distribution maps tokens to non-negative, not necessarily normalized probabilities.
// Order holds the tokens as they appeared in the input and is used to break ties.
type Distribution struct {
	Order []TokenID
	Probs map[TokenID]float64
}

// NewDistribution builds a distribution from tokens in input order.
func NewDistribution(order []TokenID, probs map[TokenID]float64) (Distribution, error) {
	if len(order) != len(probs) {
		return Distribution{}, errors.Errorf("distribution has %d tokens but %d probabilities", len(order), len(probs))
	}
	d := Distribution{
		Order: make([]TokenID, len(order)),
		Probs: make(map[TokenID]float64, len(probs)),
	}
	copy(d.Order, order)
	for _, tok := range order {
		p, ok := probs[tok]
		if !ok {
			return Distribution{}, errors.Errorf("token %q has no probability", tok)
		}
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return Distribution{}, errors.Errorf("token %q has invalid probability %v", tok, p)
		}
		d.Probs[tok] = p
	}
	return d, nil
}

func (d Distribution) Len() int { return len(d.Order) }

// Prompt is a labelled distribution loaded from the input file.
type Prompt struct {
	Label string
	Dist  Distribution
}

// Entry is a token together with its probability.
type Entry struct {
	Token TokenID
	Prob  float64
}

// WorkingSet is the ranked token list and probability map threaded through one
// recompute pass. Filters return new working sets and never modify their input.
type WorkingSet struct {
	Tokens []TokenID
	Probs  map[TokenID]float64

	rank map[TokenID]int
}

// NewWorkingSet copies the distribution and ranks it.
func NewWorkingSet(d Distribution) WorkingSet {
	rank := make(map[TokenID]int, len(d.Order))
	for i, tok := range d.Order {
		rank[tok] = i
	}
	ws := WorkingSet{
		Tokens: make([]TokenID, len(d.Order)),
		Probs:  make(map[TokenID]float64, len(d.Probs)),
		rank:   rank,
	}
	copy(ws.Tokens, d.Order)
	for tok, p := range d.Probs {
		ws.Probs[tok] = p
	}
	return ws.Ranked()
}

// Len returns the number of tokens still in the set.
func (ws WorkingSet) Len() int { return len(ws.Tokens) }

// Top returns the highest ranked token. ok is false on an empty set.
func (ws WorkingSet) Top() (tok TokenID, p float64, ok bool) {
	if len(ws.Tokens) == 0 {
		return "", 0, false
	}
	tok = ws.Tokens[0]
	return tok, ws.Probs[tok], true
}

// Ranked returns a copy sorted by descending probability. Ties keep input order.
func (ws WorkingSet) Ranked() WorkingSet {
	out := ws.clone()
	sort.SliceStable(out.Tokens, func(i, j int) bool {
		ti, tj := out.Tokens[i], out.Tokens[j]
		pi, pj := out.Probs[ti], out.Probs[tj]
		if pi != pj {
			return pi > pj
		}
		return out.order(ti) < out.order(tj)
	})
	return out
}

// Entries returns the set as a slice of entries in its current order.
func (ws WorkingSet) Entries() []Entry {
	out := make([]Entry, len(ws.Tokens))
	for i, tok := range ws.Tokens {
		out[i] = Entry{Token: tok, Prob: ws.Probs[tok]}
	}
	return out
}

// with returns a working set holding the given tokens and probabilities, sharing the
// tie-break order of ws.
func (ws WorkingSet) with(tokens []TokenID, probs map[TokenID]float64) WorkingSet {
	return WorkingSet{Tokens: tokens, Probs: probs, rank: ws.rank}
}

func (ws WorkingSet) clone() WorkingSet {
	tokens := make([]TokenID, len(ws.Tokens))
	copy(tokens, ws.Tokens)
	probs := make(map[TokenID]float64, len(ws.Probs))
	for tok, p := range ws.Probs {
		probs[tok] = p
	}
	return ws.with(tokens, probs)
}

func (ws WorkingSet) order(tok TokenID) int {
	if i, ok := ws.rank[tok]; ok {
		return i
	}
	return math.MaxInt
}

// keep returns the subset of ws whose tokens satisfy pred, preserving order.
func (ws WorkingSet) keep(pred func(i int, tok TokenID) bool) WorkingSet {
	tokens := make([]TokenID, 0, len(ws.Tokens))
	probs := make(map[TokenID]float64, len(ws.Tokens))
	for i, tok := range ws.Tokens {
		if pred(i, tok) {
			tokens = append(tokens, tok)
			probs[tok] = ws.Probs[tok]
		}
	}
	return ws.with(tokens, probs)
}
