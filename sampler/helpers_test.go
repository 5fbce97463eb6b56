package sampler

import "testing"

// dist builds a distribution from alternating token, probability pairs.
func dist(t *testing.T, pairs ...any) Distribution {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("odd number of arguments: %d", len(pairs))
	}
	order := make([]TokenID, 0, len(pairs)/2)
	probs := make(map[TokenID]float64, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		tok := pairs[i].(string)
		order = append(order, tok)
		probs[tok] = pairs[i+1].(float64)
	}
	d, err := NewDistribution(order, probs)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func tokens(ws WorkingSet) []TokenID {
	out := make([]TokenID, len(ws.Tokens))
	copy(out, ws.Tokens)
	return out
}

func sum(probs map[TokenID]float64) float64 {
	var s float64
	for _, p := range probs {
		s += p
	}
	return s
}
