package sampler

import "github.com/pkg/errors"

var (
	// ErrZeroSum is returned when normalizing a token set whose probabilities sum to zero.
	ErrZeroSum = errors.New("probabilities sum to zero")
	// ErrInvalidParameter is returned when a filter parameter is outside its domain.
	ErrInvalidParameter = errors.New("invalid filter parameter")
	// ErrEmptyResult marks a pipeline run that eliminated every token.
	ErrEmptyResult = errors.New("no tokens remain")
)
