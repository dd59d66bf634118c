// Package graph builds the transaction proximity graph and answers degree queries on it.
package graph

import (
	"errors"
	"fmt"
)

// Default coefficients of the proximity heuristic.
const (
	DefaultThreshold       = 10.0
	DefaultTimeFactor      = 0.5
	DefaultAmountFactor    = 0.01
	DefaultDegreeThreshold = 2
)

// ErrInvalidConfig is returned when a Config cannot produce a meaningful graph.
var ErrInvalidConfig = errors.New("invalid graph configuration")

// Config holds the weighting coefficients and cut-offs used when building a graph.
type Config struct {
	Threshold       float64 // Edges require weight strictly below this value
	TimeFactor      float64 // Weight per hour of time difference
	AmountFactor    float64 // Weight per dollar of amount difference
	DegreeThreshold int     // Nodes with degree strictly above this are suspicious
}

// DefaultConfig returns the stock heuristic: threshold 10, 0.5 per hour, 0.01 per dollar,
// suspicious above degree 2.
func DefaultConfig() Config {
	return Config{
		Threshold:       DefaultThreshold,
		TimeFactor:      DefaultTimeFactor,
		AmountFactor:    DefaultAmountFactor,
		DegreeThreshold: DefaultDegreeThreshold,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Threshold <= 0 {
		return fmt.Errorf("%w: threshold must be positive, got %g", ErrInvalidConfig, c.Threshold)
	}
	if c.TimeFactor < 0 {
		return fmt.Errorf("%w: time factor cannot be negative, got %g", ErrInvalidConfig, c.TimeFactor)
	}
	if c.AmountFactor < 0 {
		return fmt.Errorf("%w: amount factor cannot be negative, got %g", ErrInvalidConfig, c.AmountFactor)
	}
	if c.DegreeThreshold < 0 {
		return fmt.Errorf("%w: degree threshold cannot be negative, got %d", ErrInvalidConfig, c.DegreeThreshold)
	}
	return nil
}
