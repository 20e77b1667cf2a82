package service

import (
	"fmt"

	"github.com/layer-3/clockguard/core"
	"github.com/layer-3/clockguard/ports"
)

// Generator draws new challenges
type Generator struct {
	random ports.Random
	policy core.Policy
}

// NewGenerator creates a generator drawing from random under policy
func NewGenerator(random ports.Random, policy core.Policy) *Generator {
	return &Generator{random: random, policy: policy}
}

// Generate picks a uniformly random dial position for difficulty d.
// Failures of the random source are returned wrapped in core.ErrGeneration.
func (g *Generator) Generate(d core.Difficulty) (core.Challenge, core.Level, error) {
	level, err := g.policy.Level(d)
	if err != nil {
		return core.Challenge{}, core.Level{}, err
	}

	hour, err := g.random.Intn(12)
	if err != nil {
		return core.Challenge{}, core.Level{}, fmt.Errorf("%w: %w", core.ErrGeneration, err)
	}
	minute, err := g.random.Intn(60)
	if err != nil {
		return core.Challenge{}, core.Level{}, fmt.Errorf("%w: %w", core.ErrGeneration, err)
	}

	return core.Challenge{
		Target:           core.ClockTime{Hour: hour, Minute: minute},
		Difficulty:       d,
		ToleranceMinutes: level.ToleranceMinutes,
	}, level, nil
}
