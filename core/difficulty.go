package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Difficulty is an ordinal challenge level; higher is harder
type Difficulty int

const (
	DifficultyEasy Difficulty = iota + 1
	DifficultyMedium
	DifficultyHard
)

// DefaultDifficulty is used when a caller does not ask for a level
const DefaultDifficulty = DifficultyMedium

var difficultyNames = map[Difficulty]string{
	DifficultyEasy:   "easy",
	DifficultyMedium: "medium",
	DifficultyHard:   "hard",
}

func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// ParseDifficulty parses "easy", "medium" or "hard"
func ParseDifficulty(s string) (Difficulty, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d, n := range difficultyNames {
		if n == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// Noise is the amount of visual clutter drawn around the real hands
type Noise int

const (
	NoiseNone Noise = iota
	NoiseLight
	NoiseHeavy
)

func (n Noise) String() string {
	switch n {
	case NoiseNone:
		return "none"
	case NoiseLight:
		return "light"
	case NoiseHeavy:
		return "heavy"
	default:
		return fmt.Sprintf("noise(%d)", int(n))
	}
}

// ParseNoise parses "none", "light" or "heavy"
func ParseNoise(s string) (Noise, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return NoiseNone, nil
	case "light":
		return NoiseLight, nil
	case "heavy":
		return NoiseHeavy, nil
	}
	return 0, fmt.Errorf("%w: unknown noise %q", ErrInvalidPolicy, s)
}

// RenderParams tells the renderer how much noise to draw
type RenderParams struct {
	MinuteTicks  bool    // draw the 60 minute ticks
	ExtraTicks   int     // non-functional ticks at random angles
	Speckles     int     // random dots over the face
	DecoyHand    bool    // a third hand at a random angle
	TickContrast float64 // opacity of the hour markers, 0-1
}

// Level holds the parameters of one difficulty
type Level struct {
	ToleranceMinutes int
	TTL              time.Duration
	Attempts         int
	Noise            Noise
}

// RenderParams derives the renderer parameters from the level's noise
func (l Level) RenderParams() RenderParams {
	switch l.Noise {
	case NoiseLight:
		return RenderParams{MinuteTicks: true, ExtraTicks: 6, TickContrast: 1}
	case NoiseHeavy:
		return RenderParams{MinuteTicks: true, ExtraTicks: 24, Speckles: 40, DecoyHand: true, TickContrast: 0.45}
	default:
		return RenderParams{TickContrast: 1}
	}
}

// Policy maps each difficulty to its level
type Policy map[Difficulty]Level

// DefaultPolicy returns the stock easy/medium/hard table
func DefaultPolicy() Policy {
	return Policy{
		DifficultyEasy:   {ToleranceMinutes: 5, TTL: 5 * time.Minute, Attempts: 5, Noise: NoiseNone},
		DifficultyMedium: {ToleranceMinutes: 2, TTL: 3 * time.Minute, Attempts: 3, Noise: NoiseLight},
		DifficultyHard:   {ToleranceMinutes: 0, TTL: 2 * time.Minute, Attempts: 2, Noise: NoiseHeavy},
	}
}

// Level looks up the parameters of d
func (p Policy) Level(d Difficulty) (Level, error) {
	l, ok := p[d]
	if !ok {
		return Level{}, fmt.Errorf("%w: %s", ErrUnknownDifficulty, d)
	}
	return l, nil
}

// Difficulties returns the configured levels in ascending order
func (p Policy) Difficulties() []Difficulty {
	out := make([]Difficulty, 0, len(p))
	for d := range p {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks every level is usable and that harder levels never get a
// wider tolerance, a longer ttl or less noise than easier ones.
func (p Policy) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: no levels", ErrInvalidPolicy)
	}
	var prev *Level
	var prevD Difficulty
	for _, d := range p.Difficulties() {
		l := p[d]
		if _, ok := difficultyNames[d]; !ok {
			return fmt.Errorf("%w: unknown difficulty %d", ErrInvalidPolicy, int(d))
		}
		if l.ToleranceMinutes < 0 || l.ToleranceMinutes >= MinutesPerDial/2 {
			return fmt.Errorf("%w: %s tolerance %d", ErrInvalidPolicy, d, l.ToleranceMinutes)
		}
		if l.TTL <= 0 {
			return fmt.Errorf("%w: %s ttl must be positive", ErrInvalidPolicy, d)
		}
		if l.Attempts < 1 {
			return fmt.Errorf("%w: %s needs at least one attempt", ErrInvalidPolicy, d)
		}
		if prev != nil {
			if l.ToleranceMinutes > prev.ToleranceMinutes || l.TTL > prev.TTL || l.Noise < prev.Noise {
				return fmt.Errorf("%w: %s is easier than %s", ErrInvalidPolicy, d, prevD)
			}
		}
		cur := l
		prev, prevD = &cur, d
	}
	return nil
}
