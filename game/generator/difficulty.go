package generator

import (
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand/v2"

	"github.com/wricardo/mcp-training/stromrallye/game/engine"
)

// Calibration constants for the difficulty search.
const (
	MaxIterations = 1000
	MaxDelta      = 0.1
	DensityStep   = 0.1
	LengthStep    = 0.1
)

// ErrInvalidConstraints is returned when calibration bounds are unusable.
var ErrInvalidConstraints = errors.New("invalid constraints")

// Constraints bound the difficulty search.
type Constraints struct {
	Size       int     `json:"size"`
	MinDI      float64 `json:"min_di"`
	MaxDI      float64 `json:"max_di"`
	MinDensity float64 `json:"min_density"`
	MaxDensity float64 `json:"max_density"`
	MinLength  float64 `json:"min_length"`
	MaxLength  float64 `json:"max_length"`
}

// DefaultConstraints returns the bounds used when none are given.
func DefaultConstraints() Constraints {
	return Constraints{
		Size:       10,
		MinDI:      0,
		MaxDI:      100,
		MinDensity: 0,
		MaxDensity: 1,
		MinLength:  0,
		MaxLength:  5,
	}
}

// Validate checks that every range is ordered and the size is playable.
func (c Constraints) Validate() error {
	switch {
	case c.Size < 2 || c.Size > engine.MaxGridSize:
		return fmt.Errorf("%w: size %d must be between 2 and %d", ErrInvalidConstraints, c.Size, engine.MaxGridSize)
	case c.MinDI > c.MaxDI:
		return fmt.Errorf("%w: DI range [%g, %g]", ErrInvalidConstraints, c.MinDI, c.MaxDI)
	case c.MinDensity < 0 || c.MaxDensity > 1 || c.MinDensity > c.MaxDensity:
		return fmt.Errorf("%w: density range [%g, %g]", ErrInvalidConstraints, c.MinDensity, c.MaxDensity)
	case c.MinLength < 0 || c.MinLength > c.MaxLength:
		return fmt.Errorf("%w: length range [%g, %g]", ErrInvalidConstraints, c.MinLength, c.MaxLength)
	}
	return nil
}

// Difficulty describes the board a generated puzzle is built from.
//
// Density is the share of cells holding a battery. Length scales the number
// of reverse-play hops per battery before the robot heads back to its start.
// DI is the difficulty index of the combination.
type Difficulty struct {
	Size    int     `json:"size"`
	Density float64 `json:"density"`
	Length  float64 `json:"length"`
	DI      float64 `json:"di"`

	// Target and Iterations are set by Calibrate.
	Target     float64 `json:"target,omitempty"`
	Iterations int     `json:"iterations,omitempty"`

	deltaDensity float64
	deltaLength  float64
}

// NewDifficulty computes the difficulty index for a board.
func NewDifficulty(size int, density, length float64) Difficulty {
	d := Difficulty{Size: size, Density: density, Length: length}
	d.calculate()
	return d
}

func (d *Difficulty) calculate() {
	size := float64(d.Size)
	d.DI = difficultyIndex(size, d.Density, d.Length)
	d.deltaDensity = densityStep(size, d.Density, d.Length)
	d.deltaLength = lengthStep(size, d.Density, d.Length)
}

func difficultyIndex(size, density, length float64) float64 {
	densityFactor := 40 - 40*math.Exp(-5*density)
	lengthFactor := math.Pow(1.0057, math.Pow(length, 3))
	sizeFactor := (size * size / 100) * density * length

	return densityFactor*lengthFactor + sizeFactor
}

// densityStep is the reciprocal of the density slope.
func densityStep(size, density, length float64) float64 {
	densityFactor := 200 * math.Exp(-5*density)
	lengthFactor := (math.Pow(3, length) - 1) / (math.Pow(length, 3) + 2)
	sizeFactor := (size * size / 100) * length

	return 1 / (densityFactor*lengthFactor + sizeFactor)
}

// lengthStep is the reciprocal of the length slope.
func lengthStep(size, density, length float64) float64 {
	densityFactor := 40 - 40*math.Exp(-5*density)
	cube := math.Pow(length, 3) + 2
	lengthFactor := math.Pow(3, length)*math.Log(3)/cube -
		3*(math.Pow(3, length)-1)*length*length/(cube*cube)
	sizeFactor := (size * size / 100) * density

	return 1 / (densityFactor*lengthFactor + sizeFactor)
}

// Calibrate draws a target DI from the constraint range and walks density and
// length from the middle of their ranges towards it. A step that would leave
// a range is dropped for that coordinate. The search stops once DI is within
// MaxDelta of the target or after MaxIterations steps.
func Calibrate(c Constraints, rng *rand.Rand, opts Options) (Difficulty, error) {
	if err := c.Validate(); err != nil {
		return Difficulty{}, err
	}
	opts = opts.withDefaults()

	target := c.MinDI + rng.Float64()*(c.MaxDI-c.MinDI)
	d := NewDifficulty(c.Size, (c.MinDensity+c.MaxDensity)/2, (c.MinLength+c.MaxLength)/2)

	iterations := 0
	for iterations < MaxIterations && math.Abs(target-d.DI) > MaxDelta {
		iterations++
		dir := sign(d.DI - target)

		density := d.Density - d.deltaDensity*DensityStep*dir
		if inRange(density, c.MinDensity, c.MaxDensity) {
			d.Density = density
		}
		length := d.Length - d.deltaLength*LengthStep*dir
		if inRange(length, c.MinLength, c.MaxLength) {
			d.Length = length
		}
		d.calculate()

		if opts.Debug {
			opts.Logger.Printf("Iteration: %-6d Target: %-3.2f DI: %-3.2f D: %-3.2f L: %-3.2f",
				iterations, target, d.DI, d.Density, d.Length)
		}
	}

	d.Target = target
	d.Iterations = iterations
	return d, nil
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Options tune calibration and generation.
type Options struct {
	Debug  bool
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}
