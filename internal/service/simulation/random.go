package simulation

import (
	"math"
	"math/rand"

	"github.com/plantops/capaplan/internal/domain/models"
)

// DefaultTriangularSpread sets low/high of the triangular cycle-time
// distribution at SAM*(1±spread).
const DefaultTriangularSpread = 0.25

// cycleTime draws one service time for an operation. The generator is an
// explicit parameter: runs never touch global randomness.
func cycleTime(op models.Operation, spread float64, rng *rand.Rand) float64 {
	switch op.Variability {
	case models.VariabilityTriangular:
		low := op.SAMMinutes * (1 - spread)
		high := op.SAMMinutes * (1 + spread)
		return triangular(low, op.SAMMinutes, high, rng)
	default:
		return op.SAMMinutes
	}
}

// triangular samples Triangular(low, mode, high) by inverse transform.
func triangular(low, mode, high float64, rng *rand.Rand) float64 {
	if high <= low {
		return mode
	}
	u := rng.Float64()
	cut := (mode - low) / (high - low)
	if u < cut {
		return low + math.Sqrt(u*(high-low)*(mode-low))
	}
	return high - math.Sqrt((1-u)*(high-low)*(high-mode))
}
