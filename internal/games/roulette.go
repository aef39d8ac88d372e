package games

import (
	"fmt"
	"strconv"
	"strings"
)

// European wheel red pockets.
var rouletteRed = map[uint32]bool{
	1: true, 3: true, 5: true, 7: true, 9: true,
	12: true, 14: true, 16: true, 18: true, 19: true,
	21: true, 23: true, 25: true, 27: true, 30: true,
	32: true, 34: true, 36: true,
}

type rouletteGame struct{}

func (rouletteGame) Type() Type { return Roulette }

// Calculate spins a single pocket in [0,36] from the reveal and settles
// the bet described by params ("bet_type:value", e.g. "number:17",
// "color:red", "odd_even:odd", "high_low:high"). Malformed params fall
// back to a straight bet on 0. Zero loses every non-number bet.
func (rouletteGame) Calculate(reveal [32]byte, params string) Result {
	digest := gameDigest(reveal, "roulette")
	result := beUint32(digest, 0) % 37

	parts := strings.Split(params, ":")
	betType, betValue := "straight", "0"
	if len(parts) >= 2 {
		betType, betValue = parts[0], parts[1]
	}

	var multiplier uint32
	switch betType {
	case "number", "straight":
		// Single number pays 35:1.
		if betNum, err := strconv.ParseUint(betValue, 10, 32); err == nil {
			if result == uint32(betNum) {
				multiplier = 3600
			}
		}
	case "color":
		betRed := betValue == "red"
		if result != 0 && rouletteRed[result] == betRed {
			multiplier = 200
		}
	case "odd_even":
		if result != 0 {
			isEven := result%2 == 0
			betEven := betValue == "even"
			if isEven == betEven {
				multiplier = 200
			}
		}
	case "high_low":
		if result != 0 {
			isHigh := result >= 19
			betHigh := betValue == "high"
			if isHigh == betHigh {
				multiplier = 200
			}
		}
	}

	return Result{
		Details:    fmt.Sprintf("Roulette: %d, Bet: %s:%s", result, betType, betValue),
		Multiplier: multiplier,
	}
}
