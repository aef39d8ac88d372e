package games

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

const (
	minesTotalCells = 25 // 5x5 grid
	minesHouseEdge  = 97 // payout keeps 97% of the fair multiplier
)

type minesGame struct{}

func (minesGame) Type() Type { return Mines }

// Calculate places mines on the 5x5 grid by successive draws from the
// digest and pays out by the exact survival probability of the revealed
// cells. Params are "num_mines:cells_revealed", each an unsigned
// integer; a field that does not parse as a u32 takes its default
// (5 mines, 0 revealed), and num_mines is clamped to [1,24].
func (minesGame) Calculate(reveal [32]byte, params string) Result {
	parts := strings.Split(params, ":")
	numMines := 5
	cellsRevealed := 0
	if len(parts) >= 1 {
		if parsed, err := strconv.ParseUint(parts[0], 10, 32); err == nil {
			numMines = int(parsed)
		}
	}
	if len(parts) >= 2 {
		if parsed, err := strconv.ParseUint(parts[1], 10, 32); err == nil {
			cellsRevealed = int(parsed)
		}
	}
	if numMines < 1 {
		numMines = 1
	}
	if numMines > minesTotalCells-1 {
		numMines = minesTotalCells - 1
	}

	digest := gameDigest(reveal, "mines")

	// Draw mine positions without replacement: each draw takes a 4-byte
	// window (cycling through the digest) reduced modulo the remaining
	// pool size, then removes that index from the pool.
	positions := make([]int, minesTotalCells)
	for i := range positions {
		positions[i] = i
	}
	minePositions := make([]int, 0, numMines)
	for i := 0; i < numMines; i++ {
		remaining := len(positions)
		if remaining == 0 {
			break
		}
		random := beUint32(digest, (i*4)%32)
		idx := int(random % uint32(remaining))
		minePositions = append(minePositions, positions[idx])
		positions = append(positions[:idx], positions[idx+1:]...)
	}

	safeCells := minesTotalCells - numMines
	var multiplier uint32
	if cellsRevealed > 0 {
		n := cellsRevealed
		if n > safeCells {
			n = safeCells
		}
		multiplier = minesMultiplier(safeCells, n)
	}

	mineStrs := make([]string, len(minePositions))
	for i, p := range minePositions {
		mineStrs[i] = strconv.Itoa(p)
	}

	return Result{
		Details: fmt.Sprintf("Mines: %d mines at [%s], %d revealed",
			numMines, strings.Join(mineStrs, ","), cellsRevealed),
		Multiplier: multiplier,
	}
}

// minesMultiplier computes floor(97 / P) where P is the exact cumulative
// probability of surviving n reveals:
//
//	P = prod_{i=0}^{n-1} (safe-i) / (total-i)
//
// The numerator and denominator products are kept as exact integers;
// no floating point enters the calculation. The result is clamped to a
// minimum of 100 (never below 1x).
func minesMultiplier(safeCells, n int) uint32 {
	numerator := big.NewInt(1)
	denominator := big.NewInt(1)
	for i := 0; i < n; i++ {
		numerator.Mul(numerator, big.NewInt(int64(safeCells-i)))
		denominator.Mul(denominator, big.NewInt(int64(minesTotalCells-i)))
	}

	if numerator.Sign() == 0 {
		return 0
	}

	result := new(big.Int).Mul(denominator, big.NewInt(minesHouseEdge))
	result.Quo(result, numerator)

	multiplier := result.Uint64()
	if multiplier < 100 {
		return 100
	}
	return uint32(multiplier)
}
