package games

import (
	"fmt"
	"strconv"
	"strings"
)

// Landing multipliers for the 17 possible positions, symmetric around
// the center: the center pays least, the edges pay 10x.
var plinkoMultipliers = [17]uint32{
	1000, 500, 300, 200, 150, 120, 110, 105, 100, 105, 110, 120, 150, 200, 300, 500, 1000,
}

type plinkoGame struct{}

func (plinkoGame) Type() Type { return Plinko }

// Calculate drops the ball through `rows` peg rows (params holds the row
// count as an unsigned integer, clamped to [8,16]; anything that does
// not parse as a u32 means the default 16). Each row consumes one
// digest bit: 1 goes right, 0 goes left. The final horizontal
// displacement is normalized to a table index.
func (plinkoGame) Calculate(reveal [32]byte, params string) Result {
	rows := 16
	if parsed, err := strconv.ParseUint(params, 10, 32); err == nil {
		rows = int(parsed)
	}
	if rows < 8 {
		rows = 8
	}
	if rows > 16 {
		rows = 16
	}

	digest := gameDigest(reveal, "plinko")

	position := rows / 2
	var path strings.Builder
	for i := 0; i < rows; i++ {
		byteIdx := i / 8
		bitIdx := i % 8
		goRight := (digest[byteIdx]>>bitIdx)&1 == 1
		if goRight {
			position++
			path.WriteByte('R')
		} else {
			position--
			path.WriteByte('L')
		}
	}

	finalPosition := (position + rows) / 2
	if finalPosition > 16 {
		finalPosition = 16
	}

	return Result{
		Details:    fmt.Sprintf("Plinko: Position %d, Path: %s", finalPosition, path.String()),
		Multiplier: plinkoMultipliers[finalPosition],
	}
}
