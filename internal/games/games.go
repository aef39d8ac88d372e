// Package games implements the deterministic outcome calculators. Each
// game maps a revealed 32-byte random value plus free-form parameters to
// a human-readable outcome and a payout multiplier in basis-hundredths
// (100 = 1.0x stake). Calculators are pure: the same reveal and params
// always produce byte-identical results, with integer arithmetic only so
// any auditor can recompute an outcome from the public reveal.
package games

import "fmt"

// Type identifies one of the supported games.
type Type int

const (
	Roulette Type = iota
	Plinko
	Mines
	Wheel
)

var typeNames = map[Type]string{
	Roulette: "Roulette",
	Plinko:   "Plinko",
	Mines:    "Mines",
	Wheel:    "Wheel",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType resolves a game name, case-sensitively matching the
// canonical names used on the wire.
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown game type %q", s)
}

// MarshalJSON encodes the type by its canonical name so persisted bets
// stay readable and stable across reorderings of the enum.
func (t Type) MarshalJSON() ([]byte, error) {
	name, ok := typeNames[t]
	if !ok {
		return nil, fmt.Errorf("cannot marshal unknown game type %d", int(t))
	}
	return []byte(`"` + name + `"`), nil
}

func (t *Type) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("game type must be a JSON string")
	}
	parsed, err := ParseType(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Result is the outcome of a reveal.
type Result struct {
	// Details is the display description, e.g. "Roulette: 17, Bet: number:17".
	Details string
	// Multiplier is the payout multiplier in basis-hundredths.
	Multiplier uint32
}

// Calculator computes a game outcome from a reveal. Implementations
// must tolerate malformed params by substituting documented defaults;
// only the commitment check may reject a reveal.
type Calculator interface {
	Type() Type
	Calculate(reveal [32]byte, params string) Result
}

// ForType returns the calculator for a game type. The switch is the
// single dispatch point over the game sum; a new game type without a
// case here is reported as an error to the caller rather than settling
// with the wrong math.
func ForType(t Type) (Calculator, error) {
	switch t {
	case Roulette:
		return rouletteGame{}, nil
	case Plinko:
		return plinkoGame{}, nil
	case Mines:
		return minesGame{}, nil
	case Wheel:
		return wheelGame{}, nil
	}
	return nil, fmt.Errorf("no calculator for game type %v", t)
}
