package games

import "fmt"

type wheelSegment struct {
	multiplier uint32
	label      string
}

// The 8 wheel segments. Two losing segments, one near-jackpot.
var wheelSegments = [8]wheelSegment{
	{200, "1x"},
	{150, "0.5x"},
	{300, "2x"},
	{0, "0x"},
	{500, "4x"},
	{200, "1x"},
	{1000, "9x"},
	{100, "0x"},
}

type wheelGame struct{}

func (wheelGame) Type() Type { return Wheel }

// Calculate picks a segment from the reveal; params are ignored. The
// reported angle is purely cosmetic and has no effect on the payout.
func (wheelGame) Calculate(reveal [32]byte, _ string) Result {
	digest := gameDigest(reveal, "wheel")
	random := beUint32(digest, 0)
	segment := random % 8

	seg := wheelSegments[segment]
	angle := segment*45 + random%45

	return Result{
		Details:    fmt.Sprintf("Wheel: Segment %d (%s), Angle %d°", segment, seg.label, angle),
		Multiplier: seg.multiplier,
	}
}
