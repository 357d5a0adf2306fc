package dataset

import "math"

// queueOffset is the assumed dead weight of the queue: the decay model fits
// better when positions are shifted by a constant crowd that never leaves.
const queueOffset = 150.0

// decayTable maps observed queue lengths to fitted per-second decay rates.
// Between entries the rate is interpolated linearly; beyond the last entry
// it is clamped; below the first there is no usable fit.
var decayTable = [...]struct {
	length float64
	rate   float64
}{
	{93.0, 0.9998618838664679},
	{207.0, 0.9999220416881794},
	{231.0, 0.9999234240704379},
	{257.0, 0.9999291667668093},
	{412.0, 0.9999410569845172},
	{418.0, 0.9999168965649361},
	{486.0, 0.9999440195022513},
	{506.0, 0.9999262577896301},
	{550.0, 0.9999462301738332},
	{586.0, 0.999938895110192},
	{666.0, 0.9999219189483673},
	{758.0, 0.9999473463335498},
	{789.0, 0.9999337457796981},
	{826.0, 0.9999279556964097},
}

// LegacyETA is the pre-neural wait estimate in seconds: positions decay
// exponentially at the interpolated rate, so the time to reach the front is
// the difference of the log-scaled positions. Kept as the benchmark the
// trained models are compared against.
func LegacyETA(position, length uint16) float64 {
	b := math.Log(decayRate(float64(length)))
	a := func(pos float64) float64 {
		return math.Log((pos+queueOffset)/(float64(length)+queueOffset)) / b
	}
	return a(0) - a(float64(position))
}

func decayRate(length float64) float64 {
	if length < decayTable[0].length {
		return 0.0
	}
	last := decayTable[len(decayTable)-1]
	if length > last.length {
		return last.rate
	}
	for i := 1; i < len(decayTable); i++ {
		if decayTable[i].length >= length {
			lower, higher := decayTable[i-1], decayTable[i]
			slope := (higher.rate - lower.rate) / (higher.length - lower.length)
			return lower.rate + slope*(length-lower.length)
		}
	}
	return last.rate
}
