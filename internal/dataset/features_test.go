package dataset

import (
	"math"
	"testing"
)

// 2022-03-15 14:37:00 UTC, a Tuesday.
const tuesdayAfternoon = uint64(1647355020000)

// 2022-03-14 00:00:00 UTC, a Monday.
const mondayMidnight = uint64(1647216000000)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestMakeInputsKnownValues(t *testing.T) {
	start := DataPoint{Time: tuesdayAfternoon, Position: 256, Length: 512}
	inputs := MakeInputs(start, start)

	if len(inputs) != 10 {
		t.Fatalf("expected 10 features, got %d", len(inputs))
	}

	if !almostEqual(inputs[0], 14.0/23.0) {
		t.Errorf("hour feature: expected %f, got %f", 14.0/23.0, inputs[0])
	}

	// Tuesday, counted from Monday.
	if !almostEqual(inputs[1], 1.0/6.0) {
		t.Errorf("weekday feature: expected %f, got %f", 1.0/6.0, inputs[1])
	}

	if !almostEqual(inputs[2], 37.0/59.0) {
		t.Errorf("minute feature: expected %f, got %f", 37.0/59.0, inputs[2])
	}

	if !almostEqual(inputs[3], Sigmoid(0.5)) {
		t.Errorf("position feature: expected %f, got %f", Sigmoid(0.5), inputs[3])
	}

	if !almostEqual(inputs[4], Sigmoid(1.0)) {
		t.Errorf("length feature: expected %f, got %f", Sigmoid(1.0), inputs[4])
	}

	// Start and current are the same point here, so the halves must match.
	for i := 0; i < 5; i++ {
		if inputs[i] != inputs[i+5] {
			t.Errorf("feature %d differs from feature %d", i, i+5)
		}
	}
}

func TestMakeInputsCurrentHalf(t *testing.T) {
	start := DataPoint{Time: mondayMidnight, Position: 400, Length: 450}
	current := DataPoint{Time: tuesdayAfternoon, Position: 100, Length: 460}
	inputs := MakeInputs(start, current)

	if !almostEqual(inputs[1], 0.0) {
		t.Errorf("start weekday: expected 0 (Monday), got %f", inputs[1])
	}

	if !almostEqual(inputs[6], 1.0/6.0) {
		t.Errorf("current weekday: expected %f, got %f", 1.0/6.0, inputs[6])
	}

	if !almostEqual(inputs[8], Sigmoid(100.0/512.0)) {
		t.Errorf("current position: expected %f, got %f", Sigmoid(100.0/512.0), inputs[8])
	}
}

func TestMakeInputsDeterministic(t *testing.T) {
	start := DataPoint{Time: tuesdayAfternoon, Position: 321, Length: 654}
	current := DataPoint{Time: tuesdayAfternoon + 90000, Position: 300, Length: 640}

	a := MakeInputs(start, current)
	b := MakeInputs(start, current)

	for i := range a {
		if a[i] != b[i] {
			t.Errorf("feature %d not deterministic: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestNormWaitRoundTrip(t *testing.T) {
	for _, hours := range []float64{0.25, 1.0, 4.5, 13.0} {
		millis := hours * 3600.0 * 1000.0
		got := WaitHours(NormWait(millis))
		if math.Abs(got-hours) > 1e-9 {
			t.Errorf("round trip for %vh: got %vh", hours, got)
		}
	}
}

func TestInvSigmoid(t *testing.T) {
	for _, x := range []float64{-3.0, -0.5, 0.0, 0.5, 3.0} {
		got := InvSigmoid(Sigmoid(x))
		if math.Abs(got-x) > 1e-9 {
			t.Errorf("InvSigmoid(Sigmoid(%v)) = %v", x, got)
		}
	}
}

func TestNormWaitZero(t *testing.T) {
	if got := NormWait(0); got != 0.5 {
		t.Errorf("expected sigmoid(0) = 0.5, got %v", got)
	}
}
