package dataset

import (
	"math"
	"time"
)

// Feature normalization. The network trains on sigmoid outputs, so every
// input and the target are squashed into (0,1) on fixed scales. The scales
// are part of the on-disk model contract: a model trained on these features
// is only meaningful against data normalized the same way.
const (
	// positionScale flattens queue positions and lengths; real queues top
	// out below ~900, so /512 keeps the sigmoid off its saturated tails.
	positionScale = 512.0

	// waitScaleHours expresses waits in units of 14 hours, the practical
	// worst case observed on the target server.
	waitScaleHours = 14.0
)

func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// InvSigmoid is the exact inverse of Sigmoid on (0,1).
func InvSigmoid(y float64) float64 {
	return -math.Log(1.0/y - 1.0)
}

// NormWait squashes a wait in milliseconds to the (0,1) target scale.
func NormWait(millis float64) float64 {
	return Sigmoid(millis / 1000.0 / 3600.0 / waitScaleHours)
}

// WaitHours recovers hours from a normalized wait prediction.
func WaitHours(y float64) float64 {
	return InvSigmoid(y) * waitScaleHours
}

// MakeInputs builds the fixed 10-feature vector for one observation of a
// queue run. All clock features are UTC. Layout:
//
//	0: hour of day at join, /23
//	1: weekday at join (Monday=0), /6
//	2: minute of hour at join, /59
//	3: sigmoid(position at join / 512)
//	4: sigmoid(queue length at join / 512)
//	5-9: the same five for the current observation
//
// The mapping is pure: identical points always produce identical vectors,
// across runs and processes.
func MakeInputs(start, current DataPoint) []float64 {
	startTime := unixMilli(start.Time)
	currentTime := unixMilli(current.Time)

	return []float64{
		hourOfDay(startTime),
		weekday(startTime),
		minuteOfHour(startTime),
		normPosition(start.Position),
		normPosition(start.Length),
		hourOfDay(currentTime),
		weekday(currentTime),
		minuteOfHour(currentTime),
		normPosition(current.Position),
		normPosition(current.Length),
	}
}

func unixMilli(ms uint64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

func hourOfDay(t time.Time) float64 {
	return float64(t.Hour()) / 23.0
}

func weekday(t time.Time) float64 {
	// time.Weekday counts from Sunday; the feature counts from Monday.
	return float64((int(t.Weekday())+6)%7) / 6.0
}

func minuteOfHour(t time.Time) float64 {
	return float64(t.Minute()) / 59.0
}

func normPosition(p uint16) float64 {
	return Sigmoid(float64(p) / positionScale)
}
