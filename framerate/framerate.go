package framerate

import (
	"fmt"
	"time"
)

type Unit uint8

const (
	UnitSecond Unit = iota
	UnitMinute
	UnitHour

	Unit_End
)

func (unit Unit) String() string {
	switch unit {
	case UnitSecond:
		return "seconds"
	case UnitMinute:
		return "minutes"
	case UnitHour:
		return "hours"
	}
	return "invalid-unit"
}

// T is a capture rate of Value frames per Unit.
type T struct {
	Value int  `json:"value" toml:"value"`
	Unit  Unit `json:"unit" toml:"unit"`
}

func PerSecond(value int) T { return T{Value: value, Unit: UnitSecond} }

func (rate T) String() string {
	return fmt.Sprintf("%v frames per %v", rate.Value, rate.Unit)
}


// Duration is the time between two frames, or 0 for a non-positive rate.
func (rate T) Duration() time.Duration {
	if rate.Value <= 0 {
		return 0
	}
	const one = float64(1)
	value := float64(rate.Value)
	switch rate.Unit {
	case UnitSecond:
		return time.Duration(one/value*1000*1000) * time.Microsecond
	case UnitMinute:
		return time.Duration((one/(one/60*value))*1000*1000) * time.Microsecond
	case UnitHour:
		return time.Duration((one/(one/60/60*value))*1000*1000) * time.Microsecond
	}
	return 0
}

func (rate T) Valid() bool {
	return rate.Value > 0 && rate.Unit < Unit_End
}
