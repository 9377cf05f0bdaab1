package model

import "time"

// Request is the actuation order sent downstream once a proposal has been
// arbitrated.
type Request struct {
	Power          float64       `json:"power"`
	Group          BatteryGroup  `json:"batteries"`
	RequestTimeout time.Duration `json:"request_timeout"`
	// AdjustPower lets the distributor clamp the power to what the batteries
	// can take instead of rejecting the request.
	AdjustPower   bool `json:"adjust_power"`
	IncludeBroken bool `json:"include_broken_batteries"`
}
