package model

import "time"

// TimeID identifies a recorded run
type TimeID string

// TimeRecord is one finished run on a trail
type TimeRecord struct {
	ID            TimeID
	PlayerID      PlayerID
	PlayerName    string
	TrailName     string
	WorldName     string
	TotalTime     float64 // seconds
	BikeType      BikeType
	StartingSpeed float64
	Version       string
	Ignored       bool
	Verified      bool
	SubmittedAt   time.Time
	VerifiedAt    time.Time // zero until verified
}
