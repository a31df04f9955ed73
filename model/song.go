package model

// Fraction is a duration as written in the song file, in whole units.
type Fraction struct {
	Num   int
	Denom int
}

type Event struct {
	Chord Chord
	Beats Fraction
	// Duration is Beats rescaled by the song's LCD.
	Duration int
}

type Song struct {
	Events []Event
	LCD    int
	// Length is the sum of every event's Duration.
	Length int
}

type Tempo struct {
	BPM      float64 `json:"bpm"`
	Interval int     `json:"interval"`
}
