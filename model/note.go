package model

import "fmt"

type Instrument uint8

const (
	Bell Instrument = iota
	Chime
	Harp
	Pling
	Bass
)

var instrumentNames = [...]string{
	Bell:  "bell",
	Chime: "chime",
	Harp:  "harp",
	Pling: "pling",
	Bass:  "bass",
}

func (i Instrument) String() string {
	if int(i) < len(instrumentNames) {
		return instrumentNames[i]
	}
	return fmt.Sprintf("instrument(%d)", uint8(i))
}

const MaxPitch = 24

type Note struct {
	Token      string
	Instrument Instrument
	// Pitch is the note block click count, 0..MaxPitch.
	Pitch uint8
}

type Chord = []Note
