// Package midi renders songs as standard MIDI files for a quick listen and
// reads MIDI files back into songs.
package midi

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/noteblock/chord"
	"github.com/jsphweid/noteblock/model"
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF
	var err error

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)

	if err != nil {
		errText := fmt.Sprintf("Error reading midi file... %s", err.Error())
		return &blank, errors.New(errText)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))

	if err != nil {
		errText := fmt.Sprintf("Error parsing midi file... %s", err.Error())
		return &blank, errors.New(errText)
	}

	return res, nil
}

// The lowest key of each instrument's note block range: F#1 for bass, F#3
// for harp and F#5 for bell. Bell starts one click up, so its pitch 1 is G5.
var baseKeys = map[model.Instrument]uint8{
	model.Bass:  30,
	model.Harp:  54,
	model.Pling: 54,
	model.Bell:  78,
	model.Chime: 78,
}

// Every instrument gets its own channel so a player can assign patches.
var channels = map[model.Instrument]uint8{
	model.Harp:  0,
	model.Bass:  1,
	model.Bell:  2,
	model.Chime: 3,
	model.Pling: 4,
}

func Key(n model.Note) uint8 {
	return baseKeys[n.Instrument] + n.Pitch
}

// NoteForKey maps a MIDI key onto the note table, picking bass, harp or
// bell by range.
func NoteForKey(key uint8) (model.Note, bool) {
	switch {
	case key < baseKeys[model.Bass]:
		return model.Note{}, false
	case key < baseKeys[model.Harp]:
		return chord.NoteFor(model.Bass, key-baseKeys[model.Bass])
	case key <= baseKeys[model.Bell]:
		return chord.NoteFor(model.Harp, key-baseKeys[model.Harp])
	}
	return chord.NoteFor(model.Bell, key-baseKeys[model.Bell])
}
