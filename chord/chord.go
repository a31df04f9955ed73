package chord

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jsphweid/noteblock/model"
)

// pitchClasses starts at F#, the lowest note of every note block range.
var pitchClasses = [...]string{"F#", "G", "G#", "A", "A#", "B", "C", "C#", "D", "D#", "E", "F"}

type noteRange struct {
	instrument model.Instrument
	octave     int
	lo, hi     uint8
}

// Bass and bell give up their F# endpoints to harp.
var ranges = []noteRange{
	{model.Bass, 1, 0, 23},
	{model.Harp, 3, 0, 24},
	{model.Bell, 5, 1, 24},
}

type pitchKey struct {
	instrument model.Instrument
	pitch      uint8
}

var notes, byPitch = buildNoteTable()

// TokenFor names a pitch the way song files spell it. Octave numbers roll
// over at A, so F#3 G3 G#3 are followed by A4.
func TokenFor(octave int, pitch uint8) string {
	idx := int(pitch) % 12
	o := octave + int(pitch)/12
	if idx >= 3 {
		o++
	}
	return fmt.Sprintf("%s%d", pitchClasses[idx], o)
}

func buildNoteTable() (map[string]model.Note, map[pitchKey]model.Note) {
	res := make(map[string]model.Note)
	rev := make(map[pitchKey]model.Note)
	for _, r := range ranges {
		for p := r.lo; p <= r.hi; p++ {
			token := TokenFor(r.octave, p)
			n := model.Note{Token: token, Instrument: r.instrument, Pitch: p}
			res[token] = n
			rev[pitchKey{r.instrument, p}] = n
		}
	}
	return res, rev
}

func LookupNote(token string) (model.Note, bool) {
	n, ok := notes[token]
	return n, ok
}

// NoteFor is the reverse of LookupNote.
func NoteFor(i model.Instrument, pitch uint8) (model.Note, bool) {
	n, ok := byPitch[pitchKey{i, pitch}]
	return n, ok
}

func NumNotes() int {
	return len(notes)
}

func Parse(tokens []string) (model.Chord, error) {
	res := make(model.Chord, 0, len(tokens))
	for _, token := range tokens {
		n, ok := LookupNote(token)
		if !ok {
			return nil, fmt.Errorf("unknown note %q", token)
		}
		res = append(res, n)
	}
	return res, nil
}

func CreateChordKey(c model.Chord) string {
	tokens := make([]string, 0, len(c))
	for _, n := range c {
		tokens = append(tokens, n.Token)
	}
	sort.Strings(tokens)
	return strings.Join(tokens, "-")
}
