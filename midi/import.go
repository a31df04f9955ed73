package midi

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/noteblock/model"
	"github.com/jsphweid/noteblock/song"
	"github.com/jsphweid/noteblock/util"
)

// Import is a song recovered from a MIDI file.
type Import struct {
	Song model.Song
	// Skipped counts note-ons whose key has no note block.
	Skipped int
}

// ToSong turns every distinct note-on time into an event lasting until the
// next one; the last event runs to the final note-off. Durations are
// measured in quarter notes.
func ToSong(s *smf.SMF) (Import, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || ticks == 0 {
		return Import{}, fmt.Errorf("unsupported midi time format %v", s.TimeFormat)
	}
	resolution := int(ticks)

	onsets := map[int64]map[uint8]bool{}
	var end int64
	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, key, vel uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &vel) && vel > 0:
				if onsets[absTicks] == nil {
					onsets[absTicks] = map[uint8]bool{}
				}
				onsets[absTicks][key] = true
			case event.Message.GetNoteOn(&channel, &key, &vel),
				event.Message.GetNoteOff(&channel, &key, &vel):
				end = util.Max(end, absTicks)
			}
		}
	}
	if len(onsets) == 0 {
		return Import{}, fmt.Errorf("midi file has no notes")
	}

	times := util.GetKeysSorted(onsets)
	var res Import
	var events []model.Event
	if times[0] > 0 {
		events = append(events, model.Event{Chord: model.Chord{}, Beats: beats(times[0], resolution)})
	}
	for i, at := range times {
		next := end
		if i+1 < len(times) {
			next = times[i+1]
		}
		if next <= at {
			next = at + int64(resolution)
		}

		c := model.Chord{}
		for _, key := range util.GetKeysSorted(onsets[at]) {
			n, ok := NoteForKey(key)
			if !ok {
				res.Skipped++
				continue
			}
			c = append(c, n)
		}
		events = append(events, model.Event{Chord: c, Beats: beats(next-at, resolution)})
	}

	lcd := 1
	for _, ev := range events {
		lcd = util.LCM(lcd, ev.Beats.Denom)
	}
	sng, err := song.Rescale(model.Song{Events: events}, lcd)
	if err != nil {
		return Import{}, err
	}
	res.Song = sng
	return res, nil
}

func beats(ticks int64, resolution int) model.Fraction {
	g := util.GCD(ticks, int64(resolution))
	return model.Fraction{Num: int(ticks / g), Denom: int(int64(resolution) / g)}
}
