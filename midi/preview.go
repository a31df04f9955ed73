package midi

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/noteblock/model"
	"github.com/jsphweid/noteblock/util"
)

const velocity = 100

type timedMessage struct {
	tick int
	off  bool
	msg  midi.Message
}

// FromSong builds a single-track file with one quarter note per song unit,
// so a step of 1/LCD is exactly one MIDI tick.
func FromSong(s model.Song, bpm float64) (*smf.SMF, error) {
	if s.LCD <= 0 || s.LCD > math.MaxUint16 {
		return nil, fmt.Errorf("song resolution %d does not fit a midi header", s.LCD)
	}
	if bpm <= 0 {
		return nil, fmt.Errorf("bpm must be positive, got %v", bpm)
	}

	var msgs []timedMessage
	offset := 0
	for _, ev := range s.Events {
		for _, n := range ev.Chord {
			ch, key := channels[n.Instrument], Key(n)
			msgs = append(msgs,
				timedMessage{tick: offset, msg: midi.NoteOn(ch, key, velocity)},
				timedMessage{tick: offset + ev.Duration, off: true, msg: midi.NoteOff(ch, key)},
			)
		}
		offset += ev.Duration
	}
	// note offs go first so a repeated key is released before it is struck again
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].off && !msgs[j].off
	})

	var track smf.Track
	track = append(track, smf.Event{Message: smf.MetaTempo(bpm)})
	last := 0
	for _, m := range msgs {
		track = append(track, smf.Event{Delta: uint32(m.tick - last), Message: smf.Message(m.msg)})
		last = m.tick
	}
	track.Close(0)

	var res smf.SMF
	res.TimeFormat = smf.MetricTicks(s.LCD)
	res.Tracks = append(res.Tracks, track)
	return &res, nil
}

func WriteSong(w io.Writer, s model.Song, bpm float64) error {
	mf, err := FromSong(s, bpm)
	if err != nil {
		return err
	}
	_, err = mf.WriteTo(w)
	return err
}

// WriteSongFile returns the number of bytes written.
func WriteSongFile(path string, s model.Song, bpm float64) (int, error) {
	var buf bytes.Buffer
	if err := WriteSong(&buf, s, bpm); err != nil {
		return 0, err
	}
	if err := util.WriteFile(path, buf.Bytes()); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}
