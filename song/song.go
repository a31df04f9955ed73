// Package song reads note files: one event per line, note tokens followed by
// a duration that is either a whole number of units or "num/denom".
package song

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jsphweid/noteblock/chord"
	"github.com/jsphweid/noteblock/constants"
	"github.com/jsphweid/noteblock/model"
	"github.com/jsphweid/noteblock/util"
)

var ErrSyntax = errors.New("song syntax error")

func syntaxError(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, line, fmt.Sprintf(format, args...))
}

func ParseFile(path string) (model.Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Song{}, err
	}
	defer f.Close()
	return Parse(f)
}

func ParseString(s string) (model.Song, error) {
	return Parse(strings.NewReader(s))
}

func Parse(r io.Reader) (model.Song, error) {
	var events []model.Event
	lcd := 1

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens := strings.Fields(line)
		beats, err := ParseFraction(tokens[len(tokens)-1])
		if err != nil {
			return model.Song{}, syntaxError(lineNum, "%v", err)
		}
		c, err := chord.Parse(tokens[:len(tokens)-1])
		if err != nil {
			return model.Song{}, syntaxError(lineNum, "%v", err)
		}
		events = append(events, model.Event{Chord: c, Beats: beats})
		lcd = util.LCM(lcd, beats.Denom)
	}
	if err := scanner.Err(); err != nil {
		return model.Song{}, err
	}
	if len(events) == 0 {
		return model.Song{}, fmt.Errorf("%w: no events", ErrSyntax)
	}
	return Rescale(model.Song{Events: events}, lcd)
}

// ParseFraction reads "n" or "num/denom". Zero and negative durations are
// rejected.
func ParseFraction(token string) (model.Fraction, error) {
	num, denom := token, "1"
	if i := strings.IndexByte(token, '/'); i >= 0 {
		num, denom = token[:i], token[i+1:]
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return model.Fraction{}, fmt.Errorf("bad duration %q", token)
	}
	d, err := strconv.Atoi(denom)
	if err != nil || d <= 0 {
		return model.Fraction{}, fmt.Errorf("bad duration %q", token)
	}
	if n <= 0 {
		return model.Fraction{}, fmt.Errorf("duration %q must be positive", token)
	}
	return model.Fraction{Num: n, Denom: d}, nil
}

// Scale converts f to a count of 1/lcd units. lcd must be a multiple of
// f.Denom.
func Scale(lcd int, f model.Fraction) int {
	return f.Num * (lcd / f.Denom)
}

// Rescale recomputes every event's Duration and the song Length for a new
// common denominator, which must be a multiple of every event's denominator.
func Rescale(s model.Song, lcd int) (model.Song, error) {
	events := make([]model.Event, len(s.Events))
	durations := make([]int, len(s.Events))
	for i, ev := range s.Events {
		if lcd <= 0 || lcd%ev.Beats.Denom != 0 {
			return model.Song{}, fmt.Errorf("%d is not a multiple of denominator %d", lcd, ev.Beats.Denom)
		}
		ev.Duration = Scale(lcd, ev.Beats)
		events[i] = ev
		durations[i] = ev.Duration
	}
	return model.Song{Events: events, LCD: lcd, Length: int(util.Sum(durations))}, nil
}

// BPM is the tempo of one unit when every 1/LCD step lasts interval ticks.
func BPM(lcd, interval int) float64 {
	return 60.0 * constants.TicksPerSecond / float64(interval*lcd)
}

// MaxInterval is the slowest step Tempos offers, about 51 seconds.
const MaxInterval = 1024

// Tempos lists the tempo options at or above minBPM, fastest first, and
// never more than MaxInterval of them. The interval is the number of game
// ticks per 1/LCD step.
func Tempos(s model.Song, minBPM float64) ([]model.Tempo, error) {
	if minBPM <= 0 {
		return nil, fmt.Errorf("minimum bpm must be positive, got %v", minBPM)
	}
	if s.LCD <= 0 {
		return nil, fmt.Errorf("song has no time base")
	}
	var res []model.Tempo
	for interval := 1; interval <= MaxInterval; interval++ {
		bpm := BPM(s.LCD, interval)
		if bpm < minBPM {
			break
		}
		res = append(res, model.Tempo{BPM: bpm, Interval: interval})
	}
	return res, nil
}

func FormatFraction(f model.Fraction) string {
	if f.Denom == 1 {
		return strconv.Itoa(f.Num)
	}
	return fmt.Sprintf("%d/%d", f.Num, f.Denom)
}

// Format writes s back out in the note file syntax.
func Format(s model.Song) string {
	var b strings.Builder
	for _, ev := range s.Events {
		for _, n := range ev.Chord {
			b.WriteString(n.Token)
			b.WriteByte(' ')
		}
		b.WriteString(FormatFraction(ev.Beats))
		b.WriteByte('\n')
	}
	return b.String()
}
