package song

import (
	"errors"
	"testing"

	"github.com/jsphweid/noteblock/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twinkle = `# twinkle
C4 1
C4 1
G4 E4 1/2
G4 1/2
A5 3/4

F#1 F#3 G5 1/4
`

func TestParse(t *testing.T) {
	s, err := ParseString(twinkle)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Len(s.Events, 6)
	assert.Equal(4, s.LCD)
	assert.Equal([]int{4, 4, 2, 2, 3, 1}, durations(s))
	assert.Equal(16, s.Length)
	assert.Len(s.Events[2].Chord, 2)
	assert.Equal(model.Fraction{Num: 3, Denom: 4}, s.Events[4].Beats)
}

func TestParseRestLine(t *testing.T) {
	s, err := ParseString("C4 1\n1/2\nE4 1\n")
	require.NoError(t, err)
	assert.Empty(t, s.Events[1].Chord)
	assert.Equal(t, 5, s.Length)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"unknown note":  "C4 1\nX4 1\n",
		"bad duration":  "C4 one\n",
		"zero duration": "C4 0\n",
		"zero denom":    "C4 1/0\n",
		"empty":         "# nothing\n\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseString(text)
			assert.True(t, errors.Is(err, ErrSyntax), "%v", err)
		})
	}
}

func TestParseErrorReportsLine(t *testing.T) {
	_, err := ParseString("C4 1\n\nE4 1\nQ9 1\n")
	assert.ErrorContains(t, err, "line 4")
}

func TestLengthIsSumOfScaledDurations(t *testing.T) {
	s, err := ParseString(twinkle)
	require.NoError(t, err)

	var total int
	for _, ev := range s.Events {
		total += Scale(s.LCD, ev.Beats)
	}
	assert.Equal(t, total, s.Length)
}

func TestLengthInvariantUnderLargerCommonMultiple(t *testing.T) {
	s, err := ParseString(twinkle)
	require.NoError(t, err)

	for _, k := range []int{2, 3, 5, 12} {
		bigger, err := Rescale(s, s.LCD*k)
		require.NoError(t, err)
		// same length in whole units
		assert.Equal(t, s.Length*bigger.LCD, bigger.Length*s.LCD)
		assert.Equal(t, s.Length*k, bigger.Length)
	}

	_, err = Rescale(s, 6)
	assert.Error(t, err)
}

func TestTemposStrictlyDecreasingAboveMinimum(t *testing.T) {
	s, err := ParseString(twinkle)
	require.NoError(t, err)

	for _, minBPM := range []float64{10, 37.5, 60, 100, 299} {
		tempos, err := Tempos(s, minBPM)
		require.NoError(t, err)
		for i, tempo := range tempos {
			assert.GreaterOrEqual(t, tempo.BPM, minBPM)
			assert.Equal(t, i+1, tempo.Interval)
			if i > 0 {
				assert.Less(t, tempo.BPM, tempos[i-1].BPM)
			}
		}
		if len(tempos) > 0 {
			next := BPM(s.LCD, len(tempos)+1)
			assert.Less(t, next, minBPM)
		}
	}
}

func TestTemposValues(t *testing.T) {
	s, err := ParseString("C4 1/2\n")
	require.NoError(t, err)

	tempos, err := Tempos(s, 200)
	require.NoError(t, err)
	// 20 ticks per second, 2 steps per unit: 600 / interval bpm
	assert.Equal(t, []model.Tempo{{BPM: 600, Interval: 1}, {BPM: 300, Interval: 2}, {BPM: 200, Interval: 3}}, tempos)

	_, err = Tempos(s, 0)
	assert.Error(t, err)
}

func TestTemposAreCapped(t *testing.T) {
	s, err := ParseString("C4 1\n")
	require.NoError(t, err)

	for _, minBPM := range []float64{1e-9, 1e-3, 1} {
		tempos, err := Tempos(s, minBPM)
		require.NoError(t, err)
		require.Len(t, tempos, MaxInterval)
		assert.Equal(t, MaxInterval, tempos[len(tempos)-1].Interval)
	}

	// 1200 / 1024 is just above 1 bpm, so a minimum of 2 stops first
	tempos, err := Tempos(s, 2)
	require.NoError(t, err)
	assert.Len(t, tempos, 600)
}

func durations(s model.Song) []int {
	var res []int
	for _, ev := range s.Events {
		res = append(res, ev.Duration)
	}
	return res
}

func TestFormatParsesBack(t *testing.T) {
	text := "C4 E4 1\n3/4\nG5 F#1 1/4\nA5 2\n"
	s, err := ParseString(text)
	require.NoError(t, err)
	assert.Equal(t, text, Format(s))

	again, err := ParseString(Format(s))
	require.NoError(t, err)
	assert.Equal(t, s, again)
}
