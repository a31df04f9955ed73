//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/noteblock/block"
	"github.com/jsphweid/noteblock/cmd"
	"github.com/jsphweid/noteblock/generator"
	"github.com/jsphweid/noteblock/midi"
	"github.com/jsphweid/noteblock/model"
	"github.com/jsphweid/noteblock/schematic"
	"github.com/jsphweid/noteblock/song"
)

const scale = `# c major, one octave
C4 1
D4 1
E4 1
F4 1
G4 1/2
A5 1/2
B5 1/2
C5 E5 G5 3/2
`

func TestSongToSchematicFile(t *testing.T) {
	s, err := song.ParseString(scale)
	require.NoError(t, err)

	tempos, err := song.Tempos(s, 60)
	require.NoError(t, err)
	res, tempo, err := generator.FirstFeasible(s, generator.DefaultOptions(16, 0), tempos)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "scale.schematic")
	n, err := schematic.WriteFile(path, res.Canvas)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)

	back, err := schematic.ReadFile(path)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(int64(n), info.Size())
	assert.Greater(tempo.BPM, 60.0)
	assert.Equal(res.Canvas.Kinds(), back.Kinds())
	assert.Equal(res.Canvas.States(), back.States())
	assert.Equal(10, back.Count(block.NoteBlock))
	assert.Len(back.Entities(), 10)
}

func TestSongSurvivesMidiRoundTrip(t *testing.T) {
	s, err := song.ParseString(scale)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "scale.mid")
	_, err = midi.WriteSongFile(path, s, 120)
	require.NoError(t, err)

	mf, err := midi.ReadMidiFile(path)
	require.NoError(t, err)
	imp, err := midi.ToSong(mf)
	require.NoError(t, err)

	back, err := song.ParseString(song.Format(imp.Song))
	require.NoError(t, err)
	assert.Equal(t, song.Format(s), song.Format(back))
}

func TestGenerateOverHTTP(t *testing.T) {
	srv := httptest.NewServer(cmd.NewRouter())
	defer srv.Close()

	data, err := json.Marshal(model.GenerateRequestBody{Song: scale, Rows: 16})
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/generate", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	c, err := schematic.Read(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 10, c.Count(block.NoteBlock))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}
