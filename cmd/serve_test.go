package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/noteblock/block"
	"github.com/jsphweid/noteblock/model"
	"github.com/jsphweid/noteblock/schematic"
	"github.com/jsphweid/noteblock/song"
)

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	switch b := body.(type) {
	case string:
		data = []byte(b)
	default:
		var err error
		data, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var res model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestHandleTempos(t *testing.T) {
	useTempConfig(t)
	w := post(t, NewRouter(), "/tempos", model.TemposRequestBody{Song: twoNotes, MinBPM: 300})
	require.Equal(t, http.StatusOK, w.Code)

	var res model.TemposResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, model.TemposResponse{
		Events: 2,
		LCD:    1,
		Length: 2,
		Tempos: []model.Tempo{{BPM: 1200, Interval: 1}, {BPM: 600, Interval: 2}, {BPM: 400, Interval: 3}, {BPM: 300, Interval: 4}},
	}, res)
}

func TestHandleTemposUsesConfiguredMinimum(t *testing.T) {
	useTempConfig(t)
	cfg.MinBPM = 600
	w := post(t, NewRouter(), "/tempos", `{"song": "C4 1\n"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res model.TemposResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.Tempos, 2)
}

func TestInvalidBodiesAreRejected(t *testing.T) {
	cases := []struct {
		name string
		path string
		body string
	}{
		{"not json", "/tempos", `{"song":`},
		{"missing song", "/tempos", `{"min_bpm": 60}`},
		{"empty song", "/tempos", `{"song": ""}`},
		{"negative bpm", "/tempos", `{"song": "C4 1", "min_bpm": -1}`},
		{"unknown field", "/tempos", `{"song": "C4 1", "bpm": 60}`},
		{"missing rows", "/generate", `{"song": "C4 1"}`},
		{"zero rows", "/generate", `{"song": "C4 1", "rows": 0}`},
		{"fractional interval", "/generate", `{"song": "C4 1", "rows": 16, "interval": 1.5}`},
		{"rows as string", "/generate", `{"song": "C4 1", "rows": "16"}`},
		{"odd rows", "/generate", `{"song": "C4 1", "rows": 15}`},
		{"tiny tempo minimum", "/tempos", `{"song": "C4 1", "min_bpm": 1e-9}`},
		{"tiny generate minimum", "/generate", `{"song": "C4 1", "rows": 16, "min_bpm": 0.001}`},
		{"interval past the last option", "/generate", `{"song": "C4 1", "rows": 16, "interval": 1025}`},
	}
	useTempConfig(t)
	router := NewRouter()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := post(t, router, c.path, c.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			res := decodeError(t, w)
			assert.NotEmpty(t, res.Error)
			assert.Equal(t, w.Header().Get(requestIDHeader), res.RequestID)
		})
	}
}

func TestTemposWithoutMinimumFromStruct(t *testing.T) {
	useTempConfig(t)
	cfg.MinBPM = 300
	w := post(t, NewRouter(), "/tempos", model.TemposRequestBody{Song: twoNotes})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res model.TemposResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.Tempos, 4)
}

func TestLowestTempoMinimumIsBounded(t *testing.T) {
	useTempConfig(t)
	w := post(t, NewRouter(), "/tempos", model.TemposRequestBody{Song: twoNotes, MinBPM: 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res model.TemposResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.Tempos, song.MaxInterval)
}

func TestHugeSongIsRejected(t *testing.T) {
	useTempConfig(t)
	w := post(t, NewRouter(), "/generate", model.GenerateRequestBody{Song: "C4 2000000000\n", Rows: 16, Interval: 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "cells")
}

func TestOversizedBodyIsRejected(t *testing.T) {
	useTempConfig(t)
	cfg.Serve.MaxBodyBytes = 16
	w := post(t, NewRouter(), "/tempos", model.TemposRequestBody{Song: strings.Repeat("C4 1\n", 10)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBadSongIsRejected(t *testing.T) {
	useTempConfig(t)
	w := post(t, NewRouter(), "/tempos", model.TemposRequestBody{Song: "C4 1\nQ9 1\n"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "line 2")
}

func TestHandleGenerate(t *testing.T) {
	useTempConfig(t)
	w := post(t, NewRouter(), "/generate", model.GenerateRequestBody{Song: twoNotes, Rows: 16, Interval: 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert := assert.New(t)
	assert.Equal("application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal("300", w.Header().Get("X-Noteblock-Bpm"))
	assert.Equal("4", w.Header().Get("X-Noteblock-Interval"))

	c, err := schematic.Read(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(34, c.Height())
	assert.Equal(2, c.Width())
	assert.Equal(21, c.Depth())
	assert.Equal(2, c.Count(block.NoteBlock))
	assert.Len(c.Entities(), 2)
}

func TestHandleGeneratePicksFastestBuildableTempo(t *testing.T) {
	useTempConfig(t)
	w := post(t, NewRouter(), "/generate", model.GenerateRequestBody{Song: twoNotes, Rows: 16})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2", w.Header().Get("X-Noteblock-Interval"))
	assert.Equal(t, "600", w.Header().Get("X-Noteblock-Bpm"))
}

func TestHandleGenerateUnbuildable(t *testing.T) {
	useTempConfig(t)
	router := NewRouter()

	w := post(t, router, "/generate", model.GenerateRequestBody{Song: twoNotes, Rows: 2, Interval: 1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "torch tower")

	chord := "F#3 G3 G#3 A4 A#4 B4 C4 C#4 D4 D#4 E4 F4 F#4 G4 G#4 A5 1\n"
	w = post(t, router, "/generate", model.GenerateRequestBody{Song: chord, Rows: 16, Interval: 4})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "polyphony")

	w = post(t, router, "/generate", model.GenerateRequestBody{Song: twoNotes, Rows: 16, MinBPM: 5000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDAndCORS(t *testing.T) {
	useTempConfig(t)
	router := NewRouter()

	w := post(t, router, "/tempos", model.TemposRequestBody{Song: twoNotes})
	assert := assert.New(t)
	_, err := uuid.Parse(w.Header().Get(requestIDHeader))
	assert.NoError(err)
	assert.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodPost, "/tempos", strings.NewReader(`{"song": "C4 1"}`))
	req.Header.Set(requestIDHeader, id)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(id, rec.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/tempos", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(http.StatusMethodNotAllowed, rec.Code)
}
