package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/cobra"

	"github.com/jsphweid/noteblock/clock"
	"github.com/jsphweid/noteblock/generator"
	"github.com/jsphweid/noteblock/layout"
	"github.com/jsphweid/noteblock/model"
	"github.com/jsphweid/noteblock/schematic"
	"github.com/jsphweid/noteblock/song"
)

const requestIDHeader = "X-Request-Id"

var temposSchema = jsonschema.MustCompileString("tempos.json", `{
	"type": "object",
	"required": ["song"],
	"additionalProperties": false,
	"properties": {
		"song": {"type": "string", "minLength": 1},
		"min_bpm": {"type": "number", "minimum": 1}
	}
}`)

var generateSchema = jsonschema.MustCompileString("generate.json", fmt.Sprintf(`{
	"type": "object",
	"required": ["song", "rows"],
	"additionalProperties": false,
	"properties": {
		"song": {"type": "string", "minLength": 1},
		"rows": {"type": "integer", "minimum": 2, "maximum": 256, "multipleOf": 2},
		"interval": {"type": "integer", "minimum": 1, "maximum": %d},
		"min_bpm": {"type": "number", "minimum": 1}
	}
}`, song.MaxInterval))

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the generator over HTTP",
	Long:  `Serves POST /tempos and POST /generate on the configured address.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("serving")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(withRequestID, requestLogger(logger))
	router.HandleFunc("/tempos", HandleTempos).Methods(http.MethodPost)
	router.HandleFunc("/generate", HandleGenerate).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Serve.AllowedOrigins,
		AllowedMethods: []string{http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{requestIDHeader, "X-Noteblock-Bpm", "X-Noteblock-Interval"},
	})
	return c.Handler(router)
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func requestLogger(l zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			event := l.Info()
			if rec.status >= 500 {
				event = l.Error()
			} else if rec.status >= 400 {
				event = l.Warn()
			}
			event.
				Str("request_id", w.Header().Get(requestIDHeader)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Int("bytes", rec.bytes).
				Msg("http_request")
		})
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{
		Error:     err.Error(),
		RequestID: w.Header().Get(requestIDHeader),
	})
}

// decodeBody reads at most the configured body size, checks it against
// sch and decodes it into v.
func decodeBody(w http.ResponseWriter, r *http.Request, sch *jsonschema.Schema, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, cfg.Serve.MaxBodyBytes))
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("request body is not json: %w", err)
	}
	if err := sch.Validate(raw); err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, song.ErrSyntax):
		return http.StatusBadRequest
	case errors.Is(err, layout.ErrPolyphony), errors.Is(err, clock.ErrInfeasible):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generator.ErrOptions):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func HandleTempos(w http.ResponseWriter, r *http.Request) {
	var input model.TemposRequestBody
	if err := decodeBody(w, r, temposSchema, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if input.MinBPM == 0 {
		input.MinBPM = cfg.MinBPM
	}
	s, err := song.ParseString(input.Song)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	tempos, err := song.Tempos(s, input.MinBPM)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if tempos == nil {
		tempos = []model.Tempo{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.TemposResponse{
		Events: len(s.Events),
		LCD:    s.LCD,
		Length: s.Length,
		Tempos: tempos,
	})
}

// HandleGenerate responds with the gzipped schematic. The chosen tempo goes
// out in headers.
func HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var input model.GenerateRequestBody
	if err := decodeBody(w, r, generateSchema, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s, err := song.ParseString(input.Song)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	res, tempo, err := generateFor(s, input)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	var buf bytes.Buffer
	if err := schematic.Write(&buf, res.Canvas); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="song.schematic"`)
	w.Header().Set("X-Noteblock-Bpm", strconv.FormatFloat(tempo.BPM, 'f', -1, 64))
	w.Header().Set("X-Noteblock-Interval", strconv.Itoa(tempo.Interval))
	w.Write(buf.Bytes())
}

func generateFor(s model.Song, input model.GenerateRequestBody) (*generator.Result, model.Tempo, error) {
	o, err := options(input.Rows, input.Interval)
	if err != nil {
		return nil, model.Tempo{}, err
	}
	if input.Interval > 0 {
		tempo := model.Tempo{BPM: song.BPM(s.LCD, input.Interval), Interval: input.Interval}
		res, err := generator.Generate(s, o)
		return res, tempo, err
	}
	minBPM := input.MinBPM
	if minBPM == 0 {
		minBPM = cfg.MinBPM
	}
	tempos, err := song.Tempos(s, minBPM)
	if err != nil {
		return nil, model.Tempo{}, err
	}
	if len(tempos) == 0 {
		return nil, model.Tempo{}, fmt.Errorf("%w: no tempo at or above %v bpm", generator.ErrOptions, minBPM)
	}
	return generator.FirstFeasible(s, o, tempos)
}
