package model

type TemposRequestBody struct {
	Song   string  `json:"song"`
	MinBPM float64 `json:"min_bpm,omitempty"`
}

type TemposResponse struct {
	Events int     `json:"events"`
	LCD    int     `json:"lcd"`
	Length int     `json:"length"`
	Tempos []Tempo `json:"tempos"`
}

// GenerateRequestBody builds at Interval when it is set, otherwise at the
// fastest tempo at or above MinBPM that fits the clock.
type GenerateRequestBody struct {
	Song     string  `json:"song"`
	Rows     int     `json:"rows"`
	Interval int     `json:"interval,omitempty"`
	MinBPM   float64 `json:"min_bpm,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}
