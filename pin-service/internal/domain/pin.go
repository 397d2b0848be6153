package domain

// ScopeIssuePins is the token scope required to draw PINs from a stream when
// auth is enabled.
const ScopeIssuePins = "pins:issue"

// IssuePinsRequest is the query of an issue request.
type IssuePinsRequest struct {
	Count int `form:"count"`
}

// IssuedPins is a batch of freshly issued PINs.
type IssuedPins struct {
	StreamID   string   `json:"stream_id"`
	Pins       []string `json:"pins"`
	Generation uint64   `json:"generation"`
}

// StreamStatus describes where a stream is within its current key.
// Remaining counts indices left to visit, some of which may be skipped as
// obvious.
type StreamStatus struct {
	StreamID   string `json:"stream_id"`
	Index      uint64 `json:"index"`
	Generation uint64 `json:"generation"`
	SpaceSize  uint64 `json:"space_size"`
	Remaining  uint64 `json:"remaining"`
	Length     int    `json:"length"`
	Alphabet   string `json:"alphabet"`
}

// ValidatePinRequest asks whether a PIN could have been issued.
type ValidatePinRequest struct {
	Pin string `json:"pin" binding:"required"`
}

// Reasons a PIN fails validation.
const (
	ReasonLength   = "length"
	ReasonAlphabet = "alphabet"
	ReasonObvious  = "obvious"
)

// ValidatePinResponse reports whether a PIN is well-formed and non-obvious.
type ValidatePinResponse struct {
	Pin    string `json:"pin"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}
