package dare

import "errors"

// ErrConfigRejected is wrapped by Encoder.Configure/Decoder.Configure when a
// caller-supplied limit is out of range. Encoder.Set's per-frame path never
// returns this — an out-of-range (r, w) there is surfaced as a plain bool,
// not an error.
var ErrConfigRejected = errors.New("dare: configuration rejected")

// ConfigError reports which configuration value was rejected and why.
type ConfigError struct {
	Field string
	Value int
	Msg   string
}

func (e *ConfigError) Error() string {
	return "dare: config rejected: " + e.Field + ": " + e.Msg
}

func (e *ConfigError) Unwrap() error {
	return ErrConfigRejected
}
