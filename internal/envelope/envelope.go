// Package envelope decodes the JSON object the wrapper script emits per
// command into a typed StreamsResult.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecode is wrapped into every error this package returns, so callers
// can distinguish a malformed envelope from any other failure.
var ErrDecode = errors.New("envelope: decode failed")

// Format selects how the Success stream was serialized by the wrapper.
type Format string

const (
	FormatJSON   Format = "json"
	FormatString Format = "string"
	FormatNone   Format = "none"
)

// outerEnvelope is the top-level object the wrapper emits on stdout,
// framed by HEAD/TAIL: a single "result" key holding the six stream fields
// plus the recorded format.
type outerEnvelope struct {
	Result *rawEnvelope `json:"result"`
}

// rawEnvelope mirrors the inner "result" object. Success is left as
// json.RawMessage because its shape depends on format: a JSON string
// holding re-serialized JSON for "json"/"string", or a bare JSON array for
// "none".
type rawEnvelope struct {
	Success json.RawMessage `json:"success"`
	Error   string          `json:"error"`
	Warning string          `json:"warning"`
	Verbose string          `json:"verbose"`
	Debug   string          `json:"debug"`
	Info    string          `json:"info"`
	Format  *string         `json:"format"`
}

// StreamsResult is the decoded form of one envelope: six ordered
// sequences, one per PowerShell output stream.
type StreamsResult struct {
	// Success holds the call's format-dependent output: []any for
	// FormatJSON, []string for FormatString, and the raw decoded array
	// for FormatNone.
	Success any
	Error   []string
	Warning []string
	Verbose []string
	Debug   []string
	Info    []string
}

// Empty reports whether every stream in r is empty, which is what an empty
// fragment produces.
func (r StreamsResult) Empty() bool {
	successEmpty := true
	switch v := r.Success.(type) {
	case []any:
		successEmpty = len(v) == 0
	case []string:
		successEmpty = len(v) == 0
	case nil:
		successEmpty = true
	}
	return successEmpty && len(r.Error) == 0 && len(r.Warning) == 0 &&
		len(r.Verbose) == 0 && len(r.Debug) == 0 && len(r.Info) == 0
}

// decodeError wraps ErrDecode with the offending payload, truncated, for
// diagnostics without dumping arbitrarily large script output into logs.
type decodeError struct {
	cause   error
	payload string
}

func (e *decodeError) Error() string {
	p := e.payload
	const max = 200
	if len(p) > max {
		p = p[:max] + "..."
	}
	return fmt.Sprintf("envelope: decode failed: %v (payload: %q)", e.cause, p)
}

func (e *decodeError) Unwrap() error { return ErrDecode }

func newDecodeError(cause error, payload string) error {
	return &decodeError{cause: cause, payload: payload}
}

// Decode parses a single framed payload into a StreamsResult. It returns
// an error wrapping ErrDecode if the payload is not valid JSON in the
// expected shape.
func Decode(payload []byte) (StreamsResult, error) {
	var outer outerEnvelope
	if err := json.Unmarshal(payload, &outer); err != nil {
		return StreamsResult{}, newDecodeError(err, string(payload))
	}
	if outer.Result == nil {
		return StreamsResult{}, newDecodeError(errors.New("missing result object"), string(payload))
	}
	raw := *outer.Result

	format := FormatNone
	if raw.Format != nil {
		format = Format(*raw.Format)
	}

	errs, err := decodeStringArray(raw.Error)
	if err != nil {
		return StreamsResult{}, newDecodeError(fmt.Errorf("error stream: %w", err), string(payload))
	}
	warnings, err := decodeStringArray(raw.Warning)
	if err != nil {
		return StreamsResult{}, newDecodeError(fmt.Errorf("warning stream: %w", err), string(payload))
	}
	verbose, err := decodeStringArray(raw.Verbose)
	if err != nil {
		return StreamsResult{}, newDecodeError(fmt.Errorf("verbose stream: %w", err), string(payload))
	}
	debug, err := decodeStringArray(raw.Debug)
	if err != nil {
		return StreamsResult{}, newDecodeError(fmt.Errorf("debug stream: %w", err), string(payload))
	}
	info, err := decodeStringArray(raw.Info)
	if err != nil {
		return StreamsResult{}, newDecodeError(fmt.Errorf("info stream: %w", err), string(payload))
	}

	success, err := decodeSuccess(raw.Success, format)
	if err != nil {
		return StreamsResult{}, newDecodeError(fmt.Errorf("success stream: %w", err), string(payload))
	}

	return StreamsResult{
		Success: success,
		Error:   errs,
		Warning: warnings,
		Verbose: verbose,
		Debug:   debug,
		Info:    info,
	}, nil
}

// decodeStringArray JSON-decodes a field that is always a compressed JSON
// array of Out-String results.
func decodeStringArray(field string) ([]string, error) {
	if field == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(field), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeSuccess decodes the success stream, whose representation depends
// on the requested format.
func decodeSuccess(raw json.RawMessage, format Format) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch format {
	case FormatJSON:
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, err
		}
		if inner == "" {
			return []any{}, nil
		}
		var v []any
		if err := json.Unmarshal([]byte(inner), &v); err != nil {
			return nil, err
		}
		return v, nil
	case FormatString:
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, err
		}
		if inner == "" {
			return []string{}, nil
		}
		var v []string
		if err := json.Unmarshal([]byte(inner), &v); err != nil {
			return nil, err
		}
		return v, nil
	default: // FormatNone: raw is already the unconverted array, not a string.
		var v []any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
