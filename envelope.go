package fps

import "github.com/smnsjas/fps/internal/envelope"

// Format selects how the Success stream is deserialized.
type Format = envelope.Format

// The three formats a call may request.
const (
	FormatJSON   = envelope.FormatJSON
	FormatString = envelope.FormatString
	FormatNone   = envelope.FormatNone
)

// StreamsResult is the decoded form of one envelope: six ordered
// sequences, one per PowerShell output stream.
type StreamsResult = envelope.StreamsResult
