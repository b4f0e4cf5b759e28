package types

import "fmt"

// FormatError means the input has no recognisable subtitle block
// structure at all. Fatal for the run.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "srt: " + e.Reason
}

// RecordError means a single block lacks a decodable timestamp or
// coordinate pair. Recoverable; Block locates the offending entry.
type RecordError struct {
	Block  int
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("block %d: %s", e.Block, e.Reason)
}

// EncodingError means the source text is not valid UTF-8. Fatal.
type EncodingError struct {
	Offset int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("invalid UTF-8 at byte %d", e.Offset)
}
