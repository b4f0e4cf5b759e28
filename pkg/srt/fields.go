package srt

import "regexp"

const (
	F_LAT = iota
	F_LON
	F_ALT
)

// FieldRule maps a labelled-value pattern to a telemetry field. The
// label vocabulary varies by drone model and firmware; new models add
// rows here, not code. Rules are tried in order, first match wins.
type FieldRule struct {
	Rx *regexp.Regexp
	Id int
}

const num = `([-+]?\d+(?:\.\d+)?)`

var field_rules = []FieldRule{
	{regexp.MustCompile(`(?i)\b(?:latitude|lat)\s*[:=]\s*` + num), F_LAT},
	// "longtitude" is a genuine misspelling in some DJI firmware
	{regexp.MustCompile(`(?i)\b(?:longitude|longtitude|lng|lon)\s*[:=]\s*` + num), F_LON},
	{regexp.MustCompile(`(?i)\b(?:altitude|rel_alt|alt|ele)\s*[:=]\s*` + num), F_ALT},
}
