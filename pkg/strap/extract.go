package strap

import (
	"strconv"
	"strings"
	"unicode"
)

// Marker is the token that demarcates the start of telemetry content on
// a line. An optional generation digit may follow (@strap1, @strap2).
const Marker = "@strap"

// Record maps field names to measured values for one input line.
// Absent keys mean "no measurement", not zero.
type Record map[string]float64

// ExtractLine parses one line into a Record.
//
// If the line contains the marker, everything up to and including the
// marker token is discarded and the remainder is parsed. Without a
// marker the whole line is parsed when permissive is true, otherwise
// the line is treated as non-telemetry noise and an empty Record is
// returned.
//
// The remainder is split on whitespace runs and grouped into
// (key, value) pairs. Values that do not parse as float64 are dropped
// along with their key; a trailing unpaired token is dropped. Duplicate
// keys within one line are last-write-wins. Extraction never fails on
// malformed data.
func ExtractLine(line string, permissive bool) Record {
	result := Record{}
	trimmed := strings.TrimSpace(line)

	if pos := strings.Index(trimmed, Marker); pos >= 0 {
		afterMarker := trimmed[pos:]
		ws := strings.IndexFunc(afterMarker, unicode.IsSpace)
		if ws < 0 {
			// Marker with nothing after it
			return result
		}
		trimmed = strings.TrimLeftFunc(afterMarker[ws:], unicode.IsSpace)
	} else if !permissive {
		return result
	}

	tokens := strings.Fields(trimmed)
	for i := 0; i+1 < len(tokens); i += 2 {
		value, err := strconv.ParseFloat(tokens[i+1], 64)
		if err != nil {
			continue
		}
		result[tokens[i]] = value
	}

	return result
}
