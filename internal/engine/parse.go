package engine

import (
	"strconv"
	"strings"
)

// Info is the payload of one parsed informational engine line: the reported
// evaluation and, when present, the principal variation.
type Info struct {
	Eval Eval
	PV   string
}

// ParseInfo extracts an evaluation and optional principal variation from one
// line of engine output. It returns false for any line that does not carry a
// "score" fragment of the expected shape; malformed or partial lines are
// never an error, just not a match.
func ParseInfo(line string) (Info, bool) {
	fields := strings.Fields(line)

	scoreAt := -1
	for i, f := range fields {
		if f == "score" {
			scoreAt = i
			break
		}
	}
	if scoreAt < 0 || scoreAt+1 >= len(fields) {
		return Info{}, false
	}

	var info Info
	switch fields[scoreAt+1] {
	case "cp":
	case "mate":
		info.Eval.Mate = true
	default:
		return Info{}, false
	}

	// A missing or non-numeric magnitude defaults to zero.
	if scoreAt+2 < len(fields) {
		if v, err := strconv.Atoi(fields[scoreAt+2]); err == nil {
			info.Eval.Value = v
		}
	}

	for i, f := range fields {
		if f == "pv" && i+1 < len(fields) {
			info.PV = strings.Join(fields[i+1:], " ")
			break
		}
	}

	return info, true
}
