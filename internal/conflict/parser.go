package conflict

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/matsen/quickbib/internal/bib"
	"github.com/matsen/quickbib/internal/storage"
)

// Parser state machine states
type parserState int

const (
	stateNormal parserState = iota
	stateInOurs
	stateInTheirs
)

// Conflict marker prefixes
const (
	oursMarker      = "<<<<<<<"
	baseMarker      = "|||||||"
	separatorMarker = "======="
	theirsMarker    = ">>>>>>>"
)

// Parse reads a conflicted JSONL bibliography. Records outside conflict
// regions are returned as clean; each region keeps both of its sides.
// diff3-style base sections are skipped.
func Parse(r io.Reader) (*ParseResult, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, storage.MaxJSONLLineCapacity)
	scanner.Buffer(buf, storage.MaxJSONLLineCapacity)

	result := &ParseResult{}
	state := stateNormal
	inBase := false
	lineNum := 0
	var current *ConflictRegion

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		switch state {
		case stateNormal:
			switch {
			case strings.HasPrefix(line, oursMarker):
				current = &ConflictRegion{StartLine: lineNum}
				inBase = false
				state = stateInOurs
			case strings.HasPrefix(line, separatorMarker):
				return nil, markerError(lineNum, "unexpected separator marker outside conflict region", line)
			case strings.HasPrefix(line, theirsMarker):
				return nil, markerError(lineNum, "unexpected end marker outside conflict region", line)
			default:
				rec, ok, err := parseRecord(line, lineNum)
				if err != nil {
					return nil, err
				}
				if ok {
					result.Clean = append(result.Clean, rec)
				}
			}

		case stateInOurs:
			switch {
			case strings.HasPrefix(line, oursMarker):
				return nil, markerError(lineNum, "nested conflict markers not allowed", line)
			case strings.HasPrefix(line, baseMarker):
				inBase = true
			case strings.HasPrefix(line, separatorMarker):
				state = stateInTheirs
			case strings.HasPrefix(line, theirsMarker):
				return nil, markerError(lineNum, "unexpected end marker before separator", line)
			case inBase:
				// The common ancestor is superseded by both sides.
			default:
				rec, ok, err := parseRecord(line, lineNum)
				if err != nil {
					return nil, err
				}
				if ok {
					current.Ours = append(current.Ours, rec)
				}
			}

		case stateInTheirs:
			switch {
			case strings.HasPrefix(line, oursMarker):
				return nil, markerError(lineNum, "nested conflict markers not allowed", line)
			case strings.HasPrefix(line, separatorMarker):
				return nil, markerError(lineNum, "duplicate separator marker in conflict region", line)
			case strings.HasPrefix(line, theirsMarker):
				current.EndLine = lineNum
				result.Conflicts = append(result.Conflicts, *current)
				current = nil
				state = stateNormal
			default:
				rec, ok, err := parseRecord(line, lineNum)
				if err != nil {
					return nil, err
				}
				if ok {
					current.Theirs = append(current.Theirs, rec)
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if state != stateNormal {
		return nil, markerError(lineNum, "unterminated conflict region at end of file", "")
	}

	return result, nil
}

// ParseString is a convenience function that parses from a string.
func ParseString(content string) (*ParseResult, error) {
	return Parse(strings.NewReader(content))
}

func markerError(line int, msg, context string) ParseError {
	return ParseError{Line: line, Message: msg, Context: context}
}

// parseRecord decodes one JSONL line. Blank lines yield ok == false.
func parseRecord(line string, lineNum int) (bib.Record, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return bib.Record{}, false, nil
	}

	var rec bib.Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return rec, false, ParseError{
			Line:    lineNum,
			Message: "invalid JSON: " + err.Error(),
			Context: truncate(line, 50),
		}
	}
	if rec.Key == "" {
		return rec, false, ParseError{Line: lineNum, Message: "record has no key", Context: truncate(line, 50)}
	}
	if rec.Fields == nil {
		rec.Fields = map[string]string{}
	}
	return rec, true, nil
}

// truncate truncates a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
