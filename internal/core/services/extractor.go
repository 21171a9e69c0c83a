package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/logger"
)

// FallbackReply is returned instead of an empty conversational answer.
const FallbackReply = "Sorry, I couldn't come up with an answer this time. Please try asking again or rephrasing your question."

// thinkBlock matches reasoning blocks some local models emit inline.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ExtractReply returns the conversational answer in a completion.
// It prefers the primary text, then the reasoning field, then the refusal,
// and finally FallbackReply. It never returns an empty string.
func ExtractReply(c *domain.Completion) string {
	if c == nil {
		return FallbackReply
	}
	for _, candidate := range []string{stripThinking(c.Text), c.Reasoning, c.Refusal} {
		if text := strings.TrimSpace(candidate); text != "" {
			return text
		}
	}
	return FallbackReply
}

// StructuredText returns the text a structured answer should be parsed from.
func StructuredText(c *domain.Completion) string {
	if c == nil {
		return ""
	}
	if text := strings.TrimSpace(stripThinking(c.Text)); text != "" {
		return text
	}
	return strings.TrimSpace(c.Reasoning)
}

func stripThinking(s string) string {
	return thinkBlock.ReplaceAllString(s, "")
}

// RecordSpec describes the records a structured caller expects.
type RecordSpec[T any] struct {
	// Keys are the recognised field names; repair rules only touch these.
	Keys []string

	// Normalize tidies a decoded record before validation. Optional.
	Normalize func(T) T

	// Validate reports whether a record satisfies the caller's shape contract.
	Validate func(T) bool
}

// ExtractRecords recovers a validated record list from raw model output.
//
// It locates the first balanced [...] span and decodes it. Only when the
// strict decode fails are the repair rules applied and the decode retried.
// Records failing spec.Validate are dropped. The whole result is
// rejected when the span is missing, the array does not parse, the array is
// empty, or no record is valid. More than maxRecords valid records are
// truncated to the first maxRecords; maxRecords <= 0 means no cap.
func ExtractRecords[T any](raw string, maxRecords int, spec RecordSpec[T], rules []RepairRule) ([]T, error) {
	span, ok := LocateArray(raw)
	if !ok {
		return nil, &domain.ExtractionError{Stage: domain.StageLocate, Reason: "no JSON array found in response"}
	}

	items, err := decodeArray(span)
	if err != nil {
		repaired := ApplyRepairs(span, spec.Keys, rules)
		if repaired == span {
			return nil, &domain.ExtractionError{Stage: domain.StageParse, Reason: "response is not a JSON array", Err: err}
		}
		if items, err = decodeArray(repaired); err != nil {
			return nil, &domain.ExtractionError{Stage: domain.StageParse, Reason: "response is not a JSON array", Err: err}
		}
	}
	if len(items) == 0 {
		return nil, &domain.ExtractionError{Stage: domain.StageEmpty, Reason: "response array is empty"}
	}

	records := make([]T, 0, len(items))
	for i, item := range items {
		var record T
		if err := json.Unmarshal(item, &record); err != nil {
			logger.Debug("dropping record %d: %v", i, err)
			continue
		}
		if spec.Normalize != nil {
			record = spec.Normalize(record)
		}
		if spec.Validate != nil && !spec.Validate(record) {
			logger.Debug("dropping record %d: failed validation", i)
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, &domain.ExtractionError{
			Stage:  domain.StageValidate,
			Reason: "no record in the response passed validation",
		}
	}

	if maxRecords > 0 && len(records) > maxRecords {
		records = records[:maxRecords]
	}
	return records, nil
}

func decodeArray(span string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(span), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// LocateArray returns the first balanced [...] span in s that looks like an
// array of objects, falling back to the first balanced span of any kind.
// Brackets inside double-quoted strings are ignored.
func LocateArray(s string) (string, bool) {
	// '[' index -> matching ']' index, or -1 when it never closes.
	ends := make(map[int]int)
	first := ""
	for start := 0; start < len(s); start++ {
		if s[start] != '[' {
			continue
		}
		end, seen := ends[start]
		if !seen {
			matchBrackets(s, start, ends)
			end = ends[start]
		}
		if end < 0 {
			continue
		}
		span := s[start : end+1]
		inner := strings.TrimSpace(span[1 : len(span)-1])
		if strings.HasPrefix(inner, "{") {
			return span, true
		}
		if first == "" {
			first = span
		}
	}
	return first, first != ""
}

// matchBrackets scans from the '[' at start until it closes. Every '[' met
// outside a string on the way gets its match recorded in ends, so each
// position is scanned once unless it sits inside a string.
func matchBrackets(s string, start int, ends map[int]int) {
	var open []int
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[':
			open = append(open, i)
		case ']':
			top := open[len(open)-1]
			open = open[:len(open)-1]
			ends[top] = i
			if top == start {
				return
			}
		}
	}
	for _, o := range open {
		ends[o] = -1
	}
}
