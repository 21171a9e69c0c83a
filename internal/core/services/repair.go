package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/studyhall/internal/logger"
)

// RepairRule rewrites one known malformation in a located JSON span.
// Rules only touch the recognised record keys they are given.
type RepairRule struct {
	// Name identifies the rule in logs and tests.
	Name string

	// Apply returns the repaired span.
	Apply func(span string, keys []string) string
}

// DefaultRepairRules is the ordered table of known malformations.
var DefaultRepairRules = []RepairRule{
	{Name: "smart-quotes", Apply: repairSmartQuotes},
	{Name: "single-quoted-keys", Apply: repairSingleQuotedKeys},
	{Name: "quote-bare-keys", Apply: repairBareKeys},
	{Name: "strip-label-before-key", Apply: repairLabelBeforeKey},
	{Name: "trailing-commas", Apply: repairTrailingCommas},
}

// ApplyRepairs runs every rule in order.
func ApplyRepairs(span string, keys []string, rules []RepairRule) string {
	for _, rule := range rules {
		repaired := rule.Apply(span, keys)
		if repaired != span {
			logger.Debug("repair rule %s rewrote model output", rule.Name)
			span = repaired
		}
	}
	return span
}

var (
	smartQuoteOpen  = regexp.MustCompile(`([{\[,:]\s*)[“”„‟]`)
	smartQuoteClose = regexp.MustCompile(`[“”„‟](\s*[:,}\]])`)
)

// repairSmartQuotes turns typographic double quotes that delimit keys and
// values into ASCII quotes. Quotes inside prose are left as they are.
func repairSmartQuotes(span string, _ []string) string {
	span = smartQuoteOpen.ReplaceAllString(span, `$1"`)
	return smartQuoteClose.ReplaceAllString(span, `"$1`)
}

// repairSingleQuotedKeys: {'front': "a"} -> {"front": "a"}.
func repairSingleQuotedKeys(span string, keys []string) string {
	if len(keys) == 0 {
		return span
	}
	re := regexp.MustCompile(`([{,]\s*)'(` + keyAlternation(keys) + `)'\s*:`)
	return outsideStrings(span, func(seg string) string {
		return re.ReplaceAllString(seg, `$1"$2":`)
	})
}

// repairBareKeys: {front: "a"} -> {"front": "a"}.
func repairBareKeys(span string, keys []string) string {
	if len(keys) == 0 {
		return span
	}
	re := regexp.MustCompile(`([{,]\s*)(` + keyAlternation(keys) + `)\s*:`)
	return outsideStrings(span, func(seg string) string {
		return re.ReplaceAllString(seg, `$1"$2":`)
	})
}

// repairLabelBeforeKey removes a stray label injected before a known key:
//
//	{"Card 1": "front": "a"}  -> {"front": "a"}
//	{Question: "front": "a"}  -> {"front": "a"}
func repairLabelBeforeKey(span string, keys []string) string {
	if len(keys) == 0 {
		return span
	}
	alt := keyAlternation(keys)
	quoted := regexp.MustCompile(`([{,]\s*)"[^"]*"\s*:?\s*("(?:` + alt + `)"\s*:)`)
	span = quoted.ReplaceAllString(span, `$1$2`)

	bare := regexp.MustCompile(`([{,]\s*)[^"{}\[\],:\s][^"{}\[\],:]*?:?\s*("(?:` + alt + `)"\s*:)`)
	return bare.ReplaceAllString(span, `$1$2`)
}

var trailingComma = regexp.MustCompile(`,\s*([\]}])`)

// repairTrailingCommas: [{"front": "a",},] -> [{"front": "a"}].
func repairTrailingCommas(span string, _ []string) string {
	return outsideStrings(span, func(seg string) string {
		return trailingComma.ReplaceAllString(seg, `$1`)
	})
}

// outsideStrings applies fn to the parts of span that are not inside a
// double-quoted JSON string. An unterminated string runs to the end.
func outsideStrings(span string, fn func(string) string) string {
	var b strings.Builder
	b.Grow(len(span))

	segStart := 0
	inString := false
	escaped := false
	for i := 0; i < len(span); i++ {
		c := span[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				b.WriteString(span[segStart : i+1])
				segStart = i + 1
			}
			continue
		}
		if c == '"' {
			b.WriteString(fn(span[segStart:i]))
			segStart = i
			inString = true
		}
	}
	if inString {
		b.WriteString(span[segStart:])
	} else {
		b.WriteString(fn(span[segStart:]))
	}
	return b.String()
}

func keyAlternation(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return strings.Join(quoted, "|")
}
