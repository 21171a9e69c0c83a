package services

import (
	"strings"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

// Markers inserted into truncated material. They are part of the prompt the
// model sees, so they are phrased for it.
const (
	MiddleSampledMarker   = "\n\n[... the middle of the material was sampled; excerpts follow ...]\n\n"
	SampleGapMarker       = "\n\n[...]\n\n"
	ContinuingToEndMarker = "\n\n[... continuing to the end of the material ...]\n\n"

	// TruncationNote is set on every truncated ContextBundle.
	TruncationNote = "Note: the study material was too long to include in full. " +
		"Only the beginning, sampled sections of the middle and the end were used."
)

// maxMidSamples is the number of middle excerpts taken when the middle is
// long enough: at the quartile, midpoint and three-quarter points.
const maxMidSamples = 3

// Budget fits the corpus into the character budget.
//
// Material within MaxChars is returned untouched. Longer material keeps the
// first HeadChars and last TailChars verbatim and replaces the middle with up
// to three MidSampleChars excerpts taken at evenly spaced offsets, framed by
// explicit markers. All sizes count characters (runes).
func Budget(corpus domain.Corpus, budget domain.BudgetSettings) domain.ContextBundle {
	return BudgetText(corpus.FullText, budget.MaxChars, budget.HeadChars, budget.TailChars, budget.MidSampleChars)
}

// BudgetText applies the budget policy to a raw string.
func BudgetText(fullText string, maxChars, headChars, tailChars, midSampleChars int) domain.ContextBundle {
	runes := []rune(fullText)
	total := len(runes)

	if total <= maxChars {
		return domain.ContextBundle{Text: fullText}
	}

	headChars = max(headChars, 0)
	tailChars = max(tailChars, 0)

	// Head and tail already cover everything: there is no middle to sample,
	// and splitting would only duplicate text.
	if headChars+tailChars >= total {
		return domain.ContextBundle{
			Text:           fullText,
			WasTruncated:   true,
			TruncationNote: TruncationNote,
		}
	}

	head := string(runes[:headChars])
	tail := string(runes[total-tailChars:])
	middle := runes[headChars : total-tailChars]

	samples := 0
	if midSampleChars > 0 {
		samples = min(maxMidSamples, (len(middle)-1)/midSampleChars)
	}

	// Fewer excerpts until the result is genuinely shorter than the input.
	for ; samples >= 0; samples-- {
		text := joinSampled(head, sampleMiddle(middle, samples, midSampleChars), tail)
		if len([]rune(text)) < total {
			return domain.ContextBundle{
				Text:           text,
				WasTruncated:   true,
				TruncationNote: TruncationNote,
			}
		}
	}

	// The markers alone outweigh what would be dropped.
	return domain.ContextBundle{
		Text:           fullText,
		WasTruncated:   true,
		TruncationNote: TruncationNote,
	}
}

func joinSampled(head string, samples []string, tail string) string {
	var sb strings.Builder
	sb.WriteString(head)
	sb.WriteString(MiddleSampledMarker)
	sb.WriteString(strings.Join(samples, SampleGapMarker))
	sb.WriteString(ContinuingToEndMarker)
	sb.WriteString(tail)
	return sb.String()
}

// sampleMiddle takes n non-overlapping excerpts of size chars centred on
// evenly spaced points of middle. n*size must be smaller than len(middle).
func sampleMiddle(middle []rune, n, size int) []string {
	if n <= 0 || size <= 0 {
		return nil
	}

	samples := make([]string, 0, n)
	prevEnd := 0
	for i := 0; i < n; i++ {
		centre := len(middle) * (i + 1) / (n + 1)
		start := centre - size/2
		start = max(start, prevEnd)
		start = min(start, len(middle)-(n-i)*size)

		end := start + size
		samples = append(samples, string(middle[start:end]))
		prevEnd = end
	}
	return samples
}
