package blog

import (
	"strings"

	"github.com/pejamp/spacetraveling/richtext"
)

// WordsPerMinute is the reading rate used for estimates.
const WordsPerMinute = 200

// WordCount sums, over all sections, the whitespace-separated tokens of the
// heading and of the flattened body, counted independently.
func WordCount(sections []Section) int {
	total := 0
	for _, s := range sections {
		total += len(strings.Fields(s.Heading))
		total += len(strings.Fields(richtext.AsText(s.Body, " ")))
	}
	return total
}

// MinutesFor rounds words/WordsPerMinute up. Zero words is zero minutes.
func MinutesFor(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// ReadingTime estimates the minutes needed to read the sections.
func ReadingTime(sections []Section) int {
	return MinutesFor(WordCount(sections))
}
