package shaping

import (
	"golang.org/x/text/unicode/bidi"
)

// directionRun is a maximal run of a single bidi level within one line.
// Offsets are byte offsets into the line text.
type directionRun struct {
	start, end int
	rtl        bool
}

// directionRuns splits a line into bidi level runs using the Unicode
// bidirectional algorithm. Runs are returned in logical order; the
// shaping engine handles glyph ordering within each run. Full paragraph
// reordering is out of scope here.
func directionRuns(text string) []directionRun {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	levels := make([]int, len(runes))

	p := bidi.Paragraph{}
	_, _ = p.SetString(text, bidi.DefaultDirection(bidi.Neutral))

	ordering, err := p.Order()
	if err == nil {
		// run.Pos() returns RUNE indices (start, end inclusive).
		for i := 0; i < ordering.NumRuns(); i++ {
			run := ordering.Run(i)
			startRune, endRune := run.Pos()
			level := 0
			if run.Direction() == bidi.RightToLeft {
				level = 1
			}
			for j := startRune; j <= endRune && j < len(levels); j++ {
				levels[j] = level
			}
		}
	}

	// Group consecutive runes of equal level, converting back to byte
	// offsets.
	byteOffsets := make([]int, len(runes)+1)
	offset := 0
	for i, r := range runes {
		byteOffsets[i] = offset
		offset += len(string(r))
	}
	byteOffsets[len(runes)] = len(text)

	var runs []directionRun
	startRune := 0
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && levels[i] == levels[startRune] {
			continue
		}
		runs = append(runs, directionRun{
			start: byteOffsets[startRune],
			end:   byteOffsets[i],
			rtl:   levels[startRune]%2 == 1,
		})
		startRune = i
	}
	return runs
}
