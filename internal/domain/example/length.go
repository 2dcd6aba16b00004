package example

import "strings"

// LengthClass is the coarse length bucket of a post.
type LengthClass string

// Length classes. The labels are persisted in datasets and must not change.
const (
	Short  LengthClass = "Short"
	Medium LengthClass = "Medium"
	Long   LengthClass = "Long"
)

// Line count thresholds: below shortMax is Short, up to mediumMax inclusive is Medium.
const (
	shortMax  = 5
	mediumMax = 10
)

var lengthRanges = map[LengthClass]string{
	Short:  "1 to 5 lines",
	Medium: "6 to 10 lines",
	Long:   "11 to 15 lines",
}

// ClassifyLength maps a line count to its length class.
func ClassifyLength(lineCount int) LengthClass {
	switch {
	case lineCount < shortMax:
		return Short
	case lineCount <= mediumMax:
		return Medium
	default:
		return Long
	}
}

// LengthRange renders a length class as a human-readable line range.
// Unknown classes fall back to the Medium range.
func LengthRange(l LengthClass) string {
	if r, ok := lengthRanges[l]; ok {
		return r
	}
	return lengthRanges[Medium]
}

// ParseLengthClass resolves s case-insensitively. ok is false for unknown values,
// in which case the returned class is s unchanged.
func ParseLengthClass(s string) (LengthClass, bool) {
	for _, l := range LengthClasses() {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, true
		}
	}
	return LengthClass(s), false
}

// LengthClasses returns all classes in ascending order.
func LengthClasses() []LengthClass {
	return []LengthClass{Short, Medium, Long}
}
