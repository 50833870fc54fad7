package wordlist

import "unicode/utf8"

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// PracticeFilter keeps lowercase ASCII words of at most maxLen letters.
// A maxLen of zero or less disables the length check.
func PracticeFilter(maxLen int) FilterFunc {
	return func(word string) bool {
		if !lowerASCII(word) {
			return false
		}
		return maxLen <= 0 || utf8.RuneCountInString(word) <= maxLen
	}
}

// Any keeps every non-empty word.
func Any(word string) bool { return word != "" }

func lowerASCII(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}
