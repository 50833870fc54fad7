package catalog

// HomeRowWords only use home row letters.
var HomeRowWords = []string{
	"ask", "sad", "dad", "add", "all", "fall", "hall", "lads", "flask", "glass",
	"salad", "alas", "gash", "jag", "lag", "has", "dash", "flash", "shall", "half",
	"lass", "gal", "fad", "sag", "lash", "lags", "sagas", "flag", "slag", "dahl",
	"ad", "as", "la", "ha", "gas", "lad", "sash", "hash", "dads", "asks",
}

// TopRowWords lean on the top row letters.
var TopRowWords = []string{
	"quiet", "tower", "write", "type", "pour", "route", "tire", "power", "pretty", "query",
	"equip", "trip", "rope", "wipe", "your", "outer", "rewire", "pewter", "puppy", "tripe",
	"quote", "piper", "tutor", "writer", "rupee", "yeti", "report", "twerp", "poetry", "territory",
}

// BottomRowWords lean on the bottom row letters.
var BottomRowWords = []string{
	"zinc", "box", "cave", "vex", "buzz", "mix", "calm", "numb", "zebra", "van",
	"climb", "next", "cabin", "mixer", "exam", "comb", "bomb", "maze", "vixen", "cozy",
	"convex", "banner", "common", "cinema", "move", "become", "number", "maximum", "vacuum", "jumbo",
}

// BaseWords are common English words used for free typing.
var BaseWords = []string{
	"the", "be", "to", "of", "and", "a", "in", "that", "have", "it",
	"for", "not", "on", "with", "he", "as", "you", "do", "at", "this",
	"but", "his", "by", "from", "they", "we", "say", "her", "she", "or",
	"an", "will", "my", "one", "all", "would", "there", "their", "what", "so",
	"up", "out", "if", "about", "who", "get", "which", "go", "me", "when",
	"make", "can", "like", "time", "no", "just", "him", "know", "take", "people",
	"into", "year", "your", "good", "some", "could", "them", "see", "other", "than",
	"then", "now", "look", "only", "come", "its", "over", "think", "also", "back",
	"after", "use", "two", "how", "our", "work", "first", "well", "way", "even",
	"new", "want", "because", "any", "these", "give", "day", "most", "us", "quick",
	"brown", "fox", "jumps", "lazy", "dog", "zone", "quiz", "jazz", "vivid", "exact",
}

// Symbols are appended to words in symbol lessons and free typing.
var Symbols = []rune{'!', '@', '#', '$', '%', '&', '*', '?', '.', ',', ';', ':'}

// WordsForBank returns the word bank backing a lesson.
func WordsForBank(bank Bank, base []string) []string {
	switch bank {
	case BankHomeRow:
		return HomeRowWords
	case BankTopRow:
		return TopRowWords
	case BankBottomRow:
		return BottomRowWords
	default:
		if len(base) > 0 {
			return base
		}
		return BaseWords
	}
}
