package catalog

// Quotes end with an em-dash attribution that is shown but never typed.
var Quotes = []string{
	"The only way to do great work is to love what you do. — Steve Jobs",
	"Simplicity is prerequisite for reliability. — Edsger Dijkstra",
	"Talk is cheap. Show me the code. — Linus Torvalds",
	"Programs must be written for people to read, and only incidentally for machines to execute. — Harold Abelson",
	"It always seems impossible until it is done. — Nelson Mandela",
	"Clear is better than clever. — Rob Pike",
	"First, solve the problem. Then, write the code. — John Johnson",
	"Practice is the hardest part of learning, and training is the essence of transformation. — Ann Voskamp",
}

// CodeSnippets are typed verbatim, newlines included.
var CodeSnippets = []string{
	"func add(a, b int) int {\n\treturn a + b\n}",
	"for i := 0; i < n; i++ {\n\tsum += i\n}",
	"if err != nil {\n\treturn fmt.Errorf(\"open: %w\", err)\n}",
	"type Point struct {\n\tX, Y int\n}",
	"ch := make(chan int, 1)\ngo func() { ch <- 42 }()\nfmt.Println(<-ch)",
	"m := map[string]int{}\nm[\"a\"]++\ndelete(m, \"a\")",
}

// DrillPlaceholder is used when there are no weak keys to drill yet.
const DrillPlaceholder = "Practice makes perfect. Keep typing to improve your skills."

// FallbackSentence replaces any generated text that came out empty.
const FallbackSentence = "The quick brown fox jumps over the lazy dog."
