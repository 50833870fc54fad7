// Package generator builds typing text sequences.
package generator

import (
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/verte-zerg/typeflow/internal/catalog"
	"github.com/verte-zerg/typeflow/internal/model"
)

const (
	wordsPerMinute = 45
	minWords       = 12
	padMin         = 6
	padMax         = 14
	drillWords     = 40
	drillBias      = 0.7
	numberPct      = 0.4
	symbolPct      = 0.3
)

var quoteAuthor = regexp.MustCompile(`^(.*?)\s*[\x{2014}-]\s*([^\x{2014}-]+)$`)

// Options toggles per-word decorations for free typing.
type Options struct {
	Caps       bool
	Numbers    bool
	Symbols    bool
	CapsPct    float64
	NumbersPct float64
	SymbolsPct float64
}

// Request describes the text a session needs.
type Request struct {
	Mode       model.Mode
	TimeLimit  int
	WordTarget int
	Options    Options
	Lesson     catalog.Lesson
	WeakKeys   []model.WeakKey
}

// Passage is generated text plus an optional attribution that is not typed.
type Passage struct {
	Text   model.Text
	Author string
}

// Generator produces randomized typing text.
type Generator struct {
	rnd  *rand.Rand
	base []string
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource returns a Generator drawing from src.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src), base: catalog.BaseWords}
}

// SetBaseWords replaces the free-typing word bank. Empty input keeps the built-in bank.
func (g *Generator) SetBaseWords(words []string) {
	if len(words) == 0 {
		return
	}
	g.base = words
}

// Passage generates text for req. The result is never empty.
func (g *Generator) Passage(req Request) Passage {
	var p Passage
	switch req.Mode {
	case model.ModeQuote:
		p.Text, p.Author = g.Quote()
	case model.ModeCode:
		p.Text = g.Code()
	case model.ModeLesson:
		p.Text = g.Lesson(req.Lesson)
	case model.ModeWeakKeyDrill:
		p.Text = g.Drill(req.WeakKeys)
	default:
		p.Text = g.Words(WordCountFor(req.Mode, req.TimeLimit, req.WordTarget)+g.between(padMin, padMax), req.Options)
	}
	if len(strings.TrimSpace(p.Text.String())) == 0 {
		p.Text = model.PlainText(catalog.FallbackSentence)
		p.Author = ""
	}
	return p
}

// WordCountFor returns the base number of words before the random pad.
func WordCountFor(mode model.Mode, timeLimit, wordTarget int) int {
	count := int(math.Round(float64(timeLimit) / 60 * wordsPerMinute))
	if count < minWords {
		count = minWords
	}
	if mode == model.ModeWordCount && count <= wordTarget {
		// One extra word so the target-th word can be committed with a space.
		count = wordTarget + 1
	}
	return count
}

// Words selects count words uniformly and applies the enabled decorations.
func (g *Generator) Words(count int, opts Options) model.Text {
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := g.pick(g.base)
		if opts.Caps {
			word = applyCaps(g.rnd, word, opts.CapsPct)
		}
		if opts.Numbers {
			word = applyNumber(g.rnd, word, opts.NumbersPct)
		}
		if opts.Symbols {
			word = applySymbol(g.rnd, word, opts.SymbolsPct)
		}
		result = append(result, word)
	}
	return model.PlainText(strings.Join(result, " "))
}

// Quote picks a quote and splits off its attribution.
func (g *Generator) Quote() (model.Text, string) {
	raw := g.pick(catalog.Quotes)
	body, author := SplitQuote(raw)
	return model.PlainText(body), author
}

// SplitQuote separates a trailing dash attribution from the quote body.
func SplitQuote(raw string) (body, author string) {
	m := quoteAuthor.FindStringSubmatch(raw)
	if m == nil {
		return strings.TrimSpace(raw), ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

// Code picks a snippet verbatim.
func (g *Generator) Code() model.Text {
	return model.PlainText(g.pick(catalog.CodeSnippets))
}

// Lesson draws words from the lesson's bank.
func (g *Generator) Lesson(l catalog.Lesson) model.Text {
	bank := catalog.WordsForBank(l.Bank, g.base)
	count := l.Words
	if count <= 0 {
		count = minWords
	}
	words := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := g.pick(bank)
		switch l.Bank {
		case catalog.BankNumbers:
			word = applyNumber(g.rnd, word, numberPct)
		case catalog.BankSymbols:
			word = applySymbol(g.rnd, word, symbolPct)
		}
		words = append(words, word)
	}
	return model.PlainText(strings.Join(words, " ") + ".")
}

// Drill builds a word list biased toward words containing weak characters.
// Weak characters are highlighted in the returned text.
func (g *Generator) Drill(weak []model.WeakKey) model.Text {
	targets := map[rune]struct{}{}
	for _, wk := range weak {
		runes := []rune(wk.Char)
		if len(runes) != 1 || unicode.IsSpace(runes[0]) {
			continue
		}
		targets[runes[0]] = struct{}{}
	}
	if len(targets) == 0 {
		return model.PlainText(catalog.DrillPlaceholder)
	}
	candidates := wordsWithAny(g.base, targets)

	var text model.Text
	for i := 0; i < drillWords; i++ {
		var word string
		if g.rnd.Float64() < drillBias && len(candidates) > 0 {
			word = g.pick(candidates)
		} else {
			word = g.pick(g.base)
		}
		if i > 0 {
			text = append(text, model.Glyph{Char: ' '})
		}
		for _, r := range word {
			_, hit := targets[r]
			text = append(text, model.Glyph{Char: r, Highlighted: hit})
		}
	}
	return append(text, model.Glyph{Char: '.'})
}

func wordsWithAny(words []string, targets map[rune]struct{}) []string {
	var out []string
	for _, w := range words {
		for _, r := range w {
			if _, ok := targets[r]; ok {
				out = append(out, w)
				break
			}
		}
	}
	return out
}

func (g *Generator) pick(words []string) string {
	if len(words) == 0 {
		return ""
	}
	return words[g.rnd.Intn(len(words))]
}

func (g *Generator) between(lo, hi int) int {
	return lo + g.rnd.Intn(hi-lo+1)
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 {
		return word
	}
	if rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyNumber(rnd *rand.Rand, word string, pct float64) string {
	if pct <= 0 || rnd.Float64() > pct {
		return word
	}
	return word + strconv.Itoa(rnd.Intn(100))
}

func applySymbol(rnd *rand.Rand, word string, pct float64) string {
	if pct <= 0 || len(catalog.Symbols) == 0 {
		return word
	}
	if rnd.Float64() > pct {
		return word
	}
	return word + string(catalog.Symbols[rnd.Intn(len(catalog.Symbols))])
}
