package toolkit

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

func textInput(description string) Input {
	return Input{Name: InputKey, Description: description, Type: "string", Required: true}
}

// textOp lifts a pure string transform into an Operation.
func textOp(fn func(string) string) Operation {
	return func(_ context.Context, in Inputs) (Result, error) {
		return Result{Output: fn(in.String(InputKey))}, nil
	}
}

func stringTools() []*Tool {
	return []*Tool{
		{
			Name:        "string-uppercase",
			Title:       "Uppercase",
			Category:    CategoryString,
			Description: "Convert text to UPPERCASE",
			Inputs:      []Input{textInput("Text to convert")},
			Fn:          textOp(strings.ToUpper),
		},
		{
			Name:        "string-lowercase",
			Title:       "Lowercase",
			Category:    CategoryString,
			Description: "Convert text to lowercase",
			Inputs:      []Input{textInput("Text to convert")},
			Fn:          textOp(strings.ToLower),
		},
		{
			Name:        "string-capitalcase",
			Title:       "Capital Case",
			Category:    CategoryString,
			Description: "Capitalize the first letter of every word",
			Inputs:      []Input{textInput("Text to convert")},
			Fn:          textOp(capitalCase),
		},
		{
			Name:        "string-analysis",
			Title:       "Text Analysis",
			Category:    CategoryString,
			Description: "Count lines, words, chars and bytes, optionally with word or char frequencies",
			Inputs: []Input{
				textInput("Text to analyse"),
				{Name: "frequency", Description: "none, words or chars", Type: "string", Default: "none"},
			},
			Fn: analyzeText,
		},
		{
			Name:        "string-reverse",
			Title:       "Reverse Text",
			Category:    CategoryString,
			Description: "Reverse the text character by character",
			Inputs:      []Input{textInput("Text to reverse")},
			Fn:          textOp(reverseText),
		},
		{
			Name:        "string-replace",
			Title:       "Find & Replace",
			Category:    CategoryString,
			Description: "Replace every occurrence of a search text with a replacement",
			Inputs: []Input{
				textInput("Text to search in"),
				{Name: "search", Description: "Text to find", Type: "string", Required: true},
				{Name: "replacement", Description: "Text to put in its place", Type: "string"},
			},
			Fn: replaceText,
		},
		{
			Name:        "string-slugify",
			Title:       "Slugify",
			Category:    CategoryString,
			Description: "Convert text into a URL-friendly slug",
			Inputs: []Input{
				textInput("Text to slugify"),
				{Name: "separator", Description: "Word separator", Type: "string", Default: "-"},
			},
			Fn: slugifyText,
		},
		{
			Name:        "string-whitespace",
			Title:       "Trim",
			Category:    CategoryString,
			Description: "Trim whitespace from either or both ends, or collapse inner runs",
			Inputs: []Input{
				textInput("Text to trim"),
				{Name: "mode", Description: "both, left, right or collapse", Type: "string", Default: "both"},
			},
			Fn: trimText,
		},
	}
}

// capitalCase upper-cases the first letter of each whitespace separated word
// and lower-cases the rest. Whitespace is preserved as is.
func capitalCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	startOfWord := true
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]

		switch {
		case unicode.IsSpace(r):
			startOfWord = true
			b.WriteRune(r)
		case startOfWord:
			startOfWord = false
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return b.String()
}

func reverseText(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func replaceText(_ context.Context, in Inputs) (Result, error) {
	search := in.String("search")
	if search == "" {
		return Result{}, invalidInput("search", "must not be empty")
	}
	return Result{Output: strings.ReplaceAll(in.String(InputKey), search, in.String("replacement"))}, nil
}

func slugifyText(_ context.Context, in Inputs) (Result, error) {
	return Result{Output: slugify(in.String(InputKey), in.String("separator"))}, nil
}

// slugify lower-cases s and keeps letters and digits. Each whitespace run
// becomes one separator; everything else is dropped.
func slugify(s, sep string) string {
	var b strings.Builder
	b.Grow(len(s))

	pending := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pending && b.Len() > 0 {
				b.WriteString(sep)
			}
			pending = false
			b.WriteString(strings.ToLower(string(r)))
		case unicode.IsSpace(r):
			pending = true
		}
	}

	return b.String()
}

func trimText(_ context.Context, in Inputs) (Result, error) {
	s := in.String(InputKey)

	switch mode := strings.ToLower(strings.TrimSpace(in.String("mode"))); mode {
	case "both":
		return Result{Output: strings.TrimSpace(s)}, nil
	case "left":
		return Result{Output: strings.TrimLeftFunc(s, unicode.IsSpace)}, nil
	case "right":
		return Result{Output: strings.TrimRightFunc(s, unicode.IsSpace)}, nil
	case "collapse":
		return Result{Output: collapseSpace(strings.TrimSpace(s))}, nil
	default:
		return Result{}, invalidInput("mode", "%q is not one of both, left, right, collapse", mode)
	}
}

// collapseSpace keeps the first character of every whitespace run.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if inSpace {
				continue
			}
			inSpace = true
		} else {
			inSpace = false
		}
		b.WriteRune(r)
	}

	return b.String()
}

// TextStats is the output of the text analysis tool.
type TextStats struct {
	Lines       int         `json:"lines"`
	Words       int         `json:"words"`
	Chars       int         `json:"chars"`
	Bytes       int         `json:"bytes"`
	Frequencies []Frequency `json:"frequencies,omitempty"`
}

// Frequency counts one word or character.
type Frequency struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

func analyzeText(_ context.Context, in Inputs) (Result, error) {
	s := in.String(InputKey)
	words := strings.Fields(s)

	stats := TextStats{
		Lines: countLines(s),
		Words: len(words),
		Chars: utf8.RuneCountInString(s),
		Bytes: len(s),
	}

	switch mode := strings.ToLower(strings.TrimSpace(in.String("frequency"))); mode {
	case "none":
	case "words":
		stats.Frequencies = frequencies(words)
	case "chars":
		chars := make([]string, 0, stats.Chars)
		for _, r := range s {
			chars = append(chars, string(r))
		}
		stats.Frequencies = frequencies(chars)
	default:
		return Result{}, invalidInput("frequency", "%q is not one of none, words, chars", mode)
	}

	out, err := marshalJSON(stats, "  ")
	if err != nil {
		return Result{}, err
	}
	return Result{Output: string(out)}, nil
}

// countLines counts newline-terminated lines plus a final unterminated one.
func countLines(s string) int {
	n := strings.Count(s, "\n")
	if s != "" && !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// frequencies tallies tokens, most frequent first and ties by token.
func frequencies(tokens []string) []Frequency {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	out := make([]Frequency, 0, len(counts))
	for tok, n := range counts {
		out = append(out, Frequency{Token: tok, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Token < out[j].Token
	})
	return out
}
