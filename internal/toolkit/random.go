package toolkit

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
)

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars     = "0123456789"
	symbolChars    = "!@#$%^&*()-_=+[]{};:,.<>/?"

	maxStringLength = 255
)

func randomTools() []*Tool {
	return []*Tool{
		{
			Name:        "random-string",
			Title:       "Random String",
			Category:    CategoryRandom,
			Description: "Generate random strings from selectable character classes, one per line",
			Inputs: []Input{
				countInput("How many strings to generate"),
				{Name: "length", Description: "Length of each string (1-255)", Type: "integer", Default: "16"},
				{Name: "lowercase", Description: "Include a-z", Type: "boolean", Default: "true"},
				{Name: "uppercase", Description: "Include A-Z", Type: "boolean", Default: "true"},
				{Name: "digits", Description: "Include 0-9", Type: "boolean", Default: "true"},
				{Name: "symbols", Description: "Include punctuation", Type: "boolean", Default: "false"},
				{Name: "charset", Description: "Custom characters; overrides the class switches", Type: "string"},
			},
			Fn: randomString,
		},
		{
			Name:        "random-number",
			Title:       "Random Number",
			Category:    CategoryRandom,
			Description: "Generate random integers in [min, max], one per line",
			Inputs: []Input{
				{Name: "min", Description: "Smallest value", Type: "integer", Default: "0"},
				{Name: "max", Description: "Largest value", Type: "integer", Default: "100"},
				countInput("How many numbers to generate"),
			},
			Fn: randomNumber,
		},
	}
}

// charset assembles the alphabet for random-string.
func charset(in Inputs) ([]rune, error) {
	if custom := in.String("charset"); custom != "" {
		return uniqueRunes(custom), nil
	}

	var b strings.Builder
	classes := []struct {
		key   string
		def   bool
		chars string
	}{
		{"lowercase", true, lowercaseChars},
		{"uppercase", true, uppercaseChars},
		{"digits", true, digitChars},
		{"symbols", false, symbolChars},
	}
	for _, class := range classes {
		on, err := in.Bool(class.key, class.def)
		if err != nil {
			return nil, err
		}
		if on {
			b.WriteString(class.chars)
		}
	}

	if b.Len() == 0 {
		return nil, invalidInput("charset", "no character classes selected")
	}
	return []rune(b.String()), nil
}

func uniqueRunes(s string) []rune {
	seen := make(map[rune]bool)
	var out []rune
	for _, r := range s {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

func randomString(ctx context.Context, in Inputs) (Result, error) {
	count, err := batchCount(in)
	if err != nil {
		return Result{}, err
	}
	length, err := in.Int("length", 16)
	if err != nil {
		return Result{}, err
	}
	if length < 1 || length > maxStringLength {
		return Result{}, invalidInput("length", "must be between 1 and %d, got %d", maxStringLength, length)
	}
	alphabet, err := charset(in)
	if err != nil {
		return Result{}, err
	}

	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		buf := make([]rune, length)
		for j := range buf {
			n, err := randInt(int64(len(alphabet)))
			if err != nil {
				return Result{}, err
			}
			buf[j] = alphabet[n]
		}
		lines = append(lines, string(buf))
	}

	return Result{Output: strings.Join(lines, "\n")}, nil
}

func randomNumber(ctx context.Context, in Inputs) (Result, error) {
	lo, err := in.Int("min", 0)
	if err != nil {
		return Result{}, err
	}
	hi, err := in.Int("max", 100)
	if err != nil {
		return Result{}, err
	}
	if lo > hi {
		return Result{}, invalidInput("min", "%d is greater than max %d", lo, hi)
	}
	count, err := batchCount(in)
	if err != nil {
		return Result{}, err
	}

	span := new(big.Int).Sub(big.NewInt(hi), big.NewInt(lo))
	span.Add(span, big.NewInt(1))

	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		n, err := rand.Int(rand.Reader, span)
		if err != nil {
			return Result{}, err
		}
		n.Add(n, big.NewInt(lo))
		lines = append(lines, strconv.FormatInt(n.Int64(), 10))
	}

	return Result{Output: strings.Join(lines, "\n")}, nil
}

// randInt returns a uniform value in [0, n).
func randInt(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}
