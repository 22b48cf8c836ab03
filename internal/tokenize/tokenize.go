// Package tokenize implements the tokenizer collaborator (§6.5): splitting
// text into word tokens with original-case spans so the Highlight Builder
// can re-wrap matches in place. No third-party tokenizer appears anywhere
// in the retrieved corpus, and this splitter only needs Unicode letter/digit
// classification, which the standard library's unicode package already
// provides — pulling in a library here would add a dependency this small
// job doesn't justify.
package tokenize

import "unicode"

// Token is one word-like span of the source text, keeping its original
// casing and byte-free rune offsets so callers can locate it back in text.
type Token struct {
	Text  string
	Start int
	End   int
}

// Tokenize splits text into word tokens (runs of letters/digits/apostrophes),
// discarding punctuation and whitespace as separators. locale is accepted
// for interface parity with §6.5 but unused: the segmentation rule here is
// locale-independent Unicode letter/digit classification.
func Tokenize(text, locale string) []Token {
	_ = locale
	runes := []rune(text)
	n := len(runes)
	var out []Token
	i := 0
	for i < n {
		if !isWordRune(runes[i]) {
			i++
			continue
		}
		start := i
		for i < n && isWordRune(runes[i]) {
			i++
		}
		out = append(out, Token{Text: string(runes[start:i]), Start: start, End: i})
	}
	return out
}

// Words returns just the token texts, in order, dropping position spans.
// This is the shape the Highlight Builder consumes: a flat list of tokens
// to search for, case-folded at match time rather than here.
func Words(text string) []string {
	toks := Tokenize(text, "")
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}
