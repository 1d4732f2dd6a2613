package schedlang

import "testing"

func TestLexWordsAndPunctuation(t *testing.T) {
	t.Parallel()

	toks := lex("WD[1..5] AND T[9:30]")
	kinds := make([]tokenKind, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.kind
	}
	want := []tokenKind{
		tokWord, tokLBracket, tokWord, tokDotDot, tokWord, tokRBracket,
		tokWord, tokWord, tokLBracket, tokWord, tokColon, tokWord, tokRBracket,
		tokEOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestLexDotVsDotDot(t *testing.T) {
	t.Parallel()

	toks := lex("A.B..C")
	var kinds []tokenKind
	for _, tk := range toks {
		kinds = append(kinds, tk.kind)
	}
	want := []tokenKind{tokWord, tokDot, tokWord, tokDotDot, tokWord, tokEOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestLexMergePrefixesAndNegation(t *testing.T) {
	t.Parallel()

	toks := lex("#WD[1] ~T[1] !M[1] -5")
	var kinds []tokenKind
	for _, tk := range toks {
		kinds = append(kinds, tk.kind)
	}
	want := []tokenKind{
		tokHash, tokWord, tokLBracket, tokWord, tokRBracket,
		tokTilde, tokWord, tokLBracket, tokWord, tokRBracket,
		tokBang, tokWord, tokLBracket, tokWord, tokRBracket,
		tokMinus, tokWord,
		tokEOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %v (%d), want %v (%d)", kinds, len(kinds), want, len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestLexLetterDigitRunsMergeIntoOneWord(t *testing.T) {
	t.Parallel()

	toks := lex("01T09")
	if len(toks) != 2 || toks[0].kind != tokWord || toks[0].text != "01T09" {
		t.Fatalf("expected a single merged word token, got %+v", toks)
	}
}

func TestLexSkipsWhitespace(t *testing.T) {
	t.Parallel()

	toks := lex("  WD [ 1 ]  ")
	if len(toks) != 5 { // WD, [, 1, ], EOF
		t.Fatalf("expected 5 tokens, got %d: %+v", len(toks), toks)
	}
}

func TestIsAllDigits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"123", true},
		{"", false},
		{"12a", false},
		{"0", true},
	}
	for _, tt := range tests {
		if got := isAllDigits(tt.in); got != tt.want {
			t.Errorf("isAllDigits(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
