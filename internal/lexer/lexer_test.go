package lexer

import (
	"testing"

	"github.com/lumen-lang/lumen/internal/diagnostics"
	"github.com/lumen-lang/lumen/internal/token"
)

type tokenKindTest struct {
	lexeme string
	kind   token.Kind
}

func TestTokenKinds(t *testing.T) {
	tests := []tokenKindTest{
		// Keywords
		{"module", token.MODULE},
		{"import", token.IMPORT},
		{"enum", token.ENUM},
		{"fn", token.FN},
		{"let", token.LET},
		{"set", token.SET},
		{"return", token.RETURN},
		{"while", token.WHILE},
		{"for", token.FOR},
		{"in", token.IN},
		{"by", token.BY},
		{"break", token.BREAK},
		{"continue", token.CONTINUE},
		{"if", token.IF},
		{"else", token.ELSE},
		{"match", token.MATCH},
		{"export", token.EXPORT},
		{"as", token.AS},
		{"true", token.BOOL},
		{"false", token.BOOL},

		// Punctuation
		{"(", token.LPAREN},
		{")", token.RPAREN},
		{"{", token.LBRACE},
		{"}", token.RBRACE},
		{"[", token.LBRACKET},
		{"]", token.RBRACKET},
		{",", token.COMMA},
		{";", token.SEMICOLON},
		{":", token.COLON},
		{".", token.DOT},
		{"->", token.ARROW},
		{"=>", token.FATARROW},
		{"_", token.UNDERSCORE},

		// Operators
		{"+", token.PLUS},
		{"-", token.MINUS},
		{"*", token.STAR},
		{"/", token.SLASH},
		{"==", token.EQ},
		{"!=", token.NEQ},
		{"<", token.LT},
		{"<=", token.LE},
		{">", token.GT},
		{">=", token.GE},
		{"&&", token.AND},
		{"||", token.OR},
		{"!", token.NOT},
		{"=", token.ASSIGN},
		{"..", token.RANGE},
		{"..=", token.RANGE_INC},

		// Literals and identifiers
		{"foo", token.IDENT},
		{"_bar", token.IDENT},
		{"42", token.INT},
		{`"hi"`, token.STRING},
	}

	for _, tt := range tests {
		collector := diagnostics.New(diagnostics.ModeAll)
		lex := New("test.lum", []byte(tt.lexeme), collector)
		got := lex.Next()
		if got.Kind != tt.kind {
			t.Errorf("lexeme %q: got kind %s, want %s", tt.lexeme, got.Kind, tt.kind)
		}
		if collector.Recorded() {
			t.Errorf("lexeme %q: unexpected diagnostics: %v", tt.lexeme, collector.Raw())
		}
	}
}

func TestTokenizeEndsInEOF(t *testing.T) {
	collector := diagnostics.New(diagnostics.ModeAll)
	lex := New("test.lum", []byte("fn main() { print(1); }"), collector)
	tokens := lex.Tokenize()
	if len(tokens) == 0 {
		t.Fatal("expected at least one token")
	}
	if tokens[len(tokens)-1].Kind != token.EOF {
		t.Fatalf("expected stream to end in EOF, got %s", tokens[len(tokens)-1].Kind)
	}
}

func TestStringEscapes(t *testing.T) {
	collector := diagnostics.New(diagnostics.ModeAll)
	lex := New("test.lum", []byte(`"a\nb\t\"c\"\\"`), collector)
	tok := lex.Next()
	want := "a\nb\t\"c\"\\"
	if tok.Lexeme != want {
		t.Errorf("got lexeme %q, want %q", tok.Lexeme, want)
	}
}

func TestUnterminatedStringRecordsLexError(t *testing.T) {
	collector := diagnostics.New(diagnostics.ModeAll)
	lex := New("test.lum", []byte(`"never closed`), collector)
	lex.Next()
	if !collector.Recorded() {
		t.Fatal("expected a lex diagnostic for an unterminated string")
	}
	if collector.Raw()[0].Phase != diagnostics.Lex {
		t.Errorf("expected Lex phase, got %s", collector.Raw()[0].Phase)
	}
}

func TestInvalidCharacterRecoversAndContinues(t *testing.T) {
	collector := diagnostics.New(diagnostics.ModeAll)
	lex := New("test.lum", []byte("@ 1"), collector)
	tokens := lex.Tokenize()
	if !collector.Recorded() {
		t.Fatal("expected a lex diagnostic for '@'")
	}
	var sawInt bool
	for _, tok := range tokens {
		if tok.Kind == token.INT {
			sawInt = true
		}
	}
	if !sawInt {
		t.Error("expected lexing to continue past the invalid character and find the integer literal")
	}
}

func TestLeadingZerosPermitted(t *testing.T) {
	collector := diagnostics.New(diagnostics.ModeAll)
	lex := New("test.lum", []byte("007"), collector)
	tok := lex.Next()
	if tok.Kind != token.INT || tok.Lexeme != "007" {
		t.Errorf("got %v, want INT(007)", tok)
	}
}

func TestDotDisambiguation(t *testing.T) {
	collector := diagnostics.New(diagnostics.ModeAll)
	lex := New("test.lum", []byte(". .. ..="), collector)
	var kinds []token.Kind
	for {
		tok := lex.Next()
		if tok.Kind == token.EOF {
			break
		}
		kinds = append(kinds, tok.Kind)
	}
	want := []token.Kind{token.DOT, token.RANGE, token.RANGE_INC}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	collector := diagnostics.New(diagnostics.ModeAll)
	lex := New("test.lum", []byte("# a comment\n42"), collector)
	tok := lex.Next()
	if tok.Kind != token.INT || tok.Lexeme != "42" {
		t.Errorf("got %v, want INT(42)", tok)
	}
}
