package console

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tk := NewTokenizer()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"quoted run", `a "b c" d`, []string{"a", "b c", "d"}},
		{"extra whitespace", "  heal   ben\t10 ", []string{"heal", "ben", "10"}},
		{"empty quoted argument", `say ""`, []string{"say", ""}},
		{"escaped quote", `say a\"b`, []string{"say", `a"b`}},
		{"escaped space", `give big\ sword`, []string{"give", "big sword"}},
		{"escaped escape", `echo a\\b`, []string{"echo", `a\b`}},
		{"unterminated quote", `echo "x y`, []string{"echo", "x y"}},
		{"quote inside word", `give "Ben"jamin`, []string{"give", "Benjamin"}},
		{"blank", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tk.Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitChain(t *testing.T) {
	tk := NewTokenizer()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"escaped delimiter", `a\;b;c`, []string{"a;b", "c"}},
		{"trims sub-commands", " heal ben ; teleport x ", []string{"heal ben", "teleport x"}},
		{"drops empty sub-commands", "a;; ;b;", []string{"a", "b"}},
		{"quotes not honored", `echo "x;y"`, []string{`echo "x`, `y"`}},
		{"single", "players", []string{"players"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tk.SplitChain(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitChain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitKeepsEmptySegments(t *testing.T) {
	got := Split("a;;b", ';', '\\')
	want := []string{"a", "", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %q, want %q", got, want)
	}
}

func TestSplitEscapeBeforeOtherCharacterIsKept(t *testing.T) {
	got := Split(`a\b;c`, ';', '\\')
	want := []string{`a\b`, "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %q, want %q", got, want)
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	line := `x\;y;"z;w";;q`
	first := Split(line, ';', '\\')
	for i := 0; i < 5; i++ {
		if got := Split(line, ';', '\\'); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: Split = %q, want %q", i, got, first)
		}
	}
}

func TestTokenizerCustomCharacters(t *testing.T) {
	tk := Tokenizer{Delimiter: '|', Escape: '^'}

	subs := tk.SplitChain(`echo a^|b | players`)
	want := []string{"echo a|b", "players"}
	if !reflect.DeepEqual(subs, want) {
		t.Errorf("SplitChain = %q, want %q", subs, want)
	}

	tokens := tk.Tokenize(`say ^"hi^"`)
	if !reflect.DeepEqual(tokens, []string{"say", `"hi"`}) {
		t.Errorf("Tokenize = %q", tokens)
	}
}

func TestZeroTokenizerUsesDefaults(t *testing.T) {
	var tk Tokenizer
	got := tk.SplitChain(`a\;b;c`)
	if !reflect.DeepEqual(got, []string{"a;b", "c"}) {
		t.Errorf("SplitChain = %q", got)
	}
}
