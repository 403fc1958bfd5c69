package compare

import (
	"bytes"
	"testing"
)

func TestCompare_ExactMatch(t *testing.T) {
	if got := Compare([]byte("Hello\n"), []byte("Hello\n")); got != Accepted {
		t.Errorf("Compare() = %v, want Accepted", got)
	}
}

func TestCompare_Mismatch(t *testing.T) {
	if got := Compare([]byte("Hello\n"), []byte("World\n")); got != WrongAnswer {
		t.Errorf("Compare() = %v, want WrongAnswer", got)
	}
}

func TestCompare_TrailingWhitespaceNormalization(t *testing.T) {
	// Scenario 7 from the end-to-end table: trailing spaces and blank
	// line normalization still yields Accepted.
	out := []byte("a  \nb\n")
	ans := []byte("a\nb\n")
	if got := Compare(out, ans); got != Accepted {
		t.Errorf("Compare() = %v, want Accepted", got)
	}
}

func TestCompare_CRLFvsLF(t *testing.T) {
	out := []byte("line one\r\nline two\r\n")
	ans := []byte("line one\nline two\n")
	if got := Compare(out, ans); got != Accepted {
		t.Errorf("Compare() = %v, want Accepted", got)
	}
}

func TestCompare_BlankLineInsertion(t *testing.T) {
	out := []byte("a\n\n\nb\n")
	ans := []byte("a\nb\n")
	if got := Compare(out, ans); got != Accepted {
		t.Errorf("Compare() = %v, want Accepted", got)
	}
}

func TestCompare_OneSideExhaustedFirst(t *testing.T) {
	out := []byte("a\nb\n")
	ans := []byte("a\n")
	if got := Compare(out, ans); got != WrongAnswer {
		t.Errorf("Compare() = %v, want WrongAnswer", got)
	}
}

func TestCompare_BothEmpty(t *testing.T) {
	if got := Compare([]byte(""), []byte("")); got != Accepted {
		t.Errorf("Compare() = %v, want Accepted", got)
	}
}

func TestCompare_OnlyBlankLines(t *testing.T) {
	out := []byte("   \n\t\n")
	ans := []byte("")
	if got := Compare(out, ans); got != Accepted {
		t.Errorf("Compare() = %v, want Accepted", got)
	}
}

func TestCompare_NoTrailingNewline(t *testing.T) {
	out := []byte("Hello")
	ans := []byte("Hello\n")
	if got := Compare(out, ans); got != Accepted {
		t.Errorf("Compare() = %v, want Accepted", got)
	}
}

// Property: idempotent and symmetric.
func TestCompare_SymmetricAndReflexive(t *testing.T) {
	pairs := [][2][]byte{
		{[]byte("abc\ndef\n"), []byte("abc\ndef\n")},
		{[]byte("abc\n"), []byte("xyz\n")},
		{[]byte(""), []byte("a\n")},
		{[]byte("a  \n\n"), []byte("a\n")},
	}
	for _, p := range pairs {
		a, b := p[0], p[1]
		if Compare(a, a) != Accepted {
			t.Errorf("Compare(a, a) should be Accepted for %q", a)
		}
		if Compare(b, b) != Accepted {
			t.Errorf("Compare(b, b) should be Accepted for %q", b)
		}
		if Compare(a, b) != Compare(b, a) {
			t.Errorf("Compare(a,b) != Compare(b,a) for %q / %q", a, b)
		}
	}
}

// Property (a): pairs differing only in trailing whitespace/blank lines
// are always Accepted.
func TestCompare_WhitespaceOnlyDifferences(t *testing.T) {
	base := [][]byte{
		[]byte("1 2 3\n"),
		[]byte("result: 42\n"),
		[]byte("line a\nline b\nline c\n"),
	}
	variants := func(b []byte) [][]byte {
		var out [][]byte
		out = append(out, b)
		out = append(out, bytes.ReplaceAll(b, []byte("\n"), []byte("\r\n")))
		out = append(out, append(append([]byte{}, b...), '\n', '\n'))
		out = append(out, append([]byte("\n\n"), b...))
		withTrailingSpaces := bytes.ReplaceAll(b, []byte("\n"), []byte("   \n"))
		out = append(out, withTrailingSpaces)
		return out
	}

	for _, b := range base {
		for _, v := range variants(b) {
			if got := Compare(b, v); got != Accepted {
				t.Errorf("Compare(%q, %q) = %v, want Accepted", b, v, got)
			}
		}
	}
}

// Property (b): pairs differing by one byte in a non-whitespace position
// are always WrongAnswer.
func TestCompare_SingleByteMismatch(t *testing.T) {
	cases := []string{"Hello\n", "12345\n", "answer: yes\n"}
	for _, c := range cases {
		b := []byte(c)
		mutated := append([]byte{}, b...)
		// Flip the first non-whitespace byte to something else.
		for i, ch := range mutated {
			if ch != ' ' && ch != '\t' && ch != '\r' && ch != '\n' {
				if ch == 'z' {
					mutated[i] = 'y'
				} else {
					mutated[i] = ch + 1
				}
				break
			}
		}
		if got := Compare(b, mutated); got != WrongAnswer {
			t.Errorf("Compare(%q, %q) = %v, want WrongAnswer", b, mutated, got)
		}
	}
}

func TestVerdict_String(t *testing.T) {
	if Accepted.String() != "Accepted" {
		t.Errorf("Accepted.String() = %q", Accepted.String())
	}
	if WrongAnswer.String() != "WrongAnswer" {
		t.Errorf("WrongAnswer.String() = %q", WrongAnswer.String())
	}
}
