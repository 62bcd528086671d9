package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func parseString(t *testing.T, input string) (Object, *Reporter, *Lexer) {
	t.Helper()
	rep := NewReporter(false)
	lx := NewLexer([]byte(input))
	obj, err := NewParser(lx, nil, rep).ParseValue()
	if err != nil {
		t.Fatalf("ParseValue(%q): %v", input, err)
	}
	return obj, rep, lx
}

func TestParseSimpleValues(t *testing.T) {
	tests := []struct {
		input string
		want  Object
	}{
		{"42", Int(42)},
		{"-3", Int(-3)},
		{"2.5", Real(2.5)},
		{"true", Bool(true)},
		{"false", Bool(false)},
		{"null", Null{}},
		{"(text)", String("text")},
		{"/Name", Name("Name")},
		{"[1 (a) /B]", Array{Int(1), String("a"), Name("B")}},
	}
	for _, tt := range tests {
		obj, rep, _ := parseString(t, tt.input)
		if diff := cmp.Diff(tt.want, obj); diff != "" {
			t.Errorf("ParseValue(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
		if len(rep.Diagnostics()) != 0 {
			t.Errorf("ParseValue(%q) recorded diagnostics: %v", tt.input, rep.Diagnostics())
		}
	}
}

func TestParseDictWithReferences(t *testing.T) {
	obj, rep, _ := parseString(t, "<< /Root 1 0 R /Size 4 /Kids [2 0 R 3 0 R] >>")
	d, ok := obj.(Dict)
	if !ok {
		t.Fatalf("got %T, want Dict", obj)
	}
	if len(rep.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", rep.Diagnostics())
	}

	ref, ok := d.Get("Root").(*Indirect)
	if !ok {
		t.Fatalf("/Root is %T, want *Indirect", d.Get("Root"))
	}
	if ref.ID() != (ObjectID{Number: 1}) {
		t.Errorf("/Root points at %v, want 1 0", ref.ID())
	}
	if n, _ := d.GetInt("Size"); n != 4 {
		t.Errorf("/Size = %d, want 4", n)
	}
	kids, _ := d.GetArray("Kids")
	if len(kids) != 2 {
		t.Fatalf("/Kids has %d entries, want 2", len(kids))
	}
	kid, ok := kids[1].(*Indirect)
	if !ok || kid.ID() != (ObjectID{Number: 3}) {
		t.Errorf("second kid is %v, want reference to 3 0", kids[1])
	}
}

func TestParseDictBadKeyRecovers(t *testing.T) {
	obj, rep, _ := parseString(t, "<< /Good 1 (oops) /AlsoGood 2 >>")
	d := obj.(Dict)
	if n, _ := d.GetInt("Good"); n != 1 {
		t.Errorf("/Good = %d, want 1", n)
	}
	if n, _ := d.GetInt("AlsoGood"); n != 2 {
		t.Errorf("/AlsoGood = %d, want 2", n)
	}
	if len(rep.Errors()) != 1 || !strings.Contains(rep.Errors()[0].Message, "expected PDF name object") {
		t.Errorf("diagnostics = %v, want one bad-key error", rep.Diagnostics())
	}
}

func TestParseDictBrokenReferenceRecovers(t *testing.T) {
	// Two integers not followed by R: the key is dropped, the rest of
	// the dictionary survives.
	obj, rep, _ := parseString(t, "<< /Broken 1 0 /Next 2 >>")
	d := obj.(Dict)
	if d.Has("Broken") {
		t.Errorf("/Broken should have been dropped, got %v", d.Get("Broken"))
	}
	if n, _ := d.GetInt("Next"); n != 2 {
		t.Errorf("/Next = %d, want 2", n)
	}
	if len(rep.Errors()) != 1 || !strings.Contains(rep.Errors()[0].Message, `expected "R"`) {
		t.Errorf("diagnostics = %v, want one broken-reference error", rep.Diagnostics())
	}
}

func TestParseArrayReferenceNeedsIntegers(t *testing.T) {
	obj, rep, _ := parseString(t, "[ (a) 0 R 5 ]")
	arr := obj.(Array)
	if diff := cmp.Diff(Array{String("a"), Int(0), Int(5)}, arr); diff != "" {
		t.Errorf("array mismatch (-want +got):\n%s", diff)
	}
	if len(rep.Errors()) != 1 {
		t.Errorf("diagnostics = %v, want one error", rep.Diagnostics())
	}
}

func TestParseFusedEndobj(t *testing.T) {
	obj, rep, lx := parseString(t, "trueendobj")
	if obj != Bool(true) {
		t.Errorf("got %v, want true", obj)
	}
	if len(rep.Errors()) != 1 || !strings.Contains(rep.Errors()[0].Message, "no space or delimiter before endobj") {
		t.Errorf("diagnostics = %v, want fused-endobj error", rep.Diagnostics())
	}
	// The cursor backs up so the caller still sees the keyword.
	if tok := lx.NextTokenDefault(); string(tok.Value) != "endobj" {
		t.Errorf("next token is %q, want endobj", tok.Value)
	}

	obj, _, _ = parseString(t, "FlateDecodeendobj")
	if obj != String("FlateDecode") {
		t.Errorf("got %v, want string FlateDecode", obj)
	}
}

func TestParseFatalConditions(t *testing.T) {
	for _, input := range []string{"", ">>", "]", "}", "<< /Open 1", "[1 2"} {
		rep := NewReporter(false)
		_, err := NewParser(NewLexer([]byte(input)), nil, rep).ParseValue()
		if err == nil {
			t.Errorf("ParseValue(%q) succeeded, want error", input)
		}
	}
}
