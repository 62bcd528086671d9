package core

import (
	"strings"
	"testing"
)

func TestExpandObjectStream(t *testing.T) {
	body := "2 0 3 5 (hi) 42"
	container := &Stream{
		Dict: Dict{"Type": Name("ObjStm"), "N": Int(2), "First": Int(8)},
		ID:   ObjectID{Number: 1},
		Raw:  []byte(body),
	}
	rep := NewReporter(false)
	table := NewObjectTable(nil, rep)
	table.StoreResolved(ObjectID{Number: 1}, container)

	expandObjectStreams(table, map[int][]int{1: {0, 1}})

	if v, ok := table.FindIndirect(ObjectID{Number: 2}).Resolved(); !ok || v != String("hi") {
		t.Errorf("member 2 resolved to (%v, %v), want (hi)", v, ok)
	}
	if v, ok := table.FindIndirect(ObjectID{Number: 3}).Resolved(); !ok || v != Int(42) {
		t.Errorf("member 3 resolved to (%v, %v), want 42", v, ok)
	}
	if len(rep.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %v", rep.Diagnostics())
	}
}

func TestExpandObjectStreamMembersCanReference(t *testing.T) {
	body := "2 0 << /Next 9 0 R >>"
	container := &Stream{
		Dict: Dict{"Type": Name("ObjStm"), "N": Int(1), "First": Int(4)},
		ID:   ObjectID{Number: 1},
		Raw:  []byte(body),
	}
	table := NewObjectTable(nil, NewReporter(false))
	table.StoreResolved(ObjectID{Number: 1}, container)

	expandObjectStreams(table, map[int][]int{1: {0}})

	v, _ := table.FindIndirect(ObjectID{Number: 2}).Resolved()
	d, ok := v.(Dict)
	if !ok {
		t.Fatalf("member 2 is %T, want Dict", v)
	}
	ref, ok := d.Get("Next").(*Indirect)
	if !ok || ref.ID() != (ObjectID{Number: 9}) {
		t.Errorf("/Next = %v, want reference to 9 0", d.Get("Next"))
	}
}

func TestExpandObjectStreamBadContainer(t *testing.T) {
	rep := NewReporter(false)
	table := NewObjectTable(nil, rep)
	table.StoreResolved(ObjectID{Number: 1}, Dict{"Type": Name("ObjStm")})
	table.StoreResolved(ObjectID{Number: 2}, &Stream{
		Dict: Dict{"Type": Name("Font")},
		ID:   ObjectID{Number: 2},
	})
	table.StoreResolved(ObjectID{Number: 3}, &Stream{
		Dict: Dict{"Type": Name("ObjStm"), "N": Int(1)}, // no /First
		ID:   ObjectID{Number: 3},
	})

	expandObjectStreams(table, map[int][]int{1: {0}, 2: {0}, 3: {0}})

	if len(rep.Errors()) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(rep.Errors()), rep.Diagnostics())
	}
	for i, want := range []string{"is not a stream", `has type "/Font"`, "missing /First"} {
		if !strings.Contains(rep.Errors()[i].Message, want) {
			t.Errorf("error %d = %q, want substring %q", i, rep.Errors()[i].Message, want)
		}
	}
}
