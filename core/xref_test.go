package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLocateStartXref(t *testing.T) {
	data := []byte("%PDF-1.4\njunk\nstartxref\n1234\n%%EOF\n")
	rep := NewReporter(false)
	off, err := LocateStartXref(data, rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if off != 1234 {
		t.Errorf("offset = %d, want 1234", off)
	}

	for _, bad := range []string{
		"%PDF-1.4\nno anchor here\n%%EOF",
		"startxref\nnotanumber\n%%EOF",
		"startxref\n10\nwrong",
	} {
		if _, err := LocateStartXref([]byte(bad), rep); err == nil {
			t.Errorf("LocateStartXref(%q) succeeded, want error", bad)
		}
	}
}

func TestClassicXrefTable(t *testing.T) {
	data := "xref\n" +
		"0 3\n" +
		"0000000000 65535 f \n" +
		"0000000015 00000 n \n" +
		"0000000099 00000 n \n" +
		"trailer\n<< /Size 3 /Root 1 0 R >>\nstartxref\n0\n%%EOF"
	rep := NewReporter(false)
	table := NewObjectTable([]byte(data), rep)
	trailer, err := NewXRef(table).ReadChain(0)
	if err != nil {
		t.Fatalf("ReadChain: %v", err)
	}

	if n, _ := trailer.GetInt("Size"); n != 3 {
		t.Errorf("trailer /Size = %d, want 3", n)
	}
	wantOffsets := map[ObjectID]int{
		{Number: 1}: 15,
		{Number: 2}: 99,
	}
	if diff := cmp.Diff(wantOffsets, table.offsets); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}
	if len(rep.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %v", rep.Diagnostics())
	}
}

func TestClassicXrefTableLenientRescan(t *testing.T) {
	// The subsection header claims three entries but only two follow,
	// so the strict pass derails and the line scanner takes over.
	data := "xref\n" +
		"0 3\n" +
		"0000000000 65535 f \n" +
		"0000000015 00000 n \n" +
		"trailer\n<< /Size 2 >>\nstartxref\n0\n%%EOF"
	rep := NewReporter(false)
	table := NewObjectTable([]byte(data), rep)
	trailer, err := NewXRef(table).ReadChain(0)
	if err != nil {
		t.Fatalf("ReadChain: %v", err)
	}
	if n, _ := trailer.GetInt("Size"); n != 2 {
		t.Errorf("trailer /Size = %d, want 2", n)
	}
	if off, _ := table.Offset(ObjectID{Number: 1}); off != 15 {
		t.Errorf("object 1 offset = %d, want 15", off)
	}
	found := false
	for _, d := range rep.Warnings() {
		if strings.Contains(d.Message, "badly formatted xref table") {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v, want badly-formatted warning", rep.Diagnostics())
	}
}

func TestClassicXrefTableInvalid(t *testing.T) {
	data := "xref\nutter nonsense with no end marker at all"
	table := NewObjectTable([]byte(data), NewReporter(false))
	if _, err := NewXRef(table).ReadChain(0); err == nil {
		t.Fatal("expected error for unrescuable table")
	}
}

func TestReadChainCarriesOlderVersion(t *testing.T) {
	base := "xref\n0 1\n0000000000 65535 f \ntrailer\n<< /Size 1 /Version /1.7 >>\nstartxref\n0\n%%EOF\n"
	newer := "xref\n0 1\n0000000000 65535 f \ntrailer\n<< /Size 1 /Prev 0 /Root 1 0 R >>\n"
	data := base + newer
	table := NewObjectTable([]byte(data), NewReporter(false))
	trailer, err := NewXRef(table).ReadChain(len(base))
	if err != nil {
		t.Fatalf("ReadChain: %v", err)
	}
	if v, _ := trailer.GetName("Version"); v != "1.7" {
		t.Errorf("trailer /Version = %q, want 1.7 carried from the older section", v)
	}
	if !trailer.Has("Root") {
		t.Error("newest section's /Root pointer was lost")
	}
}

func TestReadChainPrevLoopIsFatal(t *testing.T) {
	data := "xref\n0 1\n0000000000 65535 f \ntrailer\n<< /Size 1 /Prev 0 >>\nstartxref\n0\n%%EOF"
	table := NewObjectTable([]byte(data), NewReporter(false))
	_, err := NewXRef(table).ReadChain(0)
	if err == nil {
		t.Fatal("expected error for a circular /Prev chain")
	}
	if !strings.Contains(err.Error(), "circular") {
		t.Errorf("error = %v, want circular-chain failure", err)
	}
}

func TestMissingStartxrefWarning(t *testing.T) {
	data := "xref\n0 1\n0000000000 65535 f \ntrailer\n<< /Size 1 >>\n"
	rep := NewReporter(false)
	table := NewObjectTable([]byte(data), rep)
	if _, err := NewXRef(table).ReadChain(0); err != nil {
		t.Fatalf("ReadChain: %v", err)
	}
	found := false
	for _, d := range rep.Warnings() {
		if strings.Contains(d.Message, `expected "startxref"`) {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v, want missing-startxref warning", rep.Diagnostics())
	}
}

// buildXrefStream assembles an uncompressed cross-reference stream
// object with the given extra dictionary entries and entry rows.
func buildXrefStream(num int, extra string, rows []byte) string {
	return fmt.Sprintf("%d 0 obj\n<< /Type /XRef %s /Length %d >>\nstream\n%s\nendstream endobj\n",
		num, extra, len(rows), rows)
}

func TestXrefStream(t *testing.T) {
	rows := []byte{
		0, 0x00, 0x00, 0xFF, // free entry
		1, 0x00, 0x0F, 0x00, // object 1 at offset 15
		1, 0x00, 0x63, 0x00, // object 2 at offset 99
	}
	data := buildXrefStream(5, "/Size 3 /W [1 2 1] /Root 1 0 R", rows) + "startxref\n0\n%%EOF"
	rep := NewReporter(false)
	table := NewObjectTable([]byte(data), rep)
	trailer, err := NewXRef(table).ReadChain(0)
	if err != nil {
		t.Fatalf("ReadChain: %v", err)
	}

	if typ, _ := trailer.GetName("Type"); typ != "XRef" {
		t.Errorf("trailer /Type = %v, want XRef", typ)
	}
	wantOffsets := map[ObjectID]int{
		{Number: 1}: 15,
		{Number: 2}: 99,
	}
	if diff := cmp.Diff(wantOffsets, table.offsets); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}
}

func TestXrefStreamZeroWidthTypeColumn(t *testing.T) {
	// With a zero-width type column every entry is implicitly in use.
	rows := []byte{
		0x00, 0x0F,
		0x00, 0x63,
	}
	data := buildXrefStream(5, "/Size 5 /Index [1 2] /W [0 2 0]", rows) + "startxref\n0\n%%EOF"
	table := NewObjectTable([]byte(data), NewReporter(false))
	if _, err := NewXRef(table).ReadChain(0); err != nil {
		t.Fatalf("ReadChain: %v", err)
	}
	if off, _ := table.Offset(ObjectID{Number: 1}); off != 15 {
		t.Errorf("object 1 offset = %d, want 15", off)
	}
	if off, _ := table.Offset(ObjectID{Number: 2}); off != 99 {
		t.Errorf("object 2 offset = %d, want 99", off)
	}
}

func TestXrefStreamFatalDamage(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"wrong type", "5 0 obj\n<< /Type /Pages /Size 1 /W [1 2 1] /Length 4 >>\nstream\nxxxx\nendstream endobj\n"},
		{"oversized widths", buildXrefStream(5, "/Size 1 /W [1 9 1]", []byte{1, 0, 9, 0})},
		{"indirect length", "5 0 obj\n<< /Type /XRef /Size 1 /W [1 2 1] /Length 2 0 R >>\nstream\nxx\nendstream endobj\n"},
		{"truncated rows", buildXrefStream(5, "/Size 4 /W [1 2 1]", []byte{1, 0, 9, 0})},
		{"missing size", buildXrefStream(5, "/W [1 2 1]", []byte{1, 0, 9, 0})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewObjectTable([]byte(tt.data), NewReporter(false))
			if _, err := NewXRef(table).ReadChain(0); err == nil {
				t.Error("expected a fatal error")
			}
		})
	}
}
