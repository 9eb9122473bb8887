package core

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDecode(t *testing.T) {
	grid := [][]string{
		{"REFERÊNCIA", "Produto", "QtdEstoqueAtual", "Preço"},
		{"Referência", "Produto", "Estoque", "Preço"},
		{"A1", "Parafuso", "12", "1.5"},
		{"B2", "", "1,5", "2,30"},
		{"C3"},
	}

	s, tbl, err := NewCodec().Decode(grid)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !tbl.AlignedTo(s) {
		t.Fatal("decoded table not aligned")
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(tbl.Rows))
	}

	tests := []struct {
		col      string
		idx      int
		wantKind CellKind
		wantStr  string
	}{
		{col: "QtdEstoqueAtual", idx: 0, wantKind: CellInteger, wantStr: "12"},
		{col: "Preço", idx: 0, wantKind: CellDecimal, wantStr: "1.5"},
		{col: "Produto", idx: 1, wantKind: CellEmpty, wantStr: ""},
		{col: "QtdEstoqueAtual", idx: 1, wantKind: CellText, wantStr: "1,5"},
		{col: "Preço", idx: 1, wantKind: CellText, wantStr: "2,30"},
		{col: "Preço", idx: 2, wantKind: CellEmpty, wantStr: ""},
	}
	for _, tt := range tests {
		c := tbl.Rows[tt.idx][tt.col]
		if c.Kind() != tt.wantKind || c.String() != tt.wantStr {
			t.Errorf("row %d %s = %s %q, want %s %q", tt.idx, tt.col, c.Kind(), c.String(), tt.wantKind, tt.wantStr)
		}
	}
}

func TestDecode_HugeExponent(t *testing.T) {
	grid := [][]string{
		{"REFERÊNCIA", "QtdEstoqueAtual", "Preço"},
		{"Referência", "Estoque", "Preço"},
		{"A1", "1e999999999", "1e999999999"},
		{"B2", "1e-999999999", "1e-999999999"},
	}

	_, tbl, err := NewCodec().Decode(grid)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, r := range tbl.Rows {
		for _, col := range []string{"QtdEstoqueAtual", "Preço"} {
			if got := r.Get(col); got.Kind() != CellText || got.String() != grid[i+2][1] {
				t.Errorf("row %d %s = %s %q, want text %q", i, col, got.Kind(), got.String(), grid[i+2][1])
			}
		}
		if got := ToInteger(r.Get("QtdEstoqueAtual")); got != 0 {
			t.Errorf("row %d quantity = %d, want 0", i, got)
		}
	}
}

func TestDecode_TooFewRows(t *testing.T) {
	for _, grid := range [][][]string{nil, {{"A", "B"}}} {
		_, _, err := NewCodec().Decode(grid)
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("Decode(%d rows) error = %v, want *FormatError", len(grid), err)
			continue
		}
		if fe.Rows != len(grid) {
			t.Errorf("FormatError.Rows = %d, want %d", fe.Rows, len(grid))
		}
	}
}

func TestDecode_DuplicateHeader(t *testing.T) {
	_, _, err := NewCodec().Decode([][]string{{"A", "A"}, {"a", "b"}})
	if !IsSchemaError(err) {
		t.Errorf("error = %v, want *SchemaError", err)
	}
}

func TestDecode_RaggedHeader(t *testing.T) {
	// Sheet APIs drop trailing blank cells.
	grid := [][]string{
		{"A", "B", "C"},
		{"a"},
		{"1", "2", "3", "overflow"},
	}

	s, tbl, err := NewCodec().Decode(grid)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(s.Labels(), []string{"a", "", ""}) {
		t.Errorf("Labels() = %q, want [a  ]", s.Labels())
	}
	if s.DisplayLabel("C") != "C" {
		t.Errorf("DisplayLabel(C) = %q, want C", s.DisplayLabel("C"))
	}
	if got := tbl.Rows[0]["C"].String(); got != "3" {
		t.Errorf("C = %q, want 3", got)
	}
}

func TestDecode_PaddingColumnsAreEmpty(t *testing.T) {
	grid := [][]string{
		{"A", "", "B"},
		{"a", "note", "b"},
		{"1", "stray", "2"},
	}
	_, tbl, err := NewCodec().Decode(grid)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !tbl.Rows[0][""].IsEmpty() {
		t.Errorf("padding cell = %q, want empty", tbl.Rows[0][""].String())
	}
}

func TestEncode(t *testing.T) {
	s := testSchema()
	tbl := Align(Table{Rows: []Row{{
		"REFERÊNCIA":      TextCell("A"),
		"QtdEstoqueAtual": IntCell(8),
		"Preço":           DecimalCell(decimal.RequireFromString("12.5")),
	}}}, s)

	grid, err := NewCodec().Encode(s, tbl)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := [][]string{
		{"REFERÊNCIA", "Produto", "QtdEstoqueAtual", "Preço"},
		{"Referência", "Produto", "Estoque atual", "Preço"},
		{"A", "", "8", "12.5"},
	}
	if !reflect.DeepEqual(grid, want) {
		t.Errorf("Encode() =\n%q\nwant\n%q", grid, want)
	}
}

func TestEncode_RefusesMisaligned(t *testing.T) {
	s := testSchema()
	tbl := Table{Columns: s.ColumnOrder(), Rows: []Row{{"REFERÊNCIA": TextCell("A")}}}

	_, err := NewCodec().Encode(s, tbl)
	if !errors.Is(err, ErrMisaligned) {
		t.Errorf("Encode() error = %v, want ErrMisaligned", err)
	}
}

func TestRoundTrip(t *testing.T) {
	s := mustLoadSchema(
		[]string{"REFERÊNCIA", "", "QtdEstoqueAtual", "Preço", "obs"},
		[]string{"Referência", "", "Estoque", "", "Observação"},
	)
	tbl := Align(Table{Rows: []Row{
		{"REFERÊNCIA": TextCell("A"), "QtdEstoqueAtual": IntCell(3), "Preço": DecimalCell(decimal.RequireFromString("0.75")), "obs": TextCell(" spaced ")},
		{"REFERÊNCIA": TextCell("007"), "QtdEstoqueAtual": TextCell("n/a"), "Preço": TextCell("1,5")},
		{},
	}}, s)

	c := NewCodec()
	grid, err := c.Encode(s, tbl)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	s2, tbl2, err := c.Decode(grid)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !s.Equal(s2) {
		t.Errorf("schema changed across round trip: %v vs %v", s.ColumnOrder(), s2.ColumnOrder())
	}
	if !tablesEqual(tbl, tbl2) {
		t.Errorf("table changed across round trip:\n got  %v\n want %v", tbl2, tbl)
	}
}

func TestDecodeWithFallback(t *testing.T) {
	template := [][]string{
		{"REFERÊNCIA", "QtdEstoqueAtual"},
		{"Referência", "Estoque"},
	}

	t.Run("primary ok", func(t *testing.T) {
		primary := [][]string{{"X"}, {"x"}, {"1"}}
		d, err := NewCodec().DecodeWithFallback(primary, template)
		if err != nil {
			t.Fatalf("DecodeWithFallback: %v", err)
		}
		if d.FromTemplate {
			t.Error("FromTemplate = true, want false")
		}
		if d.Table.Len() != 1 {
			t.Errorf("rows = %d, want 1", d.Table.Len())
		}
	})

	t.Run("short primary uses template", func(t *testing.T) {
		d, err := NewCodec().DecodeWithFallback([][]string{{"only one row"}}, template)
		if err != nil {
			t.Fatalf("DecodeWithFallback: %v", err)
		}
		if !d.FromTemplate {
			t.Error("FromTemplate = false, want true")
		}
		if !reflect.DeepEqual(d.Schema.ColumnOrder(), template[0]) {
			t.Errorf("ColumnOrder() = %v, want %v", d.Schema.ColumnOrder(), template[0])
		}
	})

	t.Run("template validated by the same contract", func(t *testing.T) {
		_, err := NewCodec().DecodeWithFallback(nil, [][]string{{"A"}})
		if !IsFormatError(err) {
			t.Errorf("error = %v, want FormatError", err)
		}
	})

	t.Run("schema error in primary is not masked", func(t *testing.T) {
		_, err := NewCodec().DecodeWithFallback([][]string{{"A", "A"}, {"", ""}}, template)
		if !IsSchemaError(err) {
			t.Errorf("error = %v, want SchemaError", err)
		}
	})
}
