package core

import (
	"reflect"
	"testing"
)

func testSchema() *Schema {
	return mustLoadSchema(
		[]string{"REFERÊNCIA", "Produto", "QtdEstoqueAtual", "Preço"},
		[]string{"Referência", "Produto", "Estoque atual", "Preço"},
	)
}

func TestAlign(t *testing.T) {
	s := testSchema()
	in := Table{
		Columns: []string{"Produto", "extra", "REFERÊNCIA"},
		Rows: []Row{
			{"Produto": TextCell("Parafuso"), "extra": TextCell("x"), "REFERÊNCIA": TextCell("A1")},
		},
	}

	got := Align(in, s)

	if !reflect.DeepEqual(got.Columns, s.ColumnOrder()) {
		t.Errorf("Columns = %v, want %v", got.Columns, s.ColumnOrder())
	}
	if !got.AlignedTo(s) {
		t.Fatal("aligned table fails AlignedTo")
	}
	row := got.Rows[0]
	if _, ok := row["extra"]; ok {
		t.Error("column outside schema was kept")
	}
	if !row["QtdEstoqueAtual"].IsEmpty() || !row["Preço"].IsEmpty() {
		t.Error("missing columns should be inserted empty")
	}
	if row["REFERÊNCIA"].String() != "A1" {
		t.Errorf("REFERÊNCIA = %q, want A1", row["REFERÊNCIA"].String())
	}

	// Input untouched
	if _, ok := in.Rows[0]["extra"]; !ok {
		t.Error("Align mutated its input")
	}
}

func TestAlignIdempotent(t *testing.T) {
	s := testSchema()
	in := Table{Rows: []Row{
		{"REFERÊNCIA": TextCell("A"), "junk": IntCell(1)},
		{"Preço": TextCell("2,5")},
	}}

	once := Align(in, s)
	twice := Align(once, s)

	if !tablesEqual(once, twice) {
		t.Errorf("Align is not idempotent:\n once  = %v\n twice = %v", once, twice)
	}
}

func TestAlignPaddingColumnsStayEmpty(t *testing.T) {
	s := mustLoadSchema([]string{"A", "", "B"}, []string{"a", "", "b"})
	in := Table{Rows: []Row{{"A": TextCell("1"), "": TextCell("leak"), "B": TextCell("2")}}}

	got := Align(in, s)
	if !got.Rows[0][""].IsEmpty() {
		t.Errorf("padding column carried %q", got.Rows[0][""].String())
	}
}

func TestAlignedTo(t *testing.T) {
	s := testSchema()

	tests := []struct {
		name string
		t    Table
		want bool
	}{
		{
			name: "empty aligned table",
			t:    NewTable(s),
			want: true,
		},
		{
			name: "wrong order",
			t:    Table{Columns: []string{"Produto", "REFERÊNCIA", "QtdEstoqueAtual", "Preço"}},
			want: false,
		},
		{
			name: "row missing key",
			t: Table{
				Columns: s.ColumnOrder(),
				Rows:    []Row{{"REFERÊNCIA": TextCell("A")}},
			},
			want: false,
		},
		{
			name: "row with extra key",
			t:    withExtra(Align(Table{Rows: []Row{{}}}, s), "x"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.t.AlignedTo(s); got != tt.want {
				t.Errorf("AlignedTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTableClone(t *testing.T) {
	orig := Table{Columns: []string{"A"}, Rows: []Row{{"A": IntCell(1)}}}
	c := orig.Clone()
	c.Rows[0]["A"] = IntCell(2)
	c.Columns[0] = "Z"

	if orig.Rows[0]["A"].Int() != 1 || orig.Columns[0] != "A" {
		t.Error("Clone shares state with the original")
	}
}

// withExtra returns a copy whose first row carries an extra key.
func withExtra(t Table, key string) Table {
	c := t.Clone()
	c.Rows[0][key] = TextCell("x")
	return c
}

func tablesEqual(a, b Table) bool {
	if !reflect.DeepEqual(a.Columns, b.Columns) || len(a.Rows) != len(b.Rows) {
		return false
	}
	for i := range a.Rows {
		if len(a.Rows[i]) != len(b.Rows[i]) {
			return false
		}
		for k, v := range a.Rows[i] {
			w, ok := b.Rows[i][k]
			if !ok || !v.Equal(w) {
				return false
			}
		}
	}
	return true
}
