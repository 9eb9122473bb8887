package core

import (
	"strconv"
	"testing"
)

// ============================================================================
// Quantity Benchmarks
// ============================================================================

// BenchmarkToInteger benchmarks quantity parsing.
// This is a hot path during import: every incoming row goes through it.
func BenchmarkToInteger(b *testing.B) {
	testCases := []Cell{
		TextCell("12"),
		TextCell("3,5"),
		TextCell(" 1.000 "),
		TextCell("abc"),
		CellFromAny(4.6),
		IntCell(7),
		EmptyCell(),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ToInteger(tc)
		}
	}
}

// ============================================================================
// Codec and Merge Benchmarks
// ============================================================================

func benchGrid(rows int) [][]string {
	grid := [][]string{
		{"REFERÊNCIA", "Produto", "FABRICANTE", "Forn_Prod", "QtdEstoqueAtual"},
		{"Referência", "Produto", "Fabricante", "Fornecedor", "Estoque"},
	}
	for i := 0; i < rows; i++ {
		n := strconv.Itoa(i)
		grid = append(grid, []string{"REF" + n, "Produto " + n, "ACME", "F1", n})
	}
	return grid
}

// BenchmarkDecode benchmarks decoding a 5k-row master sheet.
func BenchmarkDecode(b *testing.B) {
	codec := NewCodec()
	grid := benchGrid(5000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := codec.Decode(grid); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEncode benchmarks encoding a 5k-row table for a full overwrite.
func BenchmarkEncode(b *testing.B) {
	codec := NewCodec()
	schema, table, err := codec.Decode(benchGrid(5000))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := codec.Encode(schema, table); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMerge benchmarks folding a 50-line invoice into a 5k-row table,
// half matching existing references.
func BenchmarkMerge(b *testing.B) {
	schema, table, err := NewCodec().Decode(benchGrid(5000))
	if err != nil {
		b.Fatal(err)
	}
	engine := NewEngine(DefaultRefColumn, DefaultQtyColumn)

	incoming := make([]Row, 50)
	for i := range incoming {
		ref := "REF" + strconv.Itoa(i*200)
		if i%2 == 1 {
			ref = "NEW" + strconv.Itoa(i)
		}
		incoming[i] = Row{
			DefaultRefColumn: TextCell(ref),
			DefaultQtyColumn: IntCell(2),
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Merge(table, incoming, schema)
	}
}
