package core

// Per-invoice fields stamped onto every imported row.
const (
	ManufacturerColumn = "FABRICANTE"
	SupplierColumn     = "Forn_Prod"
)

// ExternalFieldNames maps the field names produced by the normalization
// webhook to the machine names of the stock sheet. Fields not listed keep
// their name.
var ExternalFieldNames = map[string]string{
	"Cód. Produto / EAN*": "REFERÊNCIA",
	"Nome Produto*":       "Produto",
	"Unidade*":            "unid",
	"Preço Custo":         "Preço",
	"Qtd. Estoque Atual":  "QtdEstoqueAtual",
}

// RenameField returns the machine name for an external field name.
func RenameField(name string) string {
	if to, ok := ExternalFieldNames[name]; ok {
		return to
	}
	return name
}

// RowsFromRecords converts loosely typed records into rows, renaming
// external fields and normalizing qtyColumn to an integer.
// When a record carries both the external and the canonical name of a field,
// the canonical one wins.
func RowsFromRecords(records []map[string]any, qtyColumn string) []Row {
	if qtyColumn == "" {
		qtyColumn = DefaultQtyColumn
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(rec))
		for k, v := range rec {
			name := RenameField(k)
			if name != k {
				if _, clash := rec[name]; clash {
					continue
				}
			}
			row[name] = CellFromAny(v)
		}
		row[qtyColumn] = QuantityCell(row[qtyColumn])
		rows = append(rows, row)
	}
	return rows
}

// StampRows sets every field in stamp on each row, overwriting what the row
// had. Blank stamp values are skipped.
func StampRows(rows []Row, stamp map[string]string) {
	for _, r := range rows {
		for k, v := range stamp {
			if v == "" {
				continue
			}
			r[k] = TextCell(v)
		}
	}
}
