// Package core reconciles invoice rows into a master stock sheet.
//
// The package holds all domain logic independent of any UI, store or
// transport. It can be used by web handlers, the CLI, or tests without
// modification.
//
// # Sheets
//
// A sheet is a grid of strings: row 0 holds machine column names, row 1
// display labels, and every following row is data. [Codec] turns grids into
// a [Schema] plus a typed [Table] and back. A table is only ever encoded
// when it is aligned to its schema, so a sheet is never written with
// missing, extra or reordered columns.
//
// # Merging
//
// [Engine.Merge] folds incoming rows into a table by reference key:
//
//	engine := core.NewEngine(core.DefaultRefColumn, core.DefaultQtyColumn)
//	merged, stats := engine.Merge(snap.Table, rows, snap.Model)
//
// Matching rows add their quantities; the matched row keeps its other
// fields. Everything else is appended. Quantities go through [ToInteger]
// and are never negative.
//
// # Service
//
// [Service] drives whole cycles against a [SheetStore]: Load, Import (extract,
// normalize, rename, stamp, merge, save), ReplaceRows and Save. Cycles that
// write are serialized by a [CycleLimiter]. Every write is a full overwrite
// of the master sheet.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - SCH001, FMT001-FMT002: header and layout errors
//   - EXT001, NRM001: extraction and normalization failures
//   - STO001-STO003: store errors, including partial writes
//   - CYC001: another cycle is running
package core
