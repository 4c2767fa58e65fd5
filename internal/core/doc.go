// Package core implements bulk order import: it reads a seller's order file,
// checks its layout, splits multi-product cells into product lines, and
// validates every line against a warehouse catalog snapshot.
//
// The package has no transport dependencies. Web handlers, the CLI, and
// tests all drive it through [Service] or directly through [Importer].
//
// # Pipeline
//
//	[Decoder] -> [ValidateHeader] -> [NormalizeRow] -> [InventoryGateway] -> [FieldValidator] -> [Aggregate]
//
// Decoding picks a [Decoder] by [FileType]; both decoders yield the same
// [RawTable] for equivalent content. The header must match the eleven
// columns of [HeaderSchema] exactly. Each data row becomes one
// [OrderRecord]. The catalog is fetched once per import, after the header
// passes, and every record is checked against that single snapshot.
//
// # Errors
//
// Problems with the file as a whole abort the import with an [ImportError]
// whose Kind tells callers what went wrong. Problems inside a row never
// abort; they are appended to that row's Errors (invalid) or Warnings
// (still valid). Technical errors are mapped to support codes with
// [MapError].
//
// # Concurrency
//
// [Importer] keeps no per-import state. [Service] bounds parallel imports
// with an [ImportLimiter] and applies a deadline to each import.
package core
