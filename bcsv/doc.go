// Package bcsv reads and writes BCSV record tables.
//
// A BCSV file is a fixed-stride table of rows described by a field table.
// Each field names a 32-bit name hash, a type, a byte offset into the row and
// a mask and shift that allow several small fields to share one stored word.
// Strings are stored once in a deduplicated pool that follows the rows.
//
// Decode and Encode are whole-buffer and synchronous:
//
//	names := hashname.NewTable()
//	_ = names.LoadFile("names.txt")
//	tbl, err := bcsv.Decode(data, bcsv.WithNames(names))
//	...
//	out, err := bcsv.Encode(tbl)
//
// Field names that are not in the word list decode as "[XXXXXXXX]"
// placeholders, which encode back to the original hash.
package bcsv
