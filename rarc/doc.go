// Package rarc reads and writes RARC archives.
//
// A RARC archive stores a tree of directories and files: a directory table,
// an entry table, a shared name pool and a content region. Every directory
// lists its children followed by "." and ".." entries. Archives are often
// distributed Yaz0-compressed; Decode unwraps them transparently and Encode
// can wrap its output with WithCompression.
//
// The tree is a sum type over *Dir and *File:
//
//	root := rarc.NewDir("stage",
//		rarc.NewDir("jmp",
//			rarc.NewFile("ObjInfo", objInfo),
//		),
//		rarc.NewFile("readme.txt", nil),
//	)
//	data, err := rarc.Encode(root, rarc.WithCompression(true))
//
// Decoded trees can be traversed with Walk or Visit, searched with Find and
// served to the standard library through FS.
package rarc
