// Package registry publishes RARC archives to OCI registries and reads them
// back.
//
// An archive is stored as an OCI 1.1 artifact with two layers: a
// FlatBuffers index describing the tree (see package index) and the encoded
// archive itself, optionally Yaz0 or zstd compressed. The index can be
// fetched on its own with [Client.Inspect], which lets callers list an
// archive without downloading its content.
//
// Basic usage:
//
//	c := registry.NewClient(registry.WithPlainHTTP(true))
//	desc, err := c.Push(ctx, "localhost:5000/stages/title:v1", root,
//		registry.PushWithCompression(registry.CompressionYaz0))
//	...
//	a, err := c.Pull(ctx, "localhost:5000/stages/title:v1")
package registry
