// Package jsystem reads and writes the asset containers of a family of
// console game engines: Yaz0 compressed buffers, RARC archives and BCSV
// tables.
//
// The codecs live in subpackages:
//   - [github.com/meigma/jsystem/yaz0]: the Yaz0 container around the LZ codec
//   - [github.com/meigma/jsystem/rarc]: hierarchical archives
//   - [github.com/meigma/jsystem/bcsv]: typed binary tables
//   - [github.com/meigma/jsystem/hashname]: the name hash and its reverse table
//   - [github.com/meigma/jsystem/registry]: publishing archives to OCI registries
//
// This package ties them together: [Detect] identifies a buffer's format,
// [ReadTree] and [WriteTree] move archives between the filesystem and
// memory, and [Client] pushes and pulls archives with a shared
// compression cache.
//
// # Quick Start
//
// Pack a directory into a compressed archive:
//
//	root, err := jsystem.ReadTree("./stage")
//	if err != nil {
//	    return err
//	}
//	data, err := rarc.Encode(root, rarc.WithCompression(true))
//
// Publish it:
//
//	c, err := jsystem.NewClient(jsystem.WithDockerConfig(), jsystem.WithCacheDir("/var/cache/jsys"))
//	if err != nil {
//	    return err
//	}
//	_, err = c.Push(ctx, "ghcr.io/myorg/stage:v1", root)
package jsystem
