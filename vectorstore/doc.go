// Package vectorstore persists steering-vector sets.
//
// All backends share one layout: a behavior maps to a manifest plus a JSON
// metadata record and a raw little-endian float32 array per layer. Raw
// arrays are framed with optional LZ4 or ZSTD compression. Because the
// manifest records its codec and compression, any backend can read sets
// written by another.
package vectorstore
