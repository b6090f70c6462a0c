// Package codec provides compression for individual stored values.
package codec

// Codec compresses and decompresses whole values.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Encode returns the compressed form of src.
	Encode(src []byte) ([]byte, error)
	// Decode returns the original bytes of a value produced by Encode.
	Decode(src []byte) ([]byte, error)
	// Name identifies the codec (e.g., "zstd", "gzip").
	// Returns "none" for no compression.
	Name() string
}
