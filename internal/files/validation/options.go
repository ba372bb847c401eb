package validation

// Options is the immutable admission configuration threaded into the file
// service at construction. Validation functions never read ambient state.
type Options struct {
	// MaxSizeBytes is the largest accepted declared upload size.
	MaxSizeBytes int64

	// AllowedExtensions holds lowercased extensions including the leading dot.
	AllowedExtensions []string

	// Signatures maps extensions to accepted leading-byte signatures. An
	// extension on the allow-list with no entry here passes content
	// verification unconditionally; plain-text formats have nothing to verify.
	Signatures map[string][][]byte
}

// DefaultMaxSizeBytes is 50 MiB.
const DefaultMaxSizeBytes = 50 * 1024 * 1024

// DefaultOptions returns the stock admission configuration.
func DefaultOptions() Options {
	return Options{
		MaxSizeBytes:      DefaultMaxSizeBytes,
		AllowedExtensions: []string{".pdf", ".xlsx", ".xls", ".csv", ".txt"},
		Signatures: map[string][][]byte{
			".pdf":  {{0x25, 0x50, 0x44, 0x46}}, // %PDF
			".xlsx": {{0x50, 0x4B, 0x03, 0x04}}, // PK zip archive
			".xls":  {{0xD0, 0xCF, 0x11, 0xE0}}, // OLE2 compound document
		},
	}
}
