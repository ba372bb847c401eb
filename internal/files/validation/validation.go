// Package validation implements the file-admission checks every upload must
// pass before bytes reach storage: directory tag, filename sanitization,
// extension allow-list, and content-signature verification.
package validation

import (
	"io"
	"strings"
)

// Directory tags are a closed, case-sensitive set.
const (
	DirInbound  = "inbound"
	DirOutbound = "outbound"
)

// maxFileNameLength caps sanitized names. Longer names are truncated by prefix;
// no attempt is made to preserve the extension.
const maxFileNameLength = 255

// signatureProbeLength is how many leading bytes are inspected for magic-byte
// verification.
const signatureProbeLength = 8

// minSignatureBytes is the minimum number of readable bytes required when the
// extension has a registered signature.
const minSignatureBytes = 4

// ValidDirectory reports whether dir is exactly one of the two allowed
// directory tags. No subpaths, no wildcards, no case folding.
func ValidDirectory(dir string) bool {
	return dir == DirInbound || dir == DirOutbound
}

// SanitizeFileName normalizes an untrusted filename. It strips any directory
// path components, replaces every character outside [A-Za-z0-9._-] with an
// underscore, and truncates to 255 characters. Returns ok=false when nothing
// usable remains (empty, whitespace-only, or only dots and underscores).
func SanitizeFileName(raw string) (string, bool) {
	name := stripPath(raw)
	if strings.TrimSpace(name) == "" {
		return "", false
	}

	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-':
			return r
		default:
			return '_'
		}
	}, name)

	// Names like "..." or "___" carry no usable content.
	stripped := strings.Map(func(r rune) rune {
		if r == '.' || r == '_' {
			return -1
		}
		return r
	}, name)
	if stripped == "" {
		return "", false
	}

	if len(name) > maxFileNameLength {
		name = name[:maxFileNameLength]
	}
	return name, true
}

// stripPath returns the final path segment of raw, treating both slash styles
// as separators so Windows-style client paths are handled.
func stripPath(raw string) string {
	if i := strings.LastIndexAny(raw, `/\`); i >= 0 {
		return raw[i+1:]
	}
	return raw
}

// Extension returns the lowercased extension of name including the leading
// dot, or "" when the name has none.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i:])
}

// HasAllowedExtension reports whether the file's extension is on the
// configured allow-list. The match is case-insensitive.
func HasAllowedExtension(name string, opts Options) bool {
	ext := Extension(name)
	if ext == "" {
		return false
	}
	for _, allowed := range opts.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// CheckSignature verifies the stream's leading bytes against the signatures
// registered for the file's extension. Extensions with no registered signature
// pass unconditionally. The stream's position is restored before returning,
// regardless of outcome.
func CheckSignature(content io.ReadSeeker, name string, opts Options) (bool, error) {
	sigs := opts.Signatures[Extension(name)]
	if len(sigs) == 0 {
		return true, nil
	}

	pos, err := content.Seek(0, io.SeekCurrent)
	if err != nil {
		return false, err
	}

	buf := make([]byte, signatureProbeLength)
	n, err := io.ReadFull(content, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	if _, err := content.Seek(pos, io.SeekStart); err != nil {
		return false, err
	}

	if n < minSignatureBytes {
		return false, nil
	}

	for _, sig := range sigs {
		if len(sig) <= n && string(buf[:len(sig)]) == string(sig) {
			return true, nil
		}
	}
	return false, nil
}
