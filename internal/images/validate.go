package images

import (
	"path/filepath"
	"strings"
)

// allowedExtensions is the fixed whitelist of accepted image types.
var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
}

// PickExtension extracts the lower-cased extension from a user-supplied
// filename and checks it against the allowed set. The check is purely
// name-based; file content is never inspected.
func PickExtension(declaredFilename string) (string, error) {
	name := sanitizeFilename(declaredFilename)
	if name == "" {
		return "", ErrInvalidFileType
	}

	dot := strings.LastIndexByte(name, '.')
	if dot < 0 || dot == len(name)-1 {
		return "", ErrInvalidFileType
	}

	ext := strings.ToLower(name[dot+1:])
	if !allowedExtensions[ext] {
		return "", ErrInvalidFileType
	}

	return ext, nil
}

// sanitizeFilename strips path components and control characters from a
// user-supplied filename. Browsers may send full paths; nothing from the
// declared name is ever used as a filesystem path.
func sanitizeFilename(name string) string {
	// Handle both separators regardless of the server's platform.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = filepath.Base(name)

	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)

	if name == "." || name == ".." {
		return ""
	}
	return name
}
