package storage

import (
	"path"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const keyCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// newKey generates the storage key for a fresh placement. The random token
// carries all the uniqueness; the extension survives only so backends and
// sniffing tools stay cheap. Nothing else of the user-supplied name makes
// it into the key, which also kills any path traversal through it.
func newKey(declaredName string) (string, error) {
	token, err := gonanoid.Generate(keyCharset, 21)
	if err != nil {
		return "", err
	}

	return token + sanitizeExt(declaredName), nil
}

func sanitizeExt(name string) string {
	ext := strings.ToLower(path.Ext(path.Base(name)))
	if len(ext) < 2 {
		return ""
	}

	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}

	return ext
}
