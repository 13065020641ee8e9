package service

import (
	"crypto/rand"
	"encoding/base64"
	"path"
	"strings"
)

func generateToken(lengthBytes int) (string, error) {
	if lengthBytes <= 0 {
		lengthBytes = 32
	}
	buf := make([]byte, lengthBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// sanitizeFileName keeps the base name of an uploaded file.
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	name = path.Base(path.Clean("/" + name))
	if name == "/" || name == "." || name == ".." {
		return ""
	}
	return name
}

// normalizeOwner trims a salesperson name and rejects path-like input.
func normalizeOwner(owner string) string {
	owner = strings.TrimSpace(owner)
	if strings.ContainsAny(owner, "/\\") {
		return ""
	}
	return owner
}
