package storage

import (
	"fmt"
	"path"
	"strings"
)

// PublicIDFromURL derives a media-store public identifier from a stored
// asset URL: the last two path segments (folder + object name). Image
// identifiers drop the file extension; raw identifiers keep the final
// segment as-is. The per-kind asymmetry is part of the store contract,
// not an accident: image deletes match derived variants by prefix,
// raw deletes address one exact object.
func PublicIDFromURL(rawURL string, kind ResourceKind) (string, error) {
	parts := strings.Split(strings.TrimSuffix(rawURL, "/"), "/")
	if len(parts) < 2 {
		return "", fmt.Errorf("asset url %q has no folder segment", rawURL)
	}

	folder := parts[len(parts)-2]
	name := parts[len(parts)-1]
	if folder == "" || name == "" {
		return "", fmt.Errorf("asset url %q has empty path segments", rawURL)
	}

	if kind == KindImage {
		name = strings.TrimSuffix(name, path.Ext(name))
	}

	return folder + "/" + name, nil
}
