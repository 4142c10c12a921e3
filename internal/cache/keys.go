package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"strings"
)

// PrefixArchive namespaces downloaded repository archives
const PrefixArchive = "archive"

// GenerateKey generates a cache key from a URL: SHA256 of the normalized form
func GenerateKey(rawURL string) string {
	normalized := normalizeForKey(rawURL)
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// ArchiveKey generates the cache key for an archive download URL
func ArchiveKey(archiveURL string) string {
	return PrefixArchive + ":" + GenerateKey(archiveURL)
}

// normalizeForKey lower-cases the host and drops default ports, fragments and
// trailing slashes so equivalent archive URLs share one entry
func normalizeForKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Host = strings.ToLower(u.Host)

	if (u.Scheme == "http" && u.Port() == "80") ||
		(u.Scheme == "https" && u.Port() == "443") {
		u.Host = u.Hostname()
	}

	if u.Path == "" {
		u.Path = "/"
	} else {
		u.Path = path.Clean(u.Path)
	}

	u.Fragment = ""

	return u.String()
}
