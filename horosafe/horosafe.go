// Package horosafe guards the file system and URL inputs of the harvest
// jobs: page titles become file names, and the channel URL comes straight
// from the command line.
package horosafe

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrPathTraversal is returned when a user-supplied path escapes its base.
var ErrPathTraversal = errors.New("horosafe: path traversal detected")

// ErrUnsafeScheme is returned when a URL uses a non-HTTP(S) scheme.
var ErrUnsafeScheme = errors.New("horosafe: only http and https schemes are allowed")

// reserved holds the characters Windows and most shells refuse in file names.
const reserved = `<>:"/\|?*`

// SanitizeFilename replaces every character of <>:"/\|?* with an underscore.
// Nothing else is touched, so distinct titles keep distinct names.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(reserved, r) {
			return '_'
		}
		return r
	}, name)
}

// SafePath validates that joining base and userInput does not escape base.
// Returns the cleaned path or ErrPathTraversal.
func SafePath(base, userInput string) (string, error) {
	if userInput == ".." || strings.HasPrefix(userInput, "../") || strings.Contains(userInput, "/../") {
		return "", ErrPathTraversal
	}
	cleanBase := filepath.Clean(base)
	cleaned := filepath.Join(cleanBase, filepath.Clean("/"+userInput))
	rel, err := filepath.Rel(cleanBase, cleaned)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return cleaned, nil
}

// ValidateURL checks that rawURL is an absolute http(s) URL with a host.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("horosafe: invalid URL: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ErrUnsafeScheme
	}
	if u.Hostname() == "" {
		return fmt.Errorf("horosafe: URL has no host")
	}
	return nil
}
