package dom

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/ytharvest/idgen"
)

// Snapshot is the rendered page at one instant. A newer snapshot supersedes
// the previous one; nothing keeps history.
type Snapshot struct {
	ID        string `json:"id"` // UUIDv7
	PageURL   string `json:"page_url"`
	HTML      []byte `json:"html"`
	HTMLHash  string `json:"html_hash"` // SHA-256 hex
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// NewSnapshot stamps html with an id, its hash and the current time.
func NewSnapshot(pageURL string, html []byte) Snapshot {
	return Snapshot{
		ID:        idgen.New(),
		PageURL:   pageURL,
		HTML:      html,
		HTMLHash:  HashHTML(html),
		Timestamp: time.Now().UnixMilli(),
	}
}

// HashHTML returns the SHA-256 hex digest of raw HTML bytes.
func HashHTML(html []byte) string {
	h := sha256.Sum256(html)
	return fmt.Sprintf("%x", h)
}

// Save writes the raw HTML to path, creating parent directories.
func (s Snapshot) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dom: snapshot dir: %w", err)
	}
	if err := os.WriteFile(path, s.HTML, 0o644); err != nil {
		return fmt.Errorf("dom: write snapshot: %w", err)
	}
	return nil
}
