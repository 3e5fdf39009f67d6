// Package manifest describes the record written next to a built site.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// FileName is the manifest file name inside the output directory.
const FileName = "manifest.json"

// BuildManifest represents a complete record of a build's inputs and outputs.
type BuildManifest struct {
	ID          string     `json:"build_id"`
	Generator   string     `json:"generator"`
	Timestamp   time.Time  `json:"timestamp"`
	Site        string     `json:"site"`
	Status      string     `json:"status"`
	Duration    int64      `json:"duration_ms"`
	ContentHash string     `json:"content_hash"`
	Documents   []Document `json:"documents"`
}

// Document is one rendered page.
type Document struct {
	Source      string `json:"source"` // Relative to the source root, slash separated
	Output      string `json:"output"` // Relative to the output root
	URL         string `json:"url"`
	Collection  string `json:"collection,omitempty"`
	Language    string `json:"language"`
	Layout      string `json:"layout"`
	Fingerprint string `json:"fingerprint"`
}

// ToJSON serializes the manifest to JSON. Documents are sorted by source path
// so the file is stable across builds.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	sort.Slice(m.Documents, func(i, j int) bool {
		return m.Documents[i].Source < m.Documents[j].Source
	})
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Read loads the manifest stored at path.
func Read(path string) (*BuildManifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is the manifest in the output dir
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return FromJSON(data)
}

// Write stores the manifest at path.
func (m *BuildManifest) Write(path string) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	// #nosec G306 -- the manifest is published with the site
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Hash computes a deterministic hash over every document's source, output and
// fingerprint. Two builds with equal hashes produced the same pages from the
// same content.
func (m *BuildManifest) Hash() string {
	docs := make([]Document, len(m.Documents))
	copy(docs, m.Documents)
	sort.Slice(docs, func(i, j int) bool { return docs[i].Source < docs[j].Source })

	h := sha256.New()
	for _, d := range docs {
		fmt.Fprintf(h, "%s\x00%s\x00%s\n", d.Source, d.Output, d.Fingerprint)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
