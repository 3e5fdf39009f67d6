package frontmatter

import (
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/pagesmith/internal/value"
)

// Fingerprint computes a stable content hash for a document.
//
// The canonical front matter (minus any stored fingerprint key) is hashed
// together with the Markdown body. A single trailing newline is trimmed from
// the serialized YAML first.
func Fingerprint(fm FrontMatter, body []byte) (string, error) {
	if _, ok := fm.Extra[mdfp.FingerprintField]; ok {
		extra := make(value.Map, len(fm.Extra))
		for k, v := range fm.Extra {
			if k != mdfp.FingerprintField {
				extra[k] = v
			}
		}
		fm.Extra = extra
	}

	serialized, err := fm.Canonical()
	if err != nil {
		return "", err
	}
	fmForHash := strings.TrimSuffix(string(serialized), "\n")

	return mdfp.CalculateFingerprintFromParts(fmForHash, string(body)), nil
}
