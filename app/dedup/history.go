package dedup

import "strings"

// FingerprintFromPost derives a fingerprint from a previously delivered
// message. Outbound messages carry two metadata lines (source, link) ahead of
// the news text; those are stripped before fingerprinting so the result
// matches what MarkPosted stored for the same item. Returns false for
// messages too short to contain news text.
func FingerprintFromPost(raw string, checkChars int) (string, bool) {
	lines := strings.Split(raw, "\n")
	if len(lines) < 3 {
		return "", false
	}
	return Fingerprint(strings.Join(lines[2:], "\n"), checkChars), true
}
