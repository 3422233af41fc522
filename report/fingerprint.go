package report

import (
	"image"

	"github.com/corona10/goimagehash"
)

// Fingerprint returns the perceptual difference hash of img in its string
// form, or "" when it cannot be computed.
func Fingerprint(img image.Image) string {
	if img == nil {
		return ""
	}
	h, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return ""
	}
	return h.ToString()
}

// FingerprintDistance returns the Hamming distance between two fingerprints
// produced by Fingerprint.
func FingerprintDistance(a, b string) (int, error) {
	ha, err := goimagehash.ImageHashFromString(a)
	if err != nil {
		return 0, err
	}
	hb, err := goimagehash.ImageHashFromString(b)
	if err != nil {
		return 0, err
	}
	return ha.Distance(hb)
}
