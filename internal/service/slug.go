package service

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

// Slug styles. Readable is the default for public files without a
// custom name; named derives from a caller-supplied name.
const (
	SlugStyleReadable = "readable"
	SlugStyleShort    = "short"
	SlugStyleNamed    = "named"
)

const (
	slugSuffixLength  = 4
	slugShortLength   = 4
	slugMaxNameLength = 30
	slugCharset       = "abcdefghijklmnopqrstuvwxyz0123456789"
	slugFallbackBase  = "file"
)

// Word lists for memorable readable slugs.
var slugAdjectives = []string{
	"swift", "bright", "calm", "bold", "cool", "deep", "fair", "fast", "fine", "free",
	"glad", "good", "keen", "kind", "mild", "neat", "nice", "pure", "rich", "safe",
	"slim", "soft", "true", "warm", "wise", "able", "epic", "mega", "super", "ultra",
	"prime", "elite", "grand", "noble", "royal", "vivid", "lucid", "crisp", "fresh", "sleek",
}

var slugNouns = []string{
	"star", "moon", "wave", "wind", "fire", "leaf", "rose", "snow", "rain", "lake",
	"peak", "rock", "tree", "bird", "fish", "bear", "wolf", "lion", "hawk", "deer",
	"jade", "ruby", "gold", "iron", "sage", "mint", "pine", "palm", "fern", "vine",
	"cloud", "storm", "flame", "spark", "frost", "bloom", "crest", "ridge", "delta", "pulse",
}

var (
	slugStripPattern    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpacePattern    = regexp.MustCompile(`[\s_]+`)
	slugCollapsePattern = regexp.MustCompile(`-+`)
)

// GenerateSlug produces a URL-safe slug candidate. Uniqueness is not
// checked here; callers insert and retry on collision.
//
// Styles:
//   - readable: adjective-noun-xxxx (e.g. swift-star-a7b3)
//   - short:    xxxx-xxxx
//   - named:    cleaned-name-xxxx
func GenerateSlug(name, style string) string {
	suffix := randomSlugChars(slugSuffixLength)

	if style == SlugStyleShort {
		return randomSlugChars(slugShortLength) + "-" + suffix
	}

	if style == SlugStyleReadable || name == "" {
		adj := slugAdjectives[randomIndex(len(slugAdjectives))]
		noun := slugNouns[randomIndex(len(slugNouns))]
		return adj + "-" + noun + "-" + suffix
	}

	base := slugifyName(name)
	if base == "" {
		base = slugFallbackBase
	}
	return base + "-" + suffix
}

func slugifyName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStripPattern.ReplaceAllString(s, "")
	s = slugSpacePattern.ReplaceAllString(s, "-")
	s = slugCollapsePattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > slugMaxNameLength {
		s = strings.TrimRight(s[:slugMaxNameLength], "-")
	}

	return s
}

func randomSlugChars(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = slugCharset[randomIndex(len(slugCharset))]
	}
	return string(b)
}

func randomIndex(n int) int {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failure means the platform RNG is broken.
		panic(err)
	}
	return int(idx.Int64())
}
