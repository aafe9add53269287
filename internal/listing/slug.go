package listing

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	hyphenRuns     = regexp.MustCompile(`-{2,}`)
)

// Slugify normalizes a title into a URL-safe slug: lowercase, strip
// everything outside [a-z0-9\s-], collapse whitespace and repeated
// hyphens to single hyphens, trim edge hyphens. The result may be empty
// for titles with no usable characters.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// maxSlugProbes bounds the collision loop so pathological input (many
// identical titles) cannot spin forever against the store.
const maxSlugProbes = 50

// SlugChecker is the store subset the assigner probes.
type SlugChecker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// AssignSlug derives a unique slug from the title. Collisions resolve by
// appending -2, -3, … in order; past maxSlugProbes it falls back to a
// timestamp suffix. The window between the last probe and the insert is
// racy; the unique index on slug makes a losing racer fail loudly.
func AssignSlug(ctx context.Context, store SlugChecker, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		return fmt.Sprintf("job-%d", time.Now().UnixNano()), nil
	}

	candidate := base
	for i := 0; i < maxSlugProbes; i++ {
		exists, err := store.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i+2)
	}
	return fmt.Sprintf("%s-%d", base, time.Now().UnixNano()), nil
}
