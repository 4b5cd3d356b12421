package helper

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reHyphen   = regexp.MustCompile(`-+`)
)

// Slugify turns free text into a [a-z0-9-] slug: strips diacritics,
// collapses separators, trims edges, enforces maxLen (default 100 when <=0).
// Titles that normalize to nothing fall back to "amne".
func Slugify(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 100
	}
	s = strings.ToLower(strings.TrimSpace(s))

	// Strip diacritics (ö → o, é → e, ...)
	var buf []rune
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		buf = append(buf, r)
	}
	s = string(buf)

	s = reNonAlnum.ReplaceAllString(s, "-")
	s = reHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		s = "amne"
	}
	if utf8.RuneCountInString(s) > maxLen {
		rs := []rune(s)
		s = strings.Trim(string(rs[:maxLen]), "-")
	}
	if s == "" {
		s = "amne"
	}
	return s
}

// ResolveFromTaken picks the first free slug among base, base-2, base-3, ...
// given a snapshot of already-taken slugs sharing the base prefix. The
// snapshot is request-scoped; the DB unique constraint stays authoritative.
func ResolveFromTaken(base string, taken map[string]struct{}) string {
	if _, ok := taken[base]; !ok {
		return base
	}
	for i := 2; ; i++ {
		cand := fmt.Sprintf("%s-%d", base, i)
		if _, ok := taken[cand]; !ok {
			return cand
		}
	}
}

// ResolveUniqueSlug loads the prefix snapshot (LIKE 'base%') from
// table.column and probes for the first unused suffix. exclude, when
// non-empty, removes a row's own current slug from the snapshot so
// renames do not collide with themselves.
func ResolveUniqueSlug(ctx context.Context, db *gorm.DB, table, column, base, exclude string) (string, error) {
	q := db.WithContext(ctx).Table(table).
		Select(column+" as slug").
		Where(fmt.Sprintf("%s LIKE ?", column), base+"%")
	if exclude != "" {
		q = q.Where(fmt.Sprintf("%s <> ?", column), exclude)
	}

	type row struct{ Slug string }
	var rows []row
	if err := q.Find(&rows).Error; err != nil {
		return "", err
	}

	taken := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		taken[r.Slug] = struct{}{}
	}
	return ResolveFromTaken(base, taken), nil
}

// TimestampSlug is the escape hatch after losing the slug race: the
// pre-check snapshot is only an optimization, the unique index decides.
func TimestampSlug(base string) string {
	return fmt.Sprintf("%s-%d", base, time.Now().UnixMilli())
}
