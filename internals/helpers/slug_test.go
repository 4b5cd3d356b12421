package helper

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Torkning av strömming", "torkning-av-stromming"},
		{"Slöjd & Hantverk", "slojd-hantverk"},
		{"  Hello   World  ", "hello-world"},
		{"ÅÄÖ åäö", "aao-aao"},
		{"café--déjà___vu", "cafe-deja-vu"},
		{"!!!", "amne"},
		{"", "amne"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in, 100), "input %q", tc.in)
	}
}

func TestSlugifyMaxLen(t *testing.T) {
	long := strings.Repeat("abc ", 60)
	got := Slugify(long, 20)
	assert.LessOrEqual(t, len(got), 20)
	assert.False(t, strings.HasSuffix(got, "-"))
	assert.False(t, strings.HasPrefix(got, "-"))
}

func TestResolveFromTaken(t *testing.T) {
	taken := map[string]struct{}{}
	assert.Equal(t, "b", ResolveFromTaken("b", taken))

	taken["b"] = struct{}{}
	assert.Equal(t, "b-2", ResolveFromTaken("b", taken))

	taken["b-2"] = struct{}{}
	taken["b-3"] = struct{}{}
	assert.Equal(t, "b-4", ResolveFromTaken("b", taken))
}

func TestTimestampSlug(t *testing.T) {
	got := TimestampSlug("base")
	assert.True(t, strings.HasPrefix(got, "base-"))
	assert.Greater(t, len(got), len("base-"))
}

func newSlugTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE topics (slug TEXT PRIMARY KEY)`).Error)
	return db
}

func TestResolveUniqueSlug(t *testing.T) {
	db := newSlugTestDB(t)
	ctx := context.Background()

	got, err := ResolveUniqueSlug(ctx, db, "topics", "slug", "b", "")
	require.NoError(t, err)
	assert.Equal(t, "b", got)

	require.NoError(t, db.Exec(`INSERT INTO topics (slug) VALUES ('b')`).Error)
	got, err = ResolveUniqueSlug(ctx, db, "topics", "slug", "b", "")
	require.NoError(t, err)
	assert.Equal(t, "b-2", got)

	require.NoError(t, db.Exec(`INSERT INTO topics (slug) VALUES ('b-2')`).Error)
	got, err = ResolveUniqueSlug(ctx, db, "topics", "slug", "b", "")
	require.NoError(t, err)
	assert.Equal(t, "b-3", got)
}

func TestResolveUniqueSlugExcludesOwnSlug(t *testing.T) {
	db := newSlugTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(`INSERT INTO topics (slug) VALUES ('b')`).Error)

	// Renaming the row that already holds "b" keeps its slug.
	got, err := ResolveUniqueSlug(ctx, db, "topics", "slug", "b", "b")
	require.NoError(t, err)
	assert.Equal(t, "b", got)
}
