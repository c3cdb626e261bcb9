package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"agora/internal/config"
	"agora/internal/db"
	"agora/internal/logger"
	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Logger returns a logger that stays quiet unless something is logged at error level.
func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logg, err := logger.New("test")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return logg
}

// DB opens a fresh, migrated SQLite database under the test's temp dir.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	cfg := &config.Config{
		DBDriver:    "sqlite",
		DatabaseURL: filepath.Join(tb.TempDir(), "agora.db"),
		LogMode:     "test",
	}
	logg := Logger(tb)
	conn, err := db.Open(cfg, logg)
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(conn, logg); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// Tx begins a transaction that is rolled back when the test ends. Everything
// the test does must go through it; the SQLite pool holds one connection.
func Tx(tb testing.TB, conn *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := conn.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func SeedTag(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *models.Tag {
	tb.Helper()
	t := &models.Tag{Name: name}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed tag: %v", err)
	}
	return t
}

// SeedWellKnown inserts every built-in tag in code order, so ids match codes
// on a fresh database.
func SeedWellKnown(tb testing.TB, ctx context.Context, tx *gorm.DB) map[models.WellKnown]*models.Tag {
	tb.Helper()
	tags := make(map[models.WellKnown]*models.Tag)
	for _, w := range models.WellKnownCodes() {
		tags[w] = SeedTag(tb, ctx, tx, w.String())
	}
	return tags
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *models.User {
	tb.Helper()
	u := &models.User{Username: username, Password: "pw-hash"}
	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCommunity(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, state *models.Tag) *models.Community {
	tb.Helper()
	c := &models.Community{Name: name, Description: "desc", StateTagID: state.ID}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed community: %v", err)
	}
	if err := tx.WithContext(ctx).Exec("INSERT INTO tag_community (tag_id, community_id) VALUES (?, ?)", state.ID, c.ID).Error; err != nil {
		tb.Fatalf("seed community state: %v", err)
	}
	c.State = state
	return c
}

func SeedPost(tb testing.TB, ctx context.Context, tx *gorm.DB, parent *models.Post, c *models.Community, author *models.User, text string) *models.Post {
	tb.Helper()
	p := &models.Post{
		CommunityID: c.ID,
		UserID:      author.ID,
		Text:        text,
		Created:     time.Now().UTC(),
	}
	if parent != nil {
		id := parent.ID
		p.ParentPostID = &id
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed post: %v", err)
	}
	return p
}
