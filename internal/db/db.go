package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"agora/internal/config"
	"agora/internal/logger"
	"agora/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&models.Tag{},
		&models.User{},
		&models.UserProfile{},
		&models.Community{},
		&models.Post{},
		&models.PrivateMessage{},
		&models.UserContact{},
	}
}

// Open connects to the configured store. Errors from the driver are translated
// into gorm's portable errors so repositories can detect key violations.
func Open(cfg *config.Config, logg *logger.Logger) (*gorm.DB, error) {
	dbLog := logg.With("service", "db", "driver", cfg.DBDriver)

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres", "":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(SQLiteDSN(cfg.DatabaseURL))
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	if cfg.LogMode == "test" {
		gormLog = gormLogger.Default.LogMode(gormLogger.Silent)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		// one writer; nested calls must reuse the open transaction
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	dbLog.Info("Database connection established")
	return db, nil
}

// SQLiteDSN turns on foreign key enforcement for a SQLite path.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys") || strings.Contains(path, "_fk=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// Migrate creates or updates every table, join tables included.
func Migrate(db *gorm.DB, logg *logger.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logg.Info("Database migration completed")
	return nil
}

// SeedWellKnownTags creates every missing built-in tag. Existing rows are left alone.
func SeedWellKnownTags(ctx context.Context, db *gorm.DB, logg *logger.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Tag{}).
		Where("name IN ?", wellKnownNames()).
		Count(&count).Error; err != nil {
		return err
	}
	if int(count) == len(models.WellKnownCodes()) {
		logg.Debug("Well-known tags already seeded, skipping")
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, w := range models.WellKnownCodes() {
			tag := models.Tag{}
			if err := tx.Where(models.Tag{Name: w.String()}).FirstOrCreate(&tag).Error; err != nil {
				return fmt.Errorf("failed to seed tag %s: %w", w, err)
			}
		}
		logg.Info("Well-known tags seeded", "count", len(models.WellKnownCodes()))
		return nil
	})
}

func wellKnownNames() []string {
	names := make([]string, 0, len(models.WellKnownCodes()))
	for _, w := range models.WellKnownCodes() {
		names = append(names, w.String())
	}
	return names
}
