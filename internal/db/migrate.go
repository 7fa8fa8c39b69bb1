package db

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/A7medBenRomdhanO/backend/internal/models"
)

func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN est vide, vérifiez la configuration de l'environnement")
	}
	var db *gorm.DB
	var err error
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}
	usePostgres := IsPostgresDSN(dsn)
	for i := 0; i < 10; i++ {
		if usePostgres {
			db, err = gorm.Open(postgres.Open(dsn), cfg)
		} else {
			db, err = gorm.Open(sqlite.Open(dsn), cfg)
		}
		if err == nil {
			break
		}
		fmt.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	// Basic connectivity test
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	// Always print masked DSN once for diagnostics (before migrations for visibility)
	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	fmt.Println("[DB] Using DSN:", masked)
	// If MIGRATIONS=1 (or true) we run sql migrations via golang-migrate (postgres only);
	// otherwise keep the AutoMigrate fallback (dev convenience, sqlite included).
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); usePostgres && (v == "1" || v == "true" || v == "yes") {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		modelsToMigrate := []interface{}{
			&models.User{}, &models.Question{}, &models.Questionnaire{}, &models.QuestionResponse{},
			&models.Roadmap{}, &models.Task{}, &models.Milestone{},
		}
		for _, m := range modelsToMigrate {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"users", "questionnaires", "roadmaps", "tasks"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	// Seeding only when explicitly requested (e.g. development) via DB_SEED=1|true
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		SeedQuestions(db)
	}
	return db, nil
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
