package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// NewConnection opens the database and migrates the schema. A URL starting
// with "sqlite:" opens a SQLite database instead of PostgreSQL, which is
// meant for local development.
func NewConnection(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func dialector(databaseURL string) gorm.Dialector {
	if dsn, ok := strings.CutPrefix(databaseURL, sqlitePrefix); ok {
		return sqlite.Open(dsn)
	}
	return postgres.Open(databaseURL)
}

// Migrate creates or updates every table the repositories use
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.Enrollment{},
		&domain.Category{},
		&domain.Live{},
		&domain.Course{},
		&domain.Purchase{},
		&domain.Payment{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:       NewUserRepository(db),
		Session:    NewSessionRepository(db),
		Enrollment: NewEnrollmentRepository(db),
		Category:   NewCategoryRepository(db),
		Course:     NewCourseRepository(db),
		Live:       NewLiveRepository(db),
		Purchase:   NewPurchaseRepository(db),
		Payment:    NewPaymentRepository(db),
	}
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", domain.ErrAlreadyExists, err)
	}
	return err
}
