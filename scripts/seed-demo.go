// Seed-demo fills an empty database with an admin, a teacher, a student and
// a small catalog, so aulactl has something to talk to.
//
//	go run scripts/seed-demo.go
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/novaacademy/aula-virtual/internal/config"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/logger"
	"github.com/novaacademy/aula-virtual/internal/repository/postgres"
	"github.com/novaacademy/aula-virtual/internal/service"
	"github.com/novaacademy/aula-virtual/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

type demoCourse struct {
	name       string
	category   string
	difficulty domain.Difficulty
	price      string
	zoom       bool
}

var demoCourses = []demoCourse{
	{name: "Excel para negocios", category: "Ofimática", difficulty: domain.DifficultyBeginner, price: "49.90"},
	{name: "Tablas dinámicas avanzadas", category: "Ofimática", difficulty: domain.DifficultyAdvanced, price: "79.90", zoom: true},
	{name: "Python desde cero", category: "Programación", difficulty: domain.DifficultyBeginner, price: "99.00"},
	{name: "APIs con Go", category: "Programación", difficulty: domain.DifficultyIntermediate, price: "129.00", zoom: true},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logger.New(logger.Config{Level: "info", Format: "console"})
	defer zlog.Sync()

	db, err := postgres.NewConnection(cfg.DatabaseURL, gormlogger.Warn)
	if err != nil {
		zlog.Fatal("[seed] failed to connect to database", zap.Error(err))
	}

	services := service.NewServices(postgres.NewRepositories(db), cfg, service.Dependencies{
		Storage: storage.NewMemoryStorage("/files"),
		Logger:  zlog,
	})
	ctx := context.Background()

	admin := ensureUser(ctx, services, zlog, "Administración", env("SEED_ADMIN_EMAIL", "admin@aula.local"), domain.RoleAdmin)
	teacher := ensureUser(ctx, services, zlog, "Lucía Ramos", "lucia.ramos@aula.local", domain.RoleTeacher)
	student := ensureUser(ctx, services, zlog, "Mateo Quispe", "mateo.quispe@aula.local", domain.RoleStudent)

	categories := make(map[string]uuid.UUID)
	for _, dc := range demoCourses {
		if _, ok := categories[dc.category]; ok {
			continue
		}
		category, err := services.Category.Create(ctx, domain.CategoryInput{
			Name:        &dc.category,
			Description: ptr("Cursos de " + dc.category),
		})
		if err != nil {
			zlog.Fatal("[seed] failed to create category", zap.String("name", dc.category), zap.Error(err))
		}
		categories[dc.category] = category.ID
	}

	for i, dc := range demoCourses {
		live, err := services.Live.Create(ctx, domain.LiveInput{
			Name:       ptr("Sesión 1: " + dc.name),
			VideoURL:   ptr("https://videos.aula.local/" + uuid.NewString() + ".mp4"),
			IsZoomLive: ptr(dc.zoom),
		})
		if err != nil {
			zlog.Fatal("[seed] failed to create live", zap.Error(err))
		}

		course, err := services.Course.Create(ctx, domain.CourseInput{
			Name:          ptr(dc.name),
			Description:   ptr("Curso de demostración"),
			Difficulty:    ptr(dc.difficulty),
			Duration:      ptr("6 semanas"),
			Price:         ptr(decimal.RequireFromString(dc.price)),
			CategoryID:    ptr(categories[dc.category]),
			InstructorIDs: []uuid.UUID{teacher.ID},
			VideoIDs:      []uuid.UUID{live.ID},
		})
		if err != nil {
			zlog.Fatal("[seed] failed to create course", zap.String("name", dc.name), zap.Error(err))
		}

		// The student gets the first course of each category.
		if i%2 == 0 {
			if _, err := services.Purchase.Create(ctx, domain.PurchaseInput{StudentID: &student.ID, CourseID: &course.ID}); err != nil {
				zlog.Fatal("[seed] failed to create purchase", zap.Error(err))
			}
			if _, err := services.User.Enroll(ctx, student.ID, course.ID); err != nil {
				zlog.Fatal("[seed] failed to enroll student", zap.Error(err))
			}
		}
	}

	zlog.Info("[seed] done",
		zap.String("admin", admin.Email),
		zap.String("teacher", teacher.Email),
		zap.String("student", student.Email),
		zap.Int("courses", len(demoCourses)))
}

// ensureUser creates the user, or returns the existing one with that email.
func ensureUser(ctx context.Context, services *service.Services, zlog *zap.Logger, name, email string, role domain.Role) *domain.User {
	user, err := services.User.Create(ctx, domain.UserInput{
		Name:     &name,
		Email:    &email,
		Password: ptr(env("SEED_PASSWORD", "demo1234")),
		Role:     &role,
	})
	if errors.Is(err, domain.ErrEmailExists) {
		users, err := services.User.List(ctx, role)
		if err != nil {
			zlog.Fatal("[seed] failed to list users", zap.Error(err))
		}
		for _, u := range users {
			if u.Email == email {
				return u
			}
		}
	}
	if err != nil {
		zlog.Fatal("[seed] failed to create user", zap.String("email", email), zap.Error(err))
	}
	return user
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func ptr[T any](v T) *T { return &v }
