package service

import (
	"github.com/novaacademy/aula-virtual/internal/config"
	"github.com/novaacademy/aula-virtual/internal/repository"
	"github.com/novaacademy/aula-virtual/internal/storage"
	"go.uber.org/zap"
)

type Services struct {
	Auth     *AuthService
	User     *UserService
	Category *CategoryService
	Course   *CourseService
	Live     *LiveService
	Purchase *PurchaseService
	Payment  *PaymentService
}

// Dependencies are the optional collaborators of the services. Nil fields
// fall back to in-process implementations.
type Dependencies struct {
	Sessions SessionCache
	Storage  storage.ObjectStorage
	Notifier PaymentNotifier
	Logger   *zap.Logger
}

func NewServices(repos *repository.Repositories, cfg *config.Config, deps Dependencies) *Services {
	if deps.Sessions == nil {
		deps.Sessions = noopSessionCache{}
	}
	if deps.Storage == nil {
		deps.Storage = storage.NewMemoryStorage("/files")
	}
	if deps.Notifier == nil {
		deps.Notifier = noopNotifier{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Services{
		Auth:     NewAuthService(repos.User, repos.Session, repos.Enrollment, deps.Sessions, cfg, deps.Logger),
		User:     NewUserService(repos.User, repos.Session, repos.Enrollment, repos.Course, deps.Sessions, deps.Storage, deps.Logger),
		Category: NewCategoryService(repos.Category, repos.Course),
		Course:   NewCourseService(repos.Course, repos.Category, repos.User, repos.Live, repos.Enrollment),
		Live:     NewLiveService(repos.Live),
		Purchase: NewPurchaseService(repos.Purchase, repos.User, repos.Course),
		Payment:  NewPaymentService(repos.Payment, repos.User, deps.Notifier, cfg, deps.Logger),
	}
}
