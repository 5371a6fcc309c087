package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name     string
	email    string
	novaID   string
	role     domain.Role
	password string
}

// NewUserBuilder creates a student with unique name, email and handle
func NewUserBuilder() *UserBuilder {
	suffix := uuid.NewString()[:8]
	return &UserBuilder{
		name:     "Test User " + suffix,
		email:    fmt.Sprintf("user_%s@example.com", suffix),
		novaID:   "test." + suffix,
		role:     domain.RoleStudent,
		password: "testpassword123",
	}
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithRole(role domain.Role) *UserBuilder {
	b.role = role
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	// MinCost keeps test logins fast.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         b.name,
		NovaID:       b.novaID,
		Email:        b.email,
		Role:         b.role,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// LoginResponse matches the API login response
type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// BuildAndAuthenticate creates the user and logs in through the API,
// returning the user and its bearer token.
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, ts.DB)

	body, _ := json.Marshal(map[string]string{
		"email":    user.Email,
		"password": password,
	})

	resp, err := http.Post(ts.APIURL("/user/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return user, loginResp.Token
}

// CategoryBuilder creates test categories
type CategoryBuilder struct {
	name string
}

func NewCategoryBuilder() *CategoryBuilder {
	return &CategoryBuilder{name: "Category " + uuid.NewString()[:8]}
}

func (b *CategoryBuilder) WithName(name string) *CategoryBuilder {
	b.name = name
	return b
}

func (b *CategoryBuilder) Build(t *testing.T, db *gorm.DB) *domain.Category {
	t.Helper()

	now := time.Now()
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        b.name,
		Description: "A test category",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	return category
}

// LiveBuilder creates test lives
type LiveBuilder struct {
	name string
	zoom bool
}

func NewLiveBuilder() *LiveBuilder {
	return &LiveBuilder{name: "Live " + uuid.NewString()[:8]}
}

func (b *LiveBuilder) WithName(name string) *LiveBuilder {
	b.name = name
	return b
}

func (b *LiveBuilder) AsZoom() *LiveBuilder {
	b.zoom = true
	return b
}

func (b *LiveBuilder) Build(t *testing.T, db *gorm.DB) *domain.Live {
	t.Helper()

	now := time.Now()
	live := &domain.Live{
		ID:         uuid.New(),
		Name:       b.name,
		VideoURL:   "https://videos.example.com/" + uuid.NewString(),
		IsZoomLive: b.zoom,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := db.Create(live).Error; err != nil {
		t.Fatalf("failed to create live: %v", err)
	}

	return live
}

// CourseBuilder creates test courses. A category is created when none is given.
type CourseBuilder struct {
	name        string
	price       decimal.Decimal
	category    *domain.Category
	instructors []domain.User
	videos      []domain.Live
}

func NewCourseBuilder() *CourseBuilder {
	return &CourseBuilder{
		name:  "Course " + uuid.NewString()[:8],
		price: decimal.NewFromInt(100),
	}
}

func (b *CourseBuilder) WithName(name string) *CourseBuilder {
	b.name = name
	return b
}

func (b *CourseBuilder) WithPrice(price decimal.Decimal) *CourseBuilder {
	b.price = price
	return b
}

func (b *CourseBuilder) WithCategory(category *domain.Category) *CourseBuilder {
	b.category = category
	return b
}

func (b *CourseBuilder) WithInstructors(instructors ...*domain.User) *CourseBuilder {
	for _, u := range instructors {
		b.instructors = append(b.instructors, *u)
	}
	return b
}

func (b *CourseBuilder) WithVideos(videos ...*domain.Live) *CourseBuilder {
	for _, v := range videos {
		b.videos = append(b.videos, *v)
	}
	return b
}

func (b *CourseBuilder) Build(t *testing.T, db *gorm.DB) *domain.Course {
	t.Helper()

	if b.category == nil {
		b.category = NewCategoryBuilder().Build(t, db)
	}

	now := time.Now()
	course := &domain.Course{
		ID:          uuid.New(),
		Name:        b.name,
		Description: "A test course",
		Difficulty:  domain.DifficultyBeginner,
		Duration:    "4 semanas",
		Price:       b.price,
		CategoryID:  b.category.ID,
		Instructors: b.instructors,
		Videos:      b.videos,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := db.Create(course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}

	return course
}

// Enroll gives a user access to a course directly in the database
func Enroll(t *testing.T, db *gorm.DB, userID, courseID uuid.UUID) {
	t.Helper()

	enrollment := &domain.Enrollment{UserID: userID, CourseID: courseID, CreatedAt: time.Now()}
	if err := db.Create(enrollment).Error; err != nil {
		t.Fatalf("failed to enroll user: %v", err)
	}
}

// PurchaseBuilder creates test purchases
type PurchaseBuilder struct {
	studentID uuid.UUID
	courseID  uuid.UUID
	renewal   *time.Time
}

func NewPurchaseBuilder(studentID, courseID uuid.UUID) *PurchaseBuilder {
	return &PurchaseBuilder{studentID: studentID, courseID: courseID}
}

func (b *PurchaseBuilder) RenewsAt(t time.Time) *PurchaseBuilder {
	b.renewal = &t
	return b
}

func (b *PurchaseBuilder) Build(t *testing.T, db *gorm.DB) *domain.Purchase {
	t.Helper()

	now := time.Now()
	purchase := &domain.Purchase{
		ID:          uuid.New(),
		AcquiredAt:  now,
		RenewalDate: b.renewal,
		StudentID:   b.studentID,
		CourseID:    b.courseID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := db.Create(purchase).Error; err != nil {
		t.Fatalf("failed to create purchase: %v", err)
	}

	return purchase
}

// PaymentBuilder creates pending test payments with a small voucher
type PaymentBuilder struct {
	studentID uuid.UUID
	amount    decimal.Decimal
	status    domain.PaymentStatus
}

func NewPaymentBuilder(studentID uuid.UUID) *PaymentBuilder {
	return &PaymentBuilder{
		studentID: studentID,
		amount:    decimal.NewFromInt(50),
		status:    domain.PaymentPending,
	}
}

func (b *PaymentBuilder) WithStatus(status domain.PaymentStatus) *PaymentBuilder {
	b.status = status
	return b
}

func (b *PaymentBuilder) Build(t *testing.T, db *gorm.DB) *domain.Payment {
	t.Helper()

	now := time.Now()
	payment := &domain.Payment{
		ID:                 uuid.New(),
		StudentID:          b.studentID,
		Amount:             b.amount,
		Reason:             "Pago de curso",
		PaidAt:             now,
		ExpiresAt:          now.Add(30 * 24 * time.Hour),
		Status:             b.status,
		VoucherData:        []byte("\x89PNG\r\n\x1a\nvoucher"),
		VoucherContentType: "image/png",
		Transaction: datatypes.NewJSONType(domain.TransactionMetadata{
			IP:     "127.0.0.1",
			Device: "test",
		}),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}

	return payment
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body any, token string) *http.Request {
	t.Helper()

	bodyReader := bytes.NewBuffer(nil)
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// Do sends an authenticated JSON request and returns the response. The body
// is closed when the test ends.
func Do(t *testing.T, method, url string, body any, token string) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(CreateAuthenticatedRequest(t, method, url, body, token))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
