// Package client is the authenticated data-access layer of the platform: it
// owns the session, wraps every REST resource and orchestrates bulk course
// assignment.
package client

import (
	"net/http"
	"strings"
	"time"

	"github.com/novaacademy/aula-virtual/internal/config"
	"go.uber.org/zap"
)

// LoginRedirector sends the user back to the login entry point after the
// session was invalidated.
type LoginRedirector interface {
	RedirectToLogin(reason string)
}

// RedirectFunc adapts a function to LoginRedirector.
type RedirectFunc func(reason string)

func (f RedirectFunc) RedirectToLogin(reason string) { f(reason) }

type noRedirect struct{}

func (noRedirect) RedirectToLogin(string) {}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	http       *http.Client
	store      Store
	redirector LoginRedirector
	logger     *zap.Logger
	clock      Clock

	validationDelay    time.Duration
	validationInterval time.Duration
	validationTimeout  time.Duration

	Categories    *CategoryClient
	Courses       *CourseClient
	Users         *UserClient
	Lives         *LiveClient
	Purchases     *PurchaseClient
	Payments      *PaymentClient
	Notifications *NotificationClient
}

type Option func(*Client)

func WithStore(s Store) Option {
	return func(c *Client) { c.store = s }
}

func WithRedirector(r LoginRedirector) Option {
	return func(c *Client) { c.redirector = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithClock(clock Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// New builds a client for cfg.APIURL. Without options the session lives in
// memory, nothing is logged and invalidation does not redirect anywhere.
func New(cfg config.ClientConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:            strings.TrimRight(cfg.APIURL, "/"),
		http:               &http.Client{Timeout: cfg.Timeout},
		store:              NewMemoryStore(),
		redirector:         noRedirect{},
		logger:             zap.NewNop(),
		clock:              systemClock{},
		validationDelay:    cfg.ValidationDelay,
		validationInterval: cfg.ValidationInterval,
		validationTimeout:  cfg.ValidationTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Categories = &CategoryClient{resource: newResource[Category, CategoryInput](c, "/category-courses", "categories")}
	c.Courses = &CourseClient{resource: newResource[Course, CourseInput](c, "/courses", "courses")}
	c.Users = &UserClient{resource: newResource[User, UserInput](c, "/user", "users")}
	c.Lives = &LiveClient{resource: newResource[Live, LiveInput](c, "/lives", "lives")}
	c.Purchases = &PurchaseClient{resource: newResource[Purchase, PurchaseInput](c, "/courses-buyded", "purchases")}
	c.Payments = &PaymentClient{c: c}
	c.Notifications = &NotificationClient{c: c}
	return c
}
