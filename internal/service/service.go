// Package service contains the application services: authentication and login throttling,
// user and settings management, inventory, sales and reports.
package service

import (
	"context"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/storekeeper/internal/errs"
	"github.com/and161185/storekeeper/internal/model"
	"github.com/and161185/storekeeper/internal/repository"
)

// Snapshots runs load/compute/save cycles over the store snapshot. Writes that touch several
// entities at once go through Update so they land in one save.
type Snapshots interface {
	View(ctx context.Context, fn func(s *model.Snapshot) error) error
	Update(ctx context.Context, fn func(s *model.Snapshot) error) error
}

// Entities is the per-entity repository contract. Each call is a cycle of its own.
type Entities interface {
	Users(ctx context.Context) ([]model.User, error)
	UserByID(ctx context.Context, id string) (model.User, error)
	UpsertUser(ctx context.Context, id string, patch model.UserPatch) (model.User, error)
	DeleteUser(ctx context.Context, id string) (model.User, bool, error)

	Products(ctx context.Context) ([]model.Product, error)
	UpsertProduct(ctx context.Context, id string, patch model.ProductPatch) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)

	StockTransactions(ctx context.Context) ([]model.StockTransaction, error)
	Sales(ctx context.Context) ([]model.Sale, error)

	Settings(ctx context.Context) (model.Settings, error)
	PatchSettings(ctx context.Context, patch model.SettingsPatch) (model.Settings, error)

	ClearLoginAttempt(ctx context.Context, username string) (bool, error)
}

// Repository is everything the services need from storage.
type Repository interface {
	Snapshots
	Entities
}

var _ Repository = (*repository.Repo)(nil)

// Metrics receives domain events. All methods must be safe for concurrent use.
type Metrics interface {
	LoginResult(outcome string)
	StockRecorded(tx model.StockTransaction)
	SaleRecorded(sale model.Sale)
}

type nopMetrics struct{}

func (nopMetrics) LoginResult(string)                   {}
func (nopMetrics) StockRecorded(model.StockTransaction) {}
func (nopMetrics) SaleRecorded(model.Sale)              {}

// Deps are the collaborators shared by all services.
type Deps struct {
	Repo    Repository
	Now     func() time.Time
	NewID   func() (string, error)
	Log     *zap.Logger
	Metrics Metrics
}

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = NewUUID
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = nopMetrics{}
	}
	return d
}

// NewUUID returns a random UUIDv4 string.
func NewUUID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Actor is the authenticated caller.
type Actor struct {
	UserID   string
	Username string
	Role     model.Role
}

// IsOwner reports whether the caller holds the owner role.
func (a Actor) IsOwner() bool { return a.Role == model.RoleOwner }

func requireActor(a Actor) error {
	if a.UserID == "" || a.Username == "" {
		return errs.ErrUnauthorized
	}
	return nil
}

func requireOwner(a Actor) error {
	if err := requireActor(a); err != nil {
		return err
	}
	if !a.IsOwner() {
		return errs.ErrForbidden
	}
	return nil
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9._-]{3,64}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	return v
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return errs.Validationf("%v", err)
	}
	return nil
}
