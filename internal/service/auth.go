package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/storekeeper/internal/crypto"
	"github.com/and161185/storekeeper/internal/errs"
	"github.com/and161185/storekeeper/internal/limiter"
	"github.com/and161185/storekeeper/internal/model"
	"github.com/and161185/storekeeper/internal/notify"
	"github.com/and161185/storekeeper/internal/repository"
)

// Login outcomes reported to Metrics.
const (
	OutcomeSuccess              = "success"
	OutcomeUserNotFound         = "user_not_found"
	OutcomeWrongPassword        = "wrong_password"
	OutcomeLocked               = "locked"
	OutcomeVerificationRequired = "verification_required"
)

// AuthService defines authentication, throttling and bootstrap operations.
type AuthService interface {
	// Login applies the login throttle and authenticates the user.
	Login(ctx context.Context, username, password string) (model.Tokens, model.User, error)
	// RequestVerification issues a verification code for a username that needs one.
	RequestVerification(ctx context.Context, username string) (Verification, error)
	// VerifyEmail checks a verification code and clears the throttle record on success.
	VerifyEmail(ctx context.Context, username, code string) error
	// ResetLoginAttempts clears a username's throttle record. Owner only.
	ResetLoginAttempts(ctx context.Context, actor Actor, username string) error
	// Authenticate resolves an access token to the account that still holds it.
	Authenticate(ctx context.Context, token string) (Actor, error)
	// Bootstrap creates the first owner when the store has no users.
	Bootstrap(ctx context.Context, username, password, email string) (bool, error)
}

// AuthConfig tunes the auth service.
type AuthConfig struct {
	SignKey      []byte
	AccessTTL    time.Duration
	Policy       limiter.Policy
	CodeTTL      time.Duration
	MaxCodeTries int
	Leeway       time.Duration
}

// Verification describes an issued code without revealing it.
type Verification struct {
	Destination string // masked email
	ExpiresAt   time.Time
}

type AuthServiceImpl struct {
	d        Deps
	cfg      AuthConfig
	notifier notify.Notifier
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(d Deps, cfg AuthConfig, n notify.Notifier) *AuthServiceImpl {
	cfg.Policy = cfg.Policy.Normalize()
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 12 * time.Hour
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 15 * time.Minute
	}
	if cfg.MaxCodeTries <= 0 {
		cfg.MaxCodeTries = 5
	}
	return &AuthServiceImpl{d: d.withDefaults(), cfg: cfg, notifier: n}
}

func attemptOf(s *model.Snapshot, username string) *model.LoginAttempt {
	a, ok := s.LoginAttempts[username]
	if !ok {
		return nil
	}
	return &a
}

// Login authenticates username. The lookup, throttle check, password check and the
// resulting throttle update happen in one repository cycle.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (model.Tokens, model.User, error) {
	now := s.d.Now()
	var (
		user     model.User
		loginErr error
	)
	err := s.d.Repo.Update(ctx, func(snap *model.Snapshot) error {
		prev := attemptOf(snap, username)

		u := snap.UserByUsername(username)
		if u == nil {
			snap.LoginAttempts[username] = s.cfg.Policy.Fail(prev, username, now)
			loginErr = errs.ErrUserNotFound
			return nil
		}
		if err := s.cfg.Policy.Check(prev, now); err != nil {
			loginErr = err
			return repository.ErrNoChange
		}
		if !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
			next := s.cfg.Policy.Fail(prev, username, now)
			snap.LoginAttempts[username] = next
			loginErr = s.cfg.Policy.FailureError(next, now)
			return nil
		}

		user = *u
		if prev == nil {
			return repository.ErrNoChange
		}
		delete(snap.LoginAttempts, username)
		return nil
	})
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if loginErr != nil {
		s.reportFailure(username, loginErr)
		return model.Tokens{}, model.User{}, loginErr
	}

	tokens, err := issueAccessToken(s.cfg.SignKey, s.cfg.AccessTTL, user, now)
	if err != nil {
		return model.Tokens{}, model.User{}, fmt.Errorf("issue token: %w", err)
	}
	s.d.Metrics.LoginResult(OutcomeSuccess)
	return tokens, user, nil
}

func (s *AuthServiceImpl) reportFailure(username string, err error) {
	var le *errs.LockedError
	switch {
	case errors.Is(err, errs.ErrUserNotFound):
		s.d.Metrics.LoginResult(OutcomeUserNotFound)
	case errors.As(err, &le):
		s.d.Metrics.LoginResult(OutcomeLocked)
		s.d.Log.Warn("login locked", zap.String("username", username), zap.Int64("remaining_s", le.RemainingSeconds()))
	case errors.Is(err, errs.ErrVerificationRequired):
		s.d.Metrics.LoginResult(OutcomeVerificationRequired)
		s.d.Log.Warn("login needs verification", zap.String("username", username))
	default:
		s.d.Metrics.LoginResult(OutcomeWrongPassword)
	}
}

// RequestVerification issues a fresh code to the user's email (or the owner email from
// settings) and sends it through the notifier.
func (s *AuthServiceImpl) RequestVerification(ctx context.Context, username string) (Verification, error) {
	now := s.d.Now()
	code, err := pkgcrypto.NewCode()
	if err != nil {
		return Verification{}, err
	}
	hash, salt, err := pkgcrypto.NewSecret(code)
	if err != nil {
		return Verification{}, err
	}

	var to string
	exp := now.Add(s.cfg.CodeTTL)
	err = s.d.Repo.Update(ctx, func(snap *model.Snapshot) error {
		u := snap.UserByUsername(username)
		if u == nil {
			return errs.ErrUserNotFound
		}
		a := attemptOf(snap, username)
		if s.cfg.Policy.StateOf(a, now) != limiter.StateNeedsVerification {
			return errs.ErrVerificationNotRequired
		}
		to = u.Email
		if to == "" {
			to = snap.Settings.OwnerEmail
		}
		if to == "" {
			return errs.Validationf("no email on file for %s", username)
		}
		a.CodeHash, a.CodeSalt = hash, salt
		a.CodeExpiresAt = &exp
		a.CodeTries = 0
		snap.LoginAttempts[username] = *a
		return nil
	})
	if err != nil {
		return Verification{}, err
	}

	msg := notify.Message{
		To:      to,
		Subject: "Login verification code",
		Body: fmt.Sprintf("Verification code for %s: %s (valid until %s)",
			username, code, exp.Format(time.RFC3339)),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		return Verification{}, fmt.Errorf("deliver code: %w", err)
	}
	s.d.Log.Info("verification code issued", zap.String("username", username), zap.Time("expires", exp))
	return Verification{Destination: MaskEmail(to), ExpiresAt: exp}, nil
}

// VerifyEmail accepts an unexpired code. Success deletes the throttle record. Each wrong
// code counts against MaxCodeTries, after which the code is discarded.
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, username, code string) error {
	now := s.d.Now()
	var verifyErr error
	err := s.d.Repo.Update(ctx, func(snap *model.Snapshot) error {
		a := attemptOf(snap, username)
		if s.cfg.Policy.StateOf(a, now) != limiter.StateNeedsVerification {
			return errs.ErrVerificationNotRequired
		}
		if len(a.CodeHash) == 0 {
			return errs.ErrInvalidCode
		}
		if a.CodeExpiresAt == nil || !now.Before(*a.CodeExpiresAt) {
			a.ClearCode()
			snap.LoginAttempts[username] = *a
			verifyErr = fmt.Errorf("%w: code expired", errs.ErrInvalidCode)
			return nil
		}
		if !pkgcrypto.VerifyPassword([]byte(code), a.CodeSalt, a.CodeHash) {
			a.CodeTries++
			if a.CodeTries >= s.cfg.MaxCodeTries {
				a.ClearCode()
			}
			snap.LoginAttempts[username] = *a
			verifyErr = errs.ErrInvalidCode
			return nil
		}
		delete(snap.LoginAttempts, username)
		return nil
	})
	if err != nil {
		return err
	}
	if verifyErr != nil {
		return verifyErr
	}
	s.d.Log.Info("login unlocked by verification", zap.String("username", username))
	return nil
}

// ResetLoginAttempts clears the throttle record of username.
func (s *AuthServiceImpl) ResetLoginAttempts(ctx context.Context, actor Actor, username string) error {
	if err := requireOwner(actor); err != nil {
		return err
	}
	ok, err := s.d.Repo.ClearLoginAttempt(ctx, username)
	if err != nil {
		return err
	}
	if ok {
		s.d.Log.Info("login attempts reset", zap.String("username", username), zap.String("by", actor.Username))
	}
	return nil
}

// Authenticate verifies an access token and resolves it to the stored account. Tokens of
// deleted accounts are refused; a renamed account keeps its session under the new name.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (Actor, error) {
	claimed, err := ParseAccessToken(s.cfg.SignKey, token, s.cfg.Leeway)
	if err != nil {
		return Actor{}, err
	}
	u, err := s.d.Repo.UserByID(ctx, claimed.UserID)
	if errors.Is(err, errs.ErrNotFound) {
		return Actor{}, fmt.Errorf("%w: account no longer exists", errs.ErrUnauthorized)
	}
	if err != nil {
		return Actor{}, err
	}
	return Actor{UserID: u.ID, Username: u.Username, Role: u.Role}, nil
}

// Bootstrap creates the owner account when no user exists yet. It reports whether it did.
// Call it before serving: the emptiness check and the insert are separate cycles.
func (s *AuthServiceImpl) Bootstrap(ctx context.Context, username, password, email string) (bool, error) {
	in := NewUser{Username: username, Password: password, Email: email}
	if err := validateStruct(in); err != nil {
		return false, err
	}
	users, err := s.d.Repo.Users(ctx)
	if err != nil {
		return false, err
	}
	if len(users) > 0 {
		return false, nil
	}
	id, err := s.d.NewID()
	if err != nil {
		return false, err
	}
	hash, salt, err := pkgcrypto.NewSecret(password)
	if err != nil {
		return false, err
	}

	role := model.RoleOwner
	now := s.d.Now()
	_, err = s.d.Repo.UpsertUser(ctx, id, model.UserPatch{
		Username:  &username,
		PwdHash:   hash,
		SaltAuth:  salt,
		Role:      &role,
		Email:     &email,
		CreatedAt: &now,
	})
	if err != nil {
		return false, err
	}
	s.d.Log.Info("owner account created", zap.String("username", username))
	return true, nil
}

// MaskEmail hides most of the local part of an address.
func MaskEmail(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return "***"
	}
	return addr[:1] + "***" + addr[at:]
}
