package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/storekeeper/internal/crypto"
	"github.com/and161185/storekeeper/internal/errs"
	"github.com/and161185/storekeeper/internal/model"
)

// UserService manages store accounts. Every operation is owner only.
type UserService interface {
	List(ctx context.Context, actor Actor) ([]model.User, error)
	Create(ctx context.Context, actor Actor, in NewUser) (model.User, error)
	Update(ctx context.Context, actor Actor, id string, in UserUpdate) (model.User, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

// NewUser is the input for creating an admin account.
type NewUser struct {
	Username string `validate:"required,username"`
	Password string `validate:"required,min=6,max=128"`
	Email    string `validate:"omitempty,email"`
}

// UserUpdate carries optional account changes.
type UserUpdate struct {
	Username *string `validate:"omitempty,username"`
	Password *string `validate:"omitempty,min=6,max=128"`
	Email    *string `validate:"omitempty,email"`
}

type UserServiceImpl struct {
	d Deps
}

// NewUserService constructs UserService.
func NewUserService(d Deps) *UserServiceImpl {
	return &UserServiceImpl{d: d.withDefaults()}
}

// List returns all users.
func (s *UserServiceImpl) List(ctx context.Context, actor Actor) ([]model.User, error) {
	if err := requireOwner(actor); err != nil {
		return nil, err
	}
	return s.d.Repo.Users(ctx)
}

// Create adds an admin account created by the calling owner.
func (s *UserServiceImpl) Create(ctx context.Context, actor Actor, in NewUser) (model.User, error) {
	if err := requireOwner(actor); err != nil {
		return model.User{}, err
	}
	if err := validateStruct(in); err != nil {
		return model.User{}, err
	}
	id, err := s.d.NewID()
	if err != nil {
		return model.User{}, err
	}
	hash, salt, err := pkgcrypto.NewSecret(in.Password)
	if err != nil {
		return model.User{}, err
	}

	u := model.User{
		ID:        id,
		Username:  in.Username,
		PwdHash:   hash,
		SaltAuth:  salt,
		Role:      model.RoleAdmin,
		Email:     in.Email,
		CreatedAt: s.d.Now(),
		CreatedBy: actor.Username,
	}
	err = s.d.Repo.Update(ctx, func(snap *model.Snapshot) error {
		if snap.UserByUsername(in.Username) != nil {
			return fmt.Errorf("%w: username %q", errs.ErrAlreadyExists, in.Username)
		}
		snap.Users = append(snap.Users, u)
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	s.d.Log.Info("user created", zap.String("username", u.Username), zap.String("by", actor.Username))
	return u, nil
}

// Update changes username, password or email. Usernames stay unique and a rename carries the
// account's login throttle record over to the new name.
func (s *UserServiceImpl) Update(ctx context.Context, actor Actor, id string, in UserUpdate) (model.User, error) {
	if err := requireOwner(actor); err != nil {
		return model.User{}, err
	}
	if err := validateStruct(in); err != nil {
		return model.User{}, err
	}
	patch := model.UserPatch{Username: in.Username, Email: in.Email}
	if in.Password != nil {
		hash, salt, err := pkgcrypto.NewSecret(*in.Password)
		if err != nil {
			return model.User{}, err
		}
		patch.PwdHash, patch.SaltAuth = hash, salt
	}

	var out model.User
	err := s.d.Repo.Update(ctx, func(snap *model.Snapshot) error {
		u := snap.UserByID(id)
		if u == nil {
			return fmt.Errorf("%w: user %s", errs.ErrNotFound, id)
		}
		if in.Username != nil && *in.Username != u.Username {
			if snap.UserByUsername(*in.Username) != nil {
				return fmt.Errorf("%w: username %q", errs.ErrAlreadyExists, *in.Username)
			}
			moveLoginAttempt(snap, u.Username, *in.Username)
		}
		patch.Apply(u)
		out = *u
		return nil
	})
	return out, err
}

// moveLoginAttempt refiles the throttle record of a renamed account. A record already filed
// under the new name belonged to no account and is dropped.
func moveLoginAttempt(s *model.Snapshot, from, to string) {
	delete(s.LoginAttempts, to)
	a, ok := s.LoginAttempts[from]
	if !ok {
		return
	}
	delete(s.LoginAttempts, from)
	a.Username = to
	s.LoginAttempts[to] = a
}

// Delete removes an account and its throttle record. Owners cannot be deleted and nobody can
// delete themselves. Unknown ids are a no-op.
func (s *UserServiceImpl) Delete(ctx context.Context, actor Actor, id string) error {
	if err := requireOwner(actor); err != nil {
		return err
	}
	if id == actor.UserID {
		return errs.ErrSelfDelete
	}
	// roles never change, so the check holds for the delete below
	target, err := s.d.Repo.UserByID(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if target.Role == model.RoleOwner {
		return fmt.Errorf("%w: owner accounts cannot be deleted", errs.ErrForbidden)
	}

	removed, ok, err := s.d.Repo.DeleteUser(ctx, id)
	if err != nil || !ok {
		return err
	}
	s.d.Log.Info("user deleted", zap.String("username", removed.Username), zap.String("by", actor.Username))
	if _, err := s.d.Repo.ClearLoginAttempt(ctx, removed.Username); err != nil {
		s.d.Log.Warn("drop login attempts of deleted user", zap.String("username", removed.Username), zap.Error(err))
	}
	return nil
}
