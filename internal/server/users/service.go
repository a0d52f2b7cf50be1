package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lumina-social/lumina/internal/common"
	"github.com/lumina-social/lumina/internal/dbx"
	"github.com/lumina-social/lumina/internal/logging"
	"github.com/lumina-social/lumina/internal/server/config"
)

// AuthOutcome tells the caller what the storage layer knows of a user: if
// the account exists, and if the password provided was correct.
type AuthOutcome int

const (
	AuthSuccess AuthOutcome = iota
	AuthUserNotFound
	AuthFail
)

// FailReason is the reason why authentication failed.
type FailReason int

const (
	FailReasonUnspecified FailReason = iota
	FailReasonPasswordIncorrect
	FailReasonInvalidIdentifier
)

// AuthResult carries the outcome of an authentication attempt. UserID is
// only meaningful for AuthSuccess, Reason only for AuthFail.
type AuthResult struct {
	Outcome AuthOutcome
	UserID  int64
	Reason  FailReason
}

// RepositoryFactory binds a Repository to a database handle, so service
// methods can run repository calls inside a transaction.
type RepositoryFactory func(db dbx.DBTX) Repository

// Service implements account registration and the identifier/password
// authentication check feeding the session layer.
type Service struct {
	db        *sql.DB
	repos     RepositoryFactory
	hasher    PasswordHasher
	cache     ExistenceCache
	logger    logging.Logger
	minLength int
	maxLength int
}

func NewService(db *sql.DB, repos RepositoryFactory, hasher PasswordHasher, cache ExistenceCache, logger logging.Logger, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		repos:     repos,
		hasher:    hasher,
		cache:     cache,
		logger:    logger.With("module", "users"),
		minLength: cfg.UsernameMinLength,
		maxLength: cfg.UsernameMaxLength,
	}
}

// Authenticate resolves an identifier (username or email) to a user record
// and compares credentials. Lookup is tried by username first, then by
// email; the username match wins. Storage errors are logged with detail
// here and reported to callers only as an unspecified failure.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) AuthResult {
	if IdentifierHasInvalidChars(identifier) {
		return AuthResult{Outcome: AuthFail, Reason: FailReasonInvalidIdentifier}
	}

	repo := s.repos(s.db)

	user, err := repo.GetByUsername(ctx, identifier)
	if err != nil && errors.Is(err, common.ErrorNotFound) {
		user, err = repo.GetByEmail(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return AuthResult{Outcome: AuthUserNotFound}
		}
		s.logger.Error(ctx, "authentication lookup failed", "error", err)
		return AuthResult{Outcome: AuthFail, Reason: FailReasonUnspecified}
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return AuthResult{Outcome: AuthFail, Reason: FailReasonPasswordIncorrect}
	}
	return AuthResult{Outcome: AuthSuccess, UserID: user.ID}
}

// GetByID fetches a user by id. The caller owns the context deadline.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repos(s.db).GetByID(ctx, id)
}

// UsernameStatus implements the registration precheck: nil when the
// username is syntactically valid and free, otherwise the sentinel that
// becomes the response's "Why" code.
func (s *Service) UsernameStatus(ctx context.Context, username string) error {
	if err := CheckUsername(username, s.minLength, s.maxLength); err != nil {
		return err
	}
	taken, err := s.usernameTaken(ctx, s.repos(s.db), username)
	if err != nil {
		s.logger.Error(ctx, "username precheck lookup failed", "error", err)
		return common.ErrorInternal
	}
	if taken {
		return common.ErrorUsernameInUse
	}
	return nil
}

// RegisterPrecheck runs the full registration validation without creating
// anything, so clients can surface problems before the user submits.
func (s *Service) RegisterPrecheck(ctx context.Context, username, email, password string) error {
	if err := CheckEmail(email); err != nil {
		return err
	}
	if err := CheckUsername(username, s.minLength, s.maxLength); err != nil {
		return err
	}
	if err := CheckPassword(password); err != nil {
		return err
	}

	repo := s.repos(s.db)
	taken, err := s.emailTaken(ctx, repo, email)
	if err != nil {
		s.logger.Error(ctx, "registration precheck lookup failed", "error", err)
		return common.ErrorInternal
	}
	if taken {
		return common.ErrorEmailInUse
	}

	taken, err = s.usernameTaken(ctx, repo, username)
	if err != nil {
		s.logger.Error(ctx, "registration precheck lookup failed", "error", err)
		return common.ErrorInternal
	}
	if taken {
		return common.ErrorUsernameInUse
	}
	return nil
}

// Register validates the candidate account, checks uniqueness and creates
// the user. Validation failures come back as the common sentinels;
// storage failures as wrapped internal errors.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	if err := CheckUsername(username, s.minLength, s.maxLength); err != nil {
		return nil, err
	}
	if err := CheckEmail(email); err != nil {
		return nil, err
	}
	if err := CheckPassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	var created *User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos(tx)

		taken, err := s.usernameTaken(ctx, repo, username)
		if err != nil {
			return err
		}
		if taken {
			return common.ErrorUsernameInUse
		}

		taken, err = s.emailTaken(ctx, repo, email)
		if err != nil {
			return err
		}
		if taken {
			return common.ErrorEmailInUse
		}

		created, err = repo.Create(ctx, &User{Username: username, Email: email, PasswordHash: hash})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Remember(ctx, "username", username)
	s.cache.Remember(ctx, "email", email)
	s.logger.Info(ctx, "user created", "user_id", created.ID, "username", created.Username)

	return created, nil
}

func (s *Service) usernameTaken(ctx context.Context, repo Repository, username string) (bool, error) {
	if !s.cache.MightExist(ctx, "username", username) {
		return false, nil
	}
	_, err := repo.GetByUsername(ctx, username)
	if err == nil {
		s.cache.Remember(ctx, "username", username)
		return true, nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return false, err
}

func (s *Service) emailTaken(ctx context.Context, repo Repository, email string) (bool, error) {
	if !s.cache.MightExist(ctx, "email", email) {
		return false, nil
	}
	_, err := repo.GetByEmail(ctx, email)
	if err == nil {
		s.cache.Remember(ctx, "email", email)
		return true, nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return false, err
}
