package service

import (
	"context"
	"errors"
	"filedock/internal/auth"
	"filedock/internal/domain/user"
	apperrors "filedock/pkg/errors"
	"filedock/pkg/password"
	"filedock/pkg/validator"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Pre-computed bcrypt hash (cost 12) used to equalize timing on failed
// lookups. The actual plaintext is irrelevant — this just ensures
// constant-time response.
const dummyBcryptHash = "$2a$12$dWR5CQpS4zNHLavLSIr4o.P6QDQEUJKv7mJ7WekUHHqyRSRMJzH0S"

const (
	msgUserNotFound      = "user not found"
	msgAdminRequired     = "admin access required"
	msgSelfDeleteBlocked = "you cannot delete your own account"
	msgAccountDisabled   = "account is disabled"
	msgGenerateTokenFail = "failed to generate token"
	msgHashPasswordFail  = "failed to hash password"
)

// LoginResult is a successful authentication: the user plus a signed
// bearer token.
type LoginResult struct {
	User  *user.User
	Token string
}

// UserPage is the pagination envelope for the admin user listing.
type UserPage struct {
	Items   []*user.User
	Total   int
	Page    int
	PerPage int
}

type UserService struct {
	users   UserRepository
	files   FileRepository
	folders FolderRepository
	blobs   BlobStore
	jwt     *auth.JWTService
	limits  ListLimits
	logger  zerolog.Logger
}

func NewUserService(
	users UserRepository,
	files FileRepository,
	folders FolderRepository,
	blobs BlobStore,
	jwt *auth.JWTService,
	limits ListLimits,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:   users,
		files:   files,
		folders: folders,
		blobs:   blobs,
		jwt:     jwt,
		limits:  limits.normalized(),
		logger:  logger.With().Str("service", "user").Logger(),
	}
}

// Register creates a non-admin account and returns it signed in.
func (s *UserService) Register(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validator.Email(email); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if err := validator.Password(plaintext); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return nil, apperrors.InternalServer(msgHashPasswordFail, err)
	}

	created, err := s.users.Create(ctx, user.CreateUserInput{
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.Generate(created.ID, created.Email, created.IsAdmin)
	if err != nil {
		return nil, apperrors.InternalServer(msgGenerateTokenFail, err)
	}

	s.logger.Info().
		Str("user_id", created.ID.String()).
		Msg("user registered")

	return &LoginResult{User: created, Token: token}, nil
}

// Login authenticates by email and password. Failed lookups run bcrypt
// against a dummy hash so response time does not reveal whether the
// email exists.
func (s *UserService) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plaintext == "" {
		password.Verify("", dummyBcryptHash)
		return nil, apperrors.InvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		password.Verify(plaintext, dummyBcryptHash)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidCredentials()
		}
		return nil, err
	}

	if !password.Verify(plaintext, u.PasswordHash) {
		return nil, apperrors.InvalidCredentials()
	}

	if !u.IsActive {
		return nil, apperrors.Forbidden(msgAccountDisabled)
	}

	token, err := s.jwt.Generate(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return nil, apperrors.InternalServer(msgGenerateTokenFail, err)
	}

	return &LoginResult{User: u, Token: token}, nil
}

// Get returns a user's profile. Non-admins may only look up themselves.
func (s *UserService) Get(ctx context.Context, ident *user.Identity, id uuid.UUID) (*user.User, error) {
	if ident == nil {
		return nil, apperrors.Unauthorized(msgAuthRequired)
	}
	if !ident.IsAdmin && ident.UserID != id {
		return nil, apperrors.Forbidden(msgAdminRequired)
	}

	return s.users.GetByID(ctx, id)
}

// List is admin-only.
func (s *UserService) List(ctx context.Context, ident *user.Identity, page, perPage int) (*UserPage, error) {
	if ident == nil || !ident.IsAdmin {
		return nil, apperrors.Forbidden(msgAdminRequired)
	}

	page, perPage = s.limits.clamp(page, perPage)

	items, total, err := s.users.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}

	return &UserPage{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// Create is the admin path for making accounts, including other admins.
func (s *UserService) Create(ctx context.Context, ident *user.Identity, email, plaintext string, isAdmin bool) (*user.User, error) {
	if ident == nil || !ident.IsAdmin {
		return nil, apperrors.Forbidden(msgAdminRequired)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if err := validator.Email(email); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if err := validator.Password(plaintext); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return nil, apperrors.InternalServer(msgHashPasswordFail, err)
	}

	return s.users.Create(ctx, user.CreateUserInput{
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	})
}

// AdminPatch is the admin-only user update payload. A non-nil Password
// is hashed before storage.
type AdminPatch struct {
	Email    *string
	Password *string
	IsAdmin  *bool
	IsActive *bool
}

// Update applies an admin patch to a user.
func (s *UserService) Update(ctx context.Context, ident *user.Identity, id uuid.UUID, patch AdminPatch) (*user.User, error) {
	if ident == nil || !ident.IsAdmin {
		return nil, apperrors.Forbidden(msgAdminRequired)
	}

	input := user.UpdateUserInput{
		IsAdmin:  patch.IsAdmin,
		IsActive: patch.IsActive,
	}

	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		if err := validator.Email(email); err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		input.Email = &email
	}

	if patch.Password != nil {
		if err := validator.Password(*patch.Password); err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		hash, err := password.Hash(*patch.Password)
		if err != nil {
			return nil, apperrors.InternalServer(msgHashPasswordFail, err)
		}
		input.PasswordHash = &hash
	}

	return s.users.Update(ctx, id, input)
}

// Delete removes a user together with everything they own: blobs and
// rows of their files, then their folders. Admins cannot delete their
// own account, so the last admin cannot lock everyone out by accident.
func (s *UserService) Delete(ctx context.Context, ident *user.Identity, id uuid.UUID) error {
	if ident == nil || !ident.IsAdmin {
		return apperrors.Forbidden(msgAdminRequired)
	}
	if ident.UserID == id {
		return apperrors.InvalidInput(msgSelfDeleteBlocked)
	}

	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}

	owned, err := s.files.ListAllByOwner(ctx, id)
	if err != nil {
		return err
	}

	failed := 0
	deletable := make([]uuid.UUID, 0, len(owned))
	for _, f := range owned {
		if err := s.blobs.Delete(ctx, f.StorageKey); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Error().
				Err(err).
				Str("file_id", f.ID.String()).
				Str("storage_key", f.StorageKey).
				Msg("blob delete failed during account deletion")
			failed++
			continue
		}
		deletable = append(deletable, f.ID)
	}

	// Rows whose blobs are gone come out even when other blobs failed,
	// so a partial failure never leaves a row with a dangling key.
	if _, err := s.files.DeleteBatch(ctx, deletable); err != nil {
		return err
	}

	if failed > 0 {
		return apperrors.PartialDeletion(
			fmt.Sprintf("%d of %d files could not be removed from storage", failed, len(owned)))
	}

	if _, err := s.folders.DeleteOwnedBy(ctx, id); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().
		Str("user_id", id.String()).
		Int("files_removed", len(deletable)).
		Msg("user deleted")

	return nil
}
