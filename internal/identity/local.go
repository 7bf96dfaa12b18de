package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

const (
	// MinPasswordLength matches the hosted provider's weak-password rule.
	MinPasswordLength = 6

	resetTokenTTL = time.Hour

	pgUniqueViolation = "23505"
)

// LocalProvider is an identity provider backed by the user directory.
type LocalProvider struct {
	users    repository.UserRepositoryInterface
	validate *validator.Validate
	resetURL string
	now      func() time.Time
}

var (
	_ Provider         = (*LocalProvider)(nil)
	_ PasswordResetter = (*LocalProvider)(nil)
)

func NewLocalProvider(users repository.UserRepositoryInterface, resetURL string) *LocalProvider {
	return &LocalProvider{
		users:    users,
		validate: validator.New(),
		resetURL: resetURL,
		now:      time.Now,
	}
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*model.Identity, error) {
	user, err := p.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, classify(err)
	}
	if user == nil {
		return nil, newError(CodeInvalidCredential, nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, newError(CodeInvalidCredential, nil)
	}
	return user.Identity(), nil
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*model.Identity, error) {
	email = normalizeEmail(email)
	if err := p.validate.Var(email, "required,email"); err != nil {
		return nil, newError(CodeInvalidEmail, err)
	}
	if len(password) < MinPasswordLength {
		return nil, newError(CodeWeakPassword, nil)
	}

	existing, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, classify(err)
	}
	if existing != nil {
		return nil, newError(CodeEmailAlreadyInUse, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, newError(CodeUnknown, err)
	}

	user := &model.User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: string(hash),
	}
	if err := p.users.Create(ctx, user); err != nil {
		return nil, classify(err)
	}
	return user.Identity(), nil
}

func (p *LocalProvider) UpdateProfile(ctx context.Context, id *model.Identity, displayName string) (*model.Identity, error) {
	userID, err := uuid.Parse(id.UID)
	if err != nil {
		return nil, newError(CodeUserNotFound, err)
	}
	if err := p.users.UpdateName(ctx, userID, displayName); err != nil {
		return nil, classify(err)
	}

	updated := *id
	updated.DisplayName = displayName
	return &updated, nil
}

// SignOut has nothing to revoke: local sessions end when the viewer's
// session is closed.
func (p *LocalProvider) SignOut(ctx context.Context, id *model.Identity) error {
	glog.V(1).Infof("identity: %s signed out", id.Email)
	return nil
}

// SendPasswordReset issues a reset token and logs the link that would be
// mailed to the user.
func (p *LocalProvider) SendPasswordReset(ctx context.Context, email string) error {
	user, err := p.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return classify(err)
	}
	if user == nil {
		return newError(CodeUserNotFound, nil)
	}

	token := uuid.NewString()
	if err := p.users.SetResetToken(ctx, user.ID, token, p.now().Add(resetTokenTTL)); err != nil {
		return classify(err)
	}

	glog.Infof("📧 Password reset link for %s: %s?oobCode=%s", user.Email, p.resetURL, token)
	return nil
}

// VerifyPasswordResetCode returns the email the code was issued for.
func (p *LocalProvider) VerifyPasswordResetCode(ctx context.Context, code string) (string, error) {
	user, err := p.userForCode(ctx, code)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

func (p *LocalProvider) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	user, err := p.userForCode(ctx, code)
	if err != nil {
		return err
	}
	if len(newPassword) < MinPasswordLength {
		return newError(CodeWeakPassword, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return newError(CodeUnknown, err)
	}
	if err := p.users.ResetPassword(ctx, user.ID, string(hash)); err != nil {
		return classify(err)
	}

	glog.Infof("✅ Password reset for %s", user.Email)
	return nil
}

// userForCode resolves a reset code to its user, rejecting unknown and
// expired codes.
func (p *LocalProvider) userForCode(ctx context.Context, code string) (*model.User, error) {
	if code == "" {
		return nil, newError(CodeInvalidActionCode, nil)
	}
	user, err := p.users.FindByResetToken(ctx, code)
	if err != nil {
		return nil, classify(err)
	}
	if user == nil {
		return nil, newError(CodeInvalidActionCode, nil)
	}
	if user.ResetExpiresAt == nil || !p.now().Before(*user.ResetExpiresAt) {
		return nil, newError(CodeExpiredActionCode, nil)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// classify maps directory failures onto provider codes.
func classify(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		return newError(CodeEmailAlreadyInUse, err)
	case errors.Is(err, repository.ErrUserNotFound):
		return newError(CodeUserNotFound, err)
	case isNetworkError(err), pgconn.SafeToRetry(err), errors.Is(err, context.DeadlineExceeded):
		return newError(CodeNetworkRequestFailed, err)
	default:
		return newError(CodeUnknown, err)
	}
}
