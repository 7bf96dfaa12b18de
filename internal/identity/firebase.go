package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/golang/glog"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"taskboard/internal/model"
)

const passwordResetRequest = "PASSWORD_RESET"

// FirebaseConfig holds the settings of the hosted identity provider.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
	APIKey          string
}

// FirebaseProvider uses the Admin SDK for account management and the
// Identity Toolkit REST API for password sign-in and reset emails, which
// the Admin SDK does not expose.
type FirebaseProvider struct {
	admin   *auth.Client
	toolkit *identitytoolkit.Service
}

var _ Provider = (*FirebaseProvider)(nil)

func NewFirebaseProvider(ctx context.Context, cfg FirebaseConfig) (*FirebaseProvider, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	admin, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth client: %w", err)
	}

	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %w", err)
	}

	glog.Info("[Firebase] Identity provider initialized")
	return &FirebaseProvider{admin: admin, toolkit: toolkit}, nil
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*model.Identity, error) {
	resp, err := p.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, firebaseError(err)
	}

	return &model.Identity{
		UID:         resp.LocalId,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
	}, nil
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password string) (*model.Identity, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password)

	user, err := p.admin.CreateUser(ctx, params)
	if err != nil {
		return nil, firebaseError(err)
	}
	return recordIdentity(user), nil
}

func (p *FirebaseProvider) UpdateProfile(ctx context.Context, id *model.Identity, displayName string) (*model.Identity, error) {
	user, err := p.admin.UpdateUser(ctx, id.UID, (&auth.UserToUpdate{}).DisplayName(displayName))
	if err != nil {
		return nil, firebaseError(err)
	}
	return recordIdentity(user), nil
}

// SignOut revokes the identity's refresh tokens so other devices are
// signed out too.
func (p *FirebaseProvider) SignOut(ctx context.Context, id *model.Identity) error {
	if err := p.admin.RevokeRefreshTokens(ctx, id.UID); err != nil {
		return firebaseError(err)
	}
	return nil
}

// SendPasswordReset asks Firebase to mail a password reset link.
func (p *FirebaseProvider) SendPasswordReset(ctx context.Context, email string) error {
	_, err := p.toolkit.Relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: passwordResetRequest,
		Email:       email,
	}).Context(ctx).Do()
	if err != nil {
		return firebaseError(err)
	}
	return nil
}

func recordIdentity(user *auth.UserRecord) *model.Identity {
	return &model.Identity{
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
}

// firebaseError maps Admin SDK and REST failures onto provider codes.
func firebaseError(err error) error {
	switch {
	case auth.IsEmailAlreadyExists(err):
		return newError(CodeEmailAlreadyInUse, err)
	case auth.IsUserNotFound(err):
		return newError(CodeUserNotFound, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return newError(restErrorCode(apiErr.Message), err)
	}
	if isNetworkError(err) {
		return newError(CodeNetworkRequestFailed, err)
	}
	return newError(CodeUnknown, err)
}

// restErrorCode maps an Identity Toolkit error message such as
// "WEAK_PASSWORD : Password should be at least 6 characters".
func restErrorCode(message string) string {
	reason, _, _ := strings.Cut(message, " ")
	switch reason {
	case "EMAIL_EXISTS":
		return CodeEmailAlreadyInUse
	case "EMAIL_NOT_FOUND":
		return CodeUserNotFound
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return CodeInvalidCredential
	case "INVALID_EMAIL":
		return CodeInvalidEmail
	case "WEAK_PASSWORD":
		return CodeWeakPassword
	}
	return CodeUnknown
}
