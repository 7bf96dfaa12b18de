package identity

import (
	"context"

	"taskboard/internal/model"
)

// Provider is the identity service behind the gateway. Implementations are
// stateless and shared by every session.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*model.Identity, error)
	SignUp(ctx context.Context, email, password string) (*model.Identity, error)
	UpdateProfile(ctx context.Context, id *model.Identity, displayName string) (*model.Identity, error)
	SignOut(ctx context.Context, id *model.Identity) error
	SendPasswordReset(ctx context.Context, email string) error
}

// PasswordResetter completes the reset flow started by SendPasswordReset.
// The code is the oobCode carried by the reset link.
type PasswordResetter interface {
	VerifyPasswordResetCode(ctx context.Context, code string) (string, error)
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) error
}
