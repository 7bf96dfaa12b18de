package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"gorm.io/gorm"

	"taskboard/internal/access"
	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/identity"
	"taskboard/internal/repository"
	"taskboard/internal/session"
	"taskboard/internal/taskstore"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	Engine   *gin.Engine
	DB       *gorm.DB
	Config   *config.Config
	Sessions *session.Manager
	Store    *taskstore.Store
}

func Init(ctx context.Context, cfg *config.Config) (*Server, error) {
	var (
		provider identity.Provider
		resetter identity.PasswordResetter
		db       *gorm.DB
		err      error
	)

	switch cfg.IdentityProvider {
	case config.ProviderFirebase:
		provider, err = identity.NewFirebaseProvider(ctx, identity.FirebaseConfig{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsFile: cfg.FirebaseCredentials,
			APIKey:          cfg.FirebaseAPIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("❌ failed to init firebase: %w", err)
		}
		glog.Info("✅ Using Firebase identity provider")
	default:
		db, err = OpenDB(cfg)
		if err != nil {
			return nil, err
		}
		local := identity.NewLocalProvider(repository.NewUserRepository(db), cfg.ResetURL)
		provider, resetter = local, local
		glog.Info("✅ Using local identity provider")
	}

	store := taskstore.New()
	sessions := session.NewManager(provider, cfg.SessionTTL)

	r := NewRouter(Deps{
		Tokens:     auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL),
		Sessions:   sessions,
		Store:      store,
		Roles:      access.NewRoles(access.RoleAdmin, cfg.AdminEmails...),
		Assignees:  cfg.Assignees,
		DateLayout: cfg.DateLayout,
		Resetter:   resetter,
	})

	return &Server{
		Engine:   r,
		DB:       db,
		Config:   cfg,
		Sessions: sessions,
		Store:    store,
	}, nil
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully and closes
// every open session.
func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	janitorDone := make(chan struct{})
	go func() {
		s.Sessions.Run(janitorCtx)
		close(janitorDone)
	}()

	go func() {
		glog.Infof("🚀 Server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Fatalf("❌ Failed to listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		glog.Errorf("❌ Server forced to shutdown: %s", err)
	}

	stopJanitor()
	<-janitorDone

	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	glog.Info("✅ Server exited properly")
}
