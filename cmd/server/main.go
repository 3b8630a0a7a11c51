package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"spotcircle/internal/config"
	apphttp "spotcircle/internal/http"
	"spotcircle/internal/janitor"
	"spotcircle/internal/repository/sqlite"
	"spotcircle/internal/service"
	"spotcircle/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	inviteRepo := sqlite.NewInviteRepository(db)
	spotRepo := sqlite.NewSpotRepository(db)
	voteRepo := sqlite.NewVoteRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := inviteRepo.Init(ctx); err != nil {
		logger.Fatalf("init invite repository: %v", err)
	}
	if err := spotRepo.Init(ctx); err != nil {
		logger.Fatalf("init spot repository: %v", err)
	}
	if err := voteRepo.Init(ctx); err != nil {
		logger.Fatalf("init vote repository: %v", err)
	}

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	clock := service.SystemClock()
	userService := service.NewUserService(userRepo, inviteRepo, clock, cfg.Auth.JWTSecret, cfg.TokenTTL())
	adminService := service.NewAdminService(userRepo, inviteRepo, spotRepo, clock, cfg.InviteTTL())
	spotService := service.NewSpotService(spotRepo, storageSvc, cfg.Storage.Bucket, cfg.Storage.KeyPrefix)
	votingService := service.NewVotingService(voteRepo, userRepo, clock, cfg.VoteTTL(), cfg.CleanupDelay())

	sweeper := janitor.New(janitor.Config{
		SweepInterval: cfg.Janitor.SweepInterval,
		Logger:        logger,
	}, votingService)
	sweeper.Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		adminService,
		spotService,
		votingService,
		cfg.Auth.JWTSecret,
		cfg.Frontend.URL,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	sweeper.Shutdown()

	logger.Info("bye")
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Warn("storage bucket not configured, spot photos disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
