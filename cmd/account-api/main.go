package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/thanawat-r/account-api/internal/auth"
	"github.com/thanawat-r/account-api/internal/config"
	"github.com/thanawat-r/account-api/internal/handler"
	"github.com/thanawat-r/account-api/internal/mailer"
	"github.com/thanawat-r/account-api/internal/middleware"
	"github.com/thanawat-r/account-api/internal/repository"
	"github.com/thanawat-r/account-api/internal/usecase"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "account-api").Logger()

	cfg := config.New(&logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}

	db := client.Database(cfg.MongoDatabase)

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	verificationRepo := repository.NewVerificationMongoRepository(ctx, &logger, db)
	passwordResetRepo := repository.NewPasswordResetMongoRepository(ctx, &logger, db)
	transactor := repository.NewMongoTransactor(client)

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)

	accountMailer := mailer.NewAccountMailer(
		mailer.NewMailer(&logger),
		&logger,
		cfg.AppVerifyURL,
		cfg.AppPasswordResetURL,
	)

	accountUsecase := usecase.NewAccountUsecase(
		userRepo,
		verificationRepo,
		passwordResetRepo,
		transactor,
		jwtAuth,
		accountMailer,
		cfg,
	)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(
		userRepo,
		passwordResetRepo,
		accountMailer,
		cfg,
	)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	authenticate := middleware.Authenticate(jwtAuth, cfg.Token.Secret, userRepo, &logger)

	accountHandler := handler.NewAccountHandler(accountUsecase, passwordResetUsecase, &logger)
	accountHandler.RegisterRoutes(router, authenticate)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().Str("addr", cfg.HTTPAddr).Msg("account-api listening")
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
