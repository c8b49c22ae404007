package main

import (
	"context"
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"

	"github.com/chat-nexa/account-service/account"
	"github.com/chat-nexa/account-service/account/authware"
	"github.com/chat-nexa/account-service/account/social/google"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := account.LoadConfig()
	if err != nil {
		logger.Fatal("configuration", zap.Error(err))
	}

	db, err := openDB(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer db.Close()

	users := account.NewUsersRepository(db)
	sessions := account.NewSessionsRepository(db)
	tokens := account.NewTokenService([]byte(cfg.TokenSecret), cfg.TokenTTL, cfg.TokenIssuer, logger)
	hasher := account.NewHasher(cfg.BcryptCost)
	auth := account.NewAuthenticator(users, sessions, tokens, hasher, logger)

	opts := []account.ControllerOption{}
	if cfg.GoogleEnabled() {
		opts = append(opts, account.WithGoogleProvider(google.New(google.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			CallbackURL:  cfg.GoogleCallbackURL,
		})))
	}

	controller := account.NewController(auth, users, logger, opts...)

	guard := authware.New(authware.Config{
		Validator: tokens,
		Resolver:  auth,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: account.ErrorHandler(logger),
	})
	controller.RegisterRoutes(app, guard)

	logger.Info("account service listening", zap.String("addr", cfg.HTTPAddr))
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		logger.Fatal("http server", zap.Error(err))
	}
}

func openDB(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, model := range []any{(*account.User)(nil), (*account.SessionToken)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return nil, err
		}
	}

	return db, nil
}
