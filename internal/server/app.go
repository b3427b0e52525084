// Package server assembles the osmnotes application: database, schema
// migrations, content keys and services.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/dmitrijs2005/osmnotes/internal/cryptox"
	"github.com/dmitrijs2005/osmnotes/internal/logging"
	"github.com/dmitrijs2005/osmnotes/internal/server/config"
	"github.com/dmitrijs2005/osmnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/osmnotes/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager

	Users       *services.UserService
	Notes       *services.NoteService
	Data        *services.DataService
	Attachments *services.AttachmentService
}

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	newRepositoryManager = func() repomanager.RepositoryManager {
		return repomanager.NewPostgresRepositoryManager()
	}

	newKMSClient = func(ctx context.Context, region string) (cryptox.KMSDecrypter, error) {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return nil, err
		}
		return kms.NewFromConfig(cfg), nil
	}
)

// keyProvider picks the content key source: a KMS-wrapped data key when a
// KMS key id is configured, the hex master key otherwise.
func keyProvider(ctx context.Context, c *config.Config) (cryptox.KeyProvider, error) {
	if c.UseKMS() {
		client, err := newKMSClient(ctx, c.S3Region)
		if err != nil {
			return nil, fmt.Errorf("kms client init error: %w", err)
		}
		return cryptox.NewKMSKeyProvider(client, c.KMSKeyID, c.WrappedDataKey)
	}
	return cryptox.ParseHexKey(c.MasterKey)
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	keys, err := keyProvider(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("key init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	sealer := cryptox.NewAESSealer(keys)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		Users:       services.NewUserService(db, rm, c, logger),
		Notes:       services.NewNoteService(db, rm, sealer, logger),
		Data:        services.NewDataService(db, rm, sealer, logger),
		Attachments: services.NewAttachmentService(db, rm, c, logger),
	}, nil
}

// Run applies migrations and then serves until ctx is cancelled or the
// process receives SIGINT, SIGTERM or SIGQUIT.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close error", "error", err)
		}
	}()

	app.logger.Info(ctx, "starting app", "namespace", app.config.Namespace, "database", app.config.Database, "kms", app.config.UseKMS())

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}
	app.logger.Info(ctx, "migrations applied")

	<-ctx.Done()
	app.logger.Info(context.Background(), "shutting down")
	return nil
}
