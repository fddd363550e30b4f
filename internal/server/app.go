// Package server wires the custodian server together: configuration, the
// master key, the record store, identity, notifications, object storage and
// the two request surfaces (gRPC for staff and owners, HTTP for third parties).
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dmitrijs2005/custodian/internal/anomaly"
	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/cryptox"
	"github.com/dmitrijs2005/custodian/internal/logging"
	"github.com/dmitrijs2005/custodian/internal/server/auth"
	"github.com/dmitrijs2005/custodian/internal/server/config"
	"github.com/dmitrijs2005/custodian/internal/server/httpapi"
	"github.com/dmitrijs2005/custodian/internal/server/notify"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/custodian/internal/server/services"
	"github.com/dmitrijs2005/custodian/internal/server/storage"

	gs "github.com/dmitrijs2005/custodian/internal/server/grpc"
)

// Seams for tests.
var (
	getenv   = os.Getenv
	openDB   = sql.Open
	logSink  = io.Writer(os.Stdout)
	newStore = func() repomanager.RepositoryManager { return repomanager.NewPostgresRepositoryManager() }
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	grpcServer *gs.GRPCServer
	httpServer *httpapi.Server
	closers    []io.Closer
}

// NewApp builds every component. It fails before touching the database when
// the master key is missing or unusable.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := newLogger(c)
	if err != nil {
		return nil, err
	}

	key, err := cryptox.ResolveMasterKey(getenv(cryptox.MasterKeyEnv))
	if err != nil {
		return nil, err
	}
	cipher, err := cryptox.NewCipher(key)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger}
	ok := false
	defer func() {
		if !ok {
			app.close(ctx)
		}
	}()

	db, err := openDB(repomanager.DriverName, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newStore()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	verifier, err := app.newVerifier(ctx)
	if err != nil {
		return nil, err
	}

	notifier, err := app.newNotifier()
	if err != nil {
		return nil, err
	}

	presigner, err := storage.NewS3Presigner(ctx, storage.Options{
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		TTL:          c.PresignTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	vault := services.NewVaultService(db, rm, cipher, logger)
	codes := services.NewShareCodeService(db, rm, services.ShareCodePolicy{
		DefaultTTL: c.ShareCodeDefaultTTL,
		MaxTTL:     c.ShareCodeMaxTTL,
	}, logger)
	access := services.NewAccessService(db, rm, anomaly.NewDetector(c.Anomaly), notifier, c.AccessHistoryLimit, logger)

	app.grpcServer = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, verifier, vault, codes, access)
	app.httpServer, err = httpapi.NewServer(c.EndpointAddrHTTP, logger, c.CORSAllowedOrigins, c.TrustedProxies, codes, access, presigner)
	if err != nil {
		return nil, err
	}

	ok = true
	return app, nil
}

func newLogger(c *config.Config) (logging.Logger, error) {
	switch c.LogFormat {
	case config.LogFormatZap:
		lvl, err := zapcore.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: log level: %v", common.ErrorConfig, err)
		}
		core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(logSink), lvl)
		return logging.NewZapLogger(zap.New(core)), nil
	default:
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return nil, fmt.Errorf("%w: log level: %v", common.ErrorConfig, err)
		}
		return logging.NewJSONSlogLogger(logSink, lvl), nil
	}
}

func (app *App) newVerifier(ctx context.Context) (auth.Verifier, error) {
	if app.config.AuthProvider == config.AuthProviderFirebase {
		v, err := auth.NewFirebaseVerifier(ctx, app.config.FirebaseProjectID, app.config.FirebaseCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("identity provider init error: %w", err)
		}
		return v, nil
	}
	return auth.NewJWTVerifier([]byte(app.config.JWTSecret)), nil
}

func (app *App) newNotifier() (notify.Sender, error) {
	if app.config.AMQPURL == "" {
		return notify.NewLogSender(app.logger), nil
	}
	s, err := notify.NewAMQPSender(app.config.AMQPURL, app.config.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("notification broker init error: %w", err)
	}
	app.closers = append(app.closers, s)
	return s, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) runServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped with error", "server", name, "error", err)
		cancelFunc()
	}
}

// Run serves both surfaces until a signal arrives, ctx is cancelled or one
// of the servers fails, then releases resources.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "grpc", app.grpcServer.Run)
	}()
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "http", app.httpServer.Run)
	}()

	wg.Wait()

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.logger.Warn(ctx, "close failed", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(ctx, "db close failed", "error", err)
		}
	}
}
