// Package app wires configuration, storage, the unit of work and the client
// data access together and runs a single command against them.
package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/bankclients/internal/common"
	"github.com/dmitrijs2005/bankclients/internal/config"
	"github.com/dmitrijs2005/bankclients/internal/dataaccess"
	"github.com/dmitrijs2005/bankclients/internal/export"
	"github.com/dmitrijs2005/bankclients/internal/logging"
	"github.com/dmitrijs2005/bankclients/internal/metrics"
	"github.com/dmitrijs2005/bankclients/internal/models"
	"github.com/dmitrijs2005/bankclients/internal/repositories/repomanager"
	"github.com/dmitrijs2005/bankclients/internal/uow"
	"github.com/prometheus/client_golang/prometheus"
)

var ErrUnknownCommand = errors.New("unknown command")

type App struct {
	config   *config.Config
	logger   logging.Logger
	out      io.Writer
	db       *sql.DB
	repos    repomanager.RepositoryManager
	metrics  *metrics.Collector
	registry *prometheus.Registry
	data     *dataaccess.ClientDataAccess

	// newStore builds the export target; replaced in tests.
	newStore func(ctx context.Context) (export.ObjectStore, error)
}

// NewApp opens the configured database and prepares the components. Command
// output goes to out, logs go to stderr.
func NewApp(c *config.Config, out io.Writer) (*App, error) {
	logger := logging.NewLogger(os.Stderr, c.LogLevel)

	repos, err := repomanager.New(c.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(c.Driver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := metrics.NewCollector()
	reg := prometheus.NewRegistry()
	if err := reg.Register(m); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	app := &App{
		config:   c,
		logger:   logger,
		out:      out,
		db:       db,
		repos:    repos,
		metrics:  m,
		registry: reg,
		data:     dataaccess.New(logger, m),
	}
	app.newStore = app.s3Store
	return app, nil
}

func (app *App) s3Store(ctx context.Context) (export.ObjectStore, error) {
	return export.NewS3Store(ctx, export.S3Options{
		Bucket:       app.config.S3Bucket,
		Region:       app.config.S3Region,
		BaseEndpoint: app.config.S3BaseEndpoint,
		AccessKey:    app.config.S3AccessKey,
		SecretKey:    app.config.S3SecretKey,
	})
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Close releases the database.
func (app *App) Close() error {
	return app.db.Close()
}

// Run applies the migrations and executes args[0] with the remaining args.
//
// Commands:
//
//	migrate                  apply migrations only
//	list                     print clients with accounts as JSON
//	add NAME [NUMBER...]     create a client with the given account numbers
//	export                   upload a snapshot of the list to object storage
func (app *App) Run(ctx context.Context, args []string) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	app.initSignalHandler(ctx, cancelFunc)

	if len(args) == 0 {
		return fmt.Errorf("%w: none given", ErrUnknownCommand)
	}

	if err := app.repos.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	session := uow.NewSession(app.db, app.repos, app.logger, app.metrics)
	defer app.logMetrics(ctx)

	switch args[0] {
	case "migrate":
		app.logger.Info(ctx, "migrations applied", "driver", app.config.Driver)
		return nil
	case "list":
		return app.list(ctx, session)
	case "add":
		return app.add(ctx, session, args[1:])
	case "export":
		return app.export(ctx, session)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
}

func (app *App) list(ctx context.Context, session *uow.Session) error {
	clients, err := app.data.GetAllClientsWithAccountsDetached(ctx, session)
	if err != nil {
		return err
	}
	if clients == nil {
		clients = []*models.Client{}
	}

	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	return enc.Encode(clients)
}

func (app *App) add(ctx context.Context, session *uow.Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("add: client name required")
	}

	client := &models.Client{Name: args[0]}
	for _, n := range args[1:] {
		client.Accounts = append(client.Accounts, &models.Account{Number: n})
	}

	if _, err := app.data.SaveNewClient(ctx, session, client); err != nil {
		var we *common.WriteError
		if errors.As(err, &we) && we.Cause() != nil {
			app.logger.Error(ctx, "save client failed", "cause", we.Cause().Error())
		}
		return err
	}

	app.logger.Info(ctx, "client created", "id", client.ID, "accounts", len(client.Accounts))
	_, err := fmt.Fprintln(app.out, client.ID)
	return err
}

func (app *App) export(ctx context.Context, session *uow.Session) error {
	clients, err := app.data.GetAllClientsWithAccountsDetached(ctx, session)
	if err != nil {
		return err
	}

	store, err := app.newStore(ctx)
	if err != nil {
		return fmt.Errorf("object store: %w", err)
	}

	key, err := export.NewExporter(store, app.config.ExportPrefix).Export(ctx, clients)
	if err != nil {
		return err
	}

	app.logger.Info(ctx, "snapshot exported", "key", key, "clients", len(clients))
	_, err = fmt.Fprintln(app.out, key)
	return err
}

func (app *App) logMetrics(ctx context.Context) {
	families, err := app.registry.Gather()
	if err != nil {
		app.logger.Warn(ctx, "gather metrics", "error", err.Error())
		return
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			app.logger.Debug(ctx, "metric", "name", f.GetName(), "value", m.GetCounter().GetValue())
		}
	}
}
