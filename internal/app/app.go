package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/twmb/franz-go/pkg/sr"

	"github.com/webshop/backend/config"
	"github.com/webshop/backend/internal/adapter"
	"github.com/webshop/backend/internal/adapter/broker"
	"github.com/webshop/backend/internal/adapter/erp"
	"github.com/webshop/backend/internal/adapter/httphandler"
	"github.com/webshop/backend/internal/adapter/storage"
	"github.com/webshop/backend/internal/core/port"
	"github.com/webshop/backend/internal/core/service"
	"github.com/webshop/backend/pkg/retry"
	"github.com/webshop/backend/pkg/schema"
)

type repositories struct {
	products  storage.ProductsRepository
	customers storage.CustomersRepository
	orders    storage.OrdersRepository
}

type services struct {
	orders    service.OrderService
	sync      service.SyncService
	imports   service.ImportService
	customers service.CustomerService
	products  service.ProductService
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	sqlDB      storage.SQLDB
	repos      repositories
	gateway    *erp.Client
	bridge     *broker.OrderBridge
	services   services
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStorage()
	app.initGateway()
	app.initBridge()
	app.initServices()
	app.initHTTPServer()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	sqlDB, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.sqlDB = sqlDB

	app.repos.products = storage.NewProductsRepository(sqlDB)
	app.repos.customers = storage.NewCustomersRepository(sqlDB)
	app.repos.orders = storage.NewOrdersRepository(sqlDB)
}

func (app *App) initGateway() {
	app.gateway = erp.New(erp.Config{
		BaseURL:     app.cfg.ERP.BaseURL,
		User:        app.cfg.ERP.User,
		Pass:        app.cfg.ERP.Pass,
		Timeout:     app.cfg.ERP.Timeout,
		PingTimeout: app.cfg.ERP.PingTimeout,
		Retry: retry.Policy{
			Attempts:  app.cfg.ERP.Attempts,
			BaseDelay: app.cfg.ERP.BaseDelay,
			Jitter:    true,
		},
	})
}

func (app *App) initBridge() {
	const op = "App.initBridge"

	if !app.cfg.Broker.Enabled {
		return
	}

	srClient, err := sr.NewClient(sr.URLs(app.cfg.Broker.SchemaRegistryURLs...))
	if err != nil {
		app.fallDown(op, err)
	}
	schemaCreater := schema.NewSchemaCreater(srClient)

	requestSS := app.cfg.Broker.Topics.OrdersRequest + "-value"
	requestSerde, err := schema.NewSerdeOrderRequestV1(
		app.ctx,
		schema.SubjectOpt(requestSS),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	responseSS := app.cfg.Broker.Topics.OrdersResponse + "-value"
	responseSerde, err := schema.NewSerdeOrderResponseV1(
		app.ctx,
		schema.SubjectOpt(responseSS),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	brokerCfg := broker.Config{
		SeedBrokers:    app.cfg.Broker.SeedBrokers,
		RequestTopic:   app.cfg.Broker.Topics.OrdersRequest,
		ResponseTopic:  app.cfg.Broker.Topics.OrdersResponse,
		ResponseGroup:  app.cfg.Broker.ResponseGroup,
		RequestTimeout: app.cfg.Broker.RequestTimeout,
	}
	if t := app.cfg.Broker.TLS; t.Enabled() {
		brokerCfg.TLS = adapter.MakeTLSConfig(t.CACert, t.ClientCert, t.ClientKey)
	}

	bridge := broker.NewOrderBridge(brokerCfg, requestSerde, responseSerde)

	if err := bridge.Connect(app.ctx); err != nil {
		app.fallDown(op, err)
	}
	app.bridge = bridge
}

func (app *App) initServices() {
	var submitter port.OrderSubmitter = app.gateway
	if app.bridge != nil {
		submitter = app.bridge
	}

	app.services.orders = service.NewOrderService(
		app.gateway, submitter,
		app.repos.products, app.repos.customers, app.repos.orders,
	)
	app.services.sync = service.NewSyncService(app.gateway, app.repos.products)
	app.services.imports = service.NewImportService(
		app.cfg.Import.Path, service.AcceptPartial, app.repos.products,
	)
	app.services.customers = service.NewCustomerService(
		app.repos.customers, app.repos.orders,
	)
	app.services.products = service.NewProductService(
		app.gateway, app.repos.products,
	)
}

func (app *App) initHTTPServer() {
	mux := http.NewServeMux()
	httphandler.RegisterOrders(
		mux,
		app.services.orders, app.services.orders,
		app.services.orders, app.services.orders,
	)
	httphandler.RegisterProducts(
		mux, app.services.products, app.services.sync, app.services.products,
	)
	httphandler.RegisterCustomers(mux, app.services.customers)
	httphandler.RegisterImports(mux, app.services.imports)

	handler := httphandler.AllowCORS(httphandler.AllowJSON(mux))
	app.httpServer = httphandler.NewHTTPServer(httphandler.ServerConfig{
		Addr:              app.cfg.HTTPServer.Addr,
		HandlerTimeout:    app.cfg.HTTPServer.HandlerTimeout,
		ReadHeaderTimeout: app.cfg.HTTPServer.ReadHeaderTimeout,
		IdleTimeout:       app.cfg.HTTPServer.IdleTimeout,
	}, handler)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)
	if app.bridge != nil {
		go app.bridge.Run(app.ctx)
	}

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	if app.bridge != nil {
		app.bridge.Close()
	}
	app.sqlDB.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
