package application

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/fieldops/salesrecon/pkg/eventbus"
)

// Controller registers a group of routes under one prefix.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

type Application interface {
	Pool() *pgxpool.Pool
	EventBus() eventbus.EventBus
	Logger() *logrus.Logger
	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
}

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	EventBus eventbus.EventBus
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:     opts.Pool,
		eventBus: opts.EventBus,
		logger:   opts.Logger,
	}
}

type application struct {
	pool        *pgxpool.Pool
	eventBus    eventbus.EventBus
	logger      *logrus.Logger
	controllers []Controller
	middleware  []mux.MiddlewareFunc
}

func (a *application) Pool() *pgxpool.Pool              { return a.pool }
func (a *application) EventBus() eventbus.EventBus      { return a.eventBus }
func (a *application) Logger() *logrus.Logger           { return a.logger }
func (a *application) Controllers() []Controller        { return a.controllers }
func (a *application) Middleware() []mux.MiddlewareFunc { return a.middleware }

func (a *application) RegisterControllers(controllers ...Controller) {
	a.controllers = append(a.controllers, controllers...)
}

func (a *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	a.middleware = append(a.middleware, middleware...)
}
