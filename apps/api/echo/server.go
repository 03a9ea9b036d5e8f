package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/account"
	"github.com/littleoaks/backend/core/attendance"
	"github.com/littleoaks/backend/core/billing"
	"github.com/littleoaks/backend/core/child"
	"github.com/littleoaks/backend/core/health"
	"github.com/littleoaks/backend/core/notification"
	"github.com/littleoaks/backend/core/schedule"
	identitysvc "github.com/littleoaks/backend/services/identity"
)

type (
	Deps struct {
		Conf   *core.Config
		Logger core.Logger

		Identity      *identitysvc.Service
		AccountSvc    *account.Service
		ChildSvc      *child.Service
		AttendanceSvc *attendance.Service
		HealthSvc     *health.Service
		BillingSvc    *billing.Service
		ScheduleSvc   *schedule.Service
		NotifSvc      *notification.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		addr     string
		deps     *Deps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(addr string, deps *Deps) Server {
	s := &server{
		addr:     addr,
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf
	initJWTConfig(conf)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAuthAPI(v1, jwt, s.deps)
	registerChildAPI(v1, jwt, s.deps)
	registerAttendanceAPI(v1, jwt, s.deps)
	registerHealthAPI(v1, jwt, s.deps)
	registerBillingAPI(v1, jwt, s.deps)
	registerScheduleAPI(v1, jwt, s.deps)
	registerFeedAPI(v1, jwt, s.deps)
}

func (s *server) Start() {
	if err := s.app.Start(s.addr); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Errors() <-chan error { return s.errs }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) Shutdown(ctx context.Context) error { return s.app.Shutdown(ctx) }

func (s *server) Close() error { return s.app.Close() }

// signalShutdown initiates a graceful shutdown when an unrecoverable error is
// caught by the error handler.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Little Oaks API!")
}
