package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/meeting"
	"github.com/collegia/collegia/core/notification"
	"github.com/collegia/collegia/core/schedule"
	"github.com/collegia/collegia/core/user"
)

type (
	ServerDeps struct {
		Conf        *core.Config
		Logger      core.Logger
		UserSvc     *user.Service
		ScheduleSvc *schedule.Service
		MeetingSvc  *meeting.Service
		NotifSvc    *notification.Service
		Validate    *validator.Validate
		Translator  ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	jwt := middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    jwtContextKey,
		Claims:        new(Claims),
	})

	v1 := s.app.Group("/v1")
	registerUserAPI(v1, jwt, &s.deps)
	registerScheduleAPI(v1, jwt, &s.deps)
	registerMeetingAPI(v1, jwt, &s.deps)
	registerNotificationAPI(v1, jwt, &s.deps)
}

// Start runs the listener; listen errors land on Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errs }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown requests a graceful stop, as if SIGTERM was received.
func (s *Server) SignalShutdown() { s.shutdown <- syscall.SIGTERM }

func (s *Server) Shutdown(ctx context.Context) error { return s.app.Shutdown(ctx) }

func (s *Server) Close() error { return s.app.Close() }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Collegia API!")
}
