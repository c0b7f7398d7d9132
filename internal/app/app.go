package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kegliz/qcec/internal/config"
	"github.com/kegliz/qcec/internal/logger"
	"github.com/kegliz/qcec/internal/server/router"

	"github.com/kegliz/qcec/internal/server"
)

type (
	ServerOptions struct {
		C       *config.Configuration
		Debug   bool
		Version string
	}

	appServer struct {
		logger  *logger.Logger
		router  *router.Router
		cfg     *config.Configuration
		version string
	}

	appServerOptions struct {
		logger  *logger.Logger
		router  *router.Router
		cfg     *config.Configuration
		version string
	}
)

// newAppServer creates a new appServer.
func newAppServer(options appServerOptions) *appServer {
	a := &appServer{
		logger:  options.logger,
		router:  options.router,
		cfg:     options.cfg,
		version: options.version,
	}
	a.router.SetRoutes(a.routes())
	return a
}

// Listen implements server.Server.
func (a *appServer) Listen(port int, localOnly bool) error {
	a.logger.Debug().Str("version", a.version).Msg("debug qcec server")
	a.logger.Info().
		Int("port", port).
		Bool("localOnly", localOnly).
		Msg("Starting qcec verification service")
	return a.router.Start(port, localOnly)
}

// Shutdown implements server.Server.
func (a *appServer) Shutdown(ctx context.Context) error {
	return a.router.Shutdown(ctx)
}

// NewServer wires a logger, router and the shared manager Configuration
// into an appServer.
func NewServer(options ServerOptions) (server.Server, error) {
	l, r := server.NewLoggerAndRouter(server.EngineOptions{
		Debug: options.Debug,
	})
	cfg := options.C
	if cfg == nil {
		cfg = config.Default()
	}
	app := newAppServer(appServerOptions{
		logger:  l,
		router:  r,
		cfg:     cfg,
		version: options.Version,
	})

	return app, nil
}

func (a *appServer) getLoggerFromContext(c *gin.Context) (*logger.Logger, error) {
	if loggerInstance, ok := c.Get("logger"); ok {
		if loggerInstance, ok := loggerInstance.(*logger.Logger); ok {
			return loggerInstance, nil
		}
	}
	err := errors.New("logger not found in context")
	a.logger.Error().Err(err).Send()
	c.String(http.StatusInternalServerError, internalServerErrorMsg)
	return nil, err
}
