package webserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/pprof"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vendora/vendora/config"
	"github.com/vendora/vendora/internal/ledger"
)

// Context keys injected into every request.
const (
	ContextDBKey     = "vendora_db"
	ContextLedgerKey = "vendora_ledger"
	ContextConfigKey = "vendora_config"
)

type WebServer struct {
	cfg   *config.AppConfig
	root  *echo.Echo
	api   *echo.Group
	store *echo.Group
	pub   *echo.Group
}

var server *WebServer

// Init builds the echo server: a public group for the storefront and auth,
// and a JWT protected /api group for the merchant admin panel. The database
// handle and the ledger are injected into the request context so handlers
// stay free of globals.
func Init(cfg *config.AppConfig, db *gorm.DB, ldg *ledger.Ledger) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextDBKey, db)
			c.Set(ContextLedgerKey, ldg)
			c.Set(ContextConfigKey, cfg)
			return next(c)
		}
	})

	api := e.Group("/api")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.Web.JwtSecret),
	}))

	// Storefront routes that require a logged in customer share the JWT
	// secret but live under their own group so the admin /api stays separate.
	store := e.Group("/store")
	store.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.Web.JwtSecret),
	}))

	pub := e.Group("")

	if cfg.System.Debug {
		pprof.Register(e)
	}

	server = &WebServer{cfg: cfg, root: e, api: api, store: store, pub: pub}
	return server
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			req := c.Request()
			res := c.Response()
			zap.L().Debug("http request",
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote", c.RealIP()),
			)
			return err
		}
	}
}

// ApiGET registers a JWT protected admin route.
func ApiGET(path string, h echo.HandlerFunc)    { server.api.GET(path, h) }
func ApiPOST(path string, h echo.HandlerFunc)   { server.api.POST(path, h) }
func ApiPUT(path string, h echo.HandlerFunc)    { server.api.PUT(path, h) }
func ApiDELETE(path string, h echo.HandlerFunc) { server.api.DELETE(path, h) }

// StoreGET registers a storefront route that requires a customer token.
func StoreGET(path string, h echo.HandlerFunc)  { server.store.GET(path, h) }
func StorePOST(path string, h echo.HandlerFunc) { server.store.POST(path, h) }

// PubGET registers a public storefront route.
func PubGET(path string, h echo.HandlerFunc)  { server.pub.GET(path, h) }
func PubPOST(path string, h echo.HandlerFunc) { server.pub.POST(path, h) }

// Start blocks serving HTTP until Shutdown is called.
func (s *WebServer) Start() error {
	zap.L().Info("admin web server starting", zap.String("addr", s.cfg.Web.Addr()))
	err := s.root.Start(s.cfg.Web.Addr())
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *WebServer) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}
