package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/danthegoodman1/relfetch/external"
	"github.com/danthegoodman1/relfetch/gologger"
	"github.com/danthegoodman1/relfetch/relation"
	"github.com/danthegoodman1/relfetch/utils"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

var logger = gologger.NewLogger()

type HTTPServer struct {
	Echo      *echo.Echo
	Relations Relations
	// Stores receive partitioned parquet exports
	Stores map[string]external.ObjectStore
}

type CustomValidator struct {
	validator *validator.Validate
}

func StartHTTPServer(conn *relation.Connection, stores map[string]external.ObjectStore) *HTTPServer {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", utils.GetEnvOrDefault("HTTP_PORT", "8080")))
	if err != nil {
		logger.Error().Err(err).Msg("error creating tcp listener, exiting")
		os.Exit(1)
	}
	s := newHTTPServer(&connRelations{conn: conn}, stores)

	s.Echo.Listener = listener
	go func() {
		logger.Info().Msg("starting h2c server on " + listener.Addr().String())
		err := s.Echo.StartH2CServer("", &http2.Server{})
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to start h2c server, exiting")
			os.Exit(1)
		}
	}()

	return s
}

func newHTTPServer(rels Relations, stores map[string]external.ObjectStore) *HTTPServer {
	s := &HTTPServer{
		Echo:      echo.New(),
		Relations: rels,
		Stores:    stores,
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.JSONSerializer = &utils.NoEscapeJSONSerializer{}

	s.Echo.Use(CreateReqContext)
	s.Echo.Use(LoggerMiddleware)
	s.Echo.Use(middleware.CORS())
	v := validator.New()
	if err := v.RegisterValidation("orderterm", validateOrderTerm); err != nil {
		panic(err)
	}
	s.Echo.Validator = &CustomValidator{validator: v}

	// technical - no auth
	s.Echo.GET("/hc", s.HealthCheck)

	s.Echo.POST("/fetch", ccHandler(s.FetchHandler))
	s.Echo.POST("/fetch1", ccHandler(s.Fetch1Handler))
	s.Echo.POST("/export.parquet", ccHandler(s.ExportParquetHandler))
	return s
}

// orderTerm is a plain attribute name (or KEY) with an optional direction
var orderTerm = regexp.MustCompile(`^\s*[A-Za-z_][A-Za-z0-9_]*(\s+(?i:ASC|DESC))?\s*$`)

func validateOrderTerm(fl validator.FieldLevel) bool {
	return orderTerm.MatchString(fl.Field().String())
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func ValidateRequest(c echo.Context, s interface{}) error {
	if err := c.Bind(s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(s); err != nil {
		return err
	}
	return nil
}

func (*HTTPServer) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	return err
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			// default handler
			c.Error(err)
		}
		stop := time.Since(start)
		logger := zerolog.Ctx(c.Request().Context())
		req := c.Request()
		res := c.Response()

		p := req.URL.Path
		if p == "" {
			p = "/"
		}

		cl := req.Header.Get(echo.HeaderContentLength)
		if cl == "" {
			cl = "0"
		}
		logger.Debug().Str("method", req.Method).Str("remote_ip", c.RealIP()).Str("req_uri", req.RequestURI).Str("handler_path", c.Path()).Str("path", p).Int("status", res.Status).Int64("latency_ns", int64(stop)).Str("protocol", req.Proto).Str("bytes_in", cl).Int64("bytes_out", res.Size).Msg("req received")
		return nil
	}
}
