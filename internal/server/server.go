// Package server exposes the graph builder through a small browser upload UI.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/hessq/internal/common"
	"github.com/Veraticus/hessq/internal/demo"
	"github.com/Veraticus/hessq/internal/graph"
	"github.com/Veraticus/hessq/internal/ingest"
	"github.com/Veraticus/hessq/internal/model"
	"github.com/Veraticus/hessq/internal/render"
	"github.com/Veraticus/hessq/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/valyala/fasthttp"
)

// shutdownTimeout bounds graceful shutdown once the context is canceled.
const shutdownTimeout = 5 * time.Second

// Config configures the server.
type Config struct {
	Version     string
	Render      render.Options
	Graph       graph.Config
	MaxUploadMB int
	MaxRows     int
	AccessLog   bool
}

// Server serves the upload form and renders uploaded CSVs.
type Server struct {
	app      *fiber.App
	builder  *graph.Builder
	renderer *render.Renderer
	parser   *ingest.Parser
	history  service.Storage
	version  string
	maxRows  int
}

// New creates a server. history may be nil, in which case no runs are recorded.
func New(cfg Config, history service.Storage) (*Server, error) {
	builder, err := graph.NewBuilder(cfg.Graph)
	if err != nil {
		return nil, err
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("%w: max upload size must be positive", common.ErrInvalidConfig)
	}
	if cfg.MaxRows <= 0 {
		return nil, fmt.Errorf("%w: max rows must be positive", common.ErrInvalidConfig)
	}

	s := &Server{
		builder:  builder,
		renderer: render.NewRenderer(cfg.Render),
		parser:   ingest.NewParser(),
		history:  history,
		version:  cfg.Version,
		maxRows:  cfg.MaxRows,
	}

	app := fiber.New(fiber.Config{
		AppName:               "hessq",
		BodyLimit:             cfg.MaxUploadMB * 1024 * 1024,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	s.app = app
	s.routes()

	return s, nil
}

func (s *Server) routes() {
	s.app.Get("/", s.handleIndex)
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/graph/default.png", s.handleDefaultGraph)
	s.app.Post("/graph", s.handleGraphImage)
	s.app.Post("/api/graph", s.handleGraphJSON)
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()

	slog.Info("Server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(indexPage)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	history := "disabled"
	if s.history != nil {
		history = "connected"
		if err := s.history.Healthy(c.UserContext()); err != nil {
			history = "unavailable"
		}
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": s.version,
		"services": fiber.Map{
			"history": history,
		},
	})
}

func (s *Server) handleDefaultGraph(c *fiber.Ctx) error {
	return s.respondImage(c, model.SourceDefault, demo.DefaultTransactions(), render.FormatPNG)
}

func (s *Server) handleGraphImage(c *fiber.Ctx) error {
	format, err := render.ParseFormat(c.Query("format", string(render.FormatPNG)))
	if err != nil || format == render.FormatJSON {
		return BadRequest(c, "format must be png or svg")
	}

	source, txns, err := s.loadUpload(c)
	if err != nil {
		return BadRequest(c, common.UserMessage(err))
	}
	return s.respondImage(c, source, txns, format)
}

func (s *Server) handleGraphJSON(c *fiber.Ctx) error {
	source, txns, err := s.loadUpload(c)
	if err != nil {
		return BadRequest(c, common.UserMessage(err))
	}

	g, err := s.build(c, source, txns)
	if err != nil {
		return s.buildError(c, err)
	}

	return c.JSON(render.ToJSON(g))
}

func (s *Server) respondImage(c *fiber.Ctx, source string, txns []model.Transaction, format render.Format) error {
	g, err := s.build(c, source, txns)
	if err != nil {
		return s.buildError(c, err)
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, g, format); err != nil {
		common.LogError(c.UserContext(), err, "Failed to render graph", common.Fields{"source": source})
		return ServerError(c, "Failed to render graph")
	}

	c.Set(fiber.HeaderContentType, render.ContentType(format))
	return c.Send(buf.Bytes())
}

// loadUpload returns the transactions of the uploaded "file" field, or the default dataset
// when the request carries no file.
func (s *Server) loadUpload(c *fiber.Ctx) (string, []model.Transaction, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return model.SourceDefault, demo.DefaultTransactions(), nil
		}
		return "", nil, common.NewUserError("Could not read upload", err)
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, common.NewUserError("Could not read upload", err)
	}
	defer func() { _ = f.Close() }()

	txns, err := s.parser.ParseFile(c.UserContext(), f)
	if err != nil {
		return "", nil, common.NewUserError("Invalid transaction CSV", err)
	}
	if len(txns) > s.maxRows {
		err := fmt.Errorf("%w: %d transactions exceeds the limit of %d", common.ErrInvalidInput, len(txns), s.maxRows)
		return "", nil, common.NewUserError("Upload too large", err)
	}

	return "upload:" + fh.Filename, txns, nil
}

func (s *Server) build(c *fiber.Ctx, source string, txns []model.Transaction) (*graph.Graph, error) {
	ctx := c.UserContext()
	g, err := s.builder.Build(ctx, txns)
	if err != nil {
		return nil, err
	}
	s.recordRun(ctx, source, g)
	return g, nil
}

func (s *Server) buildError(c *fiber.Ctx, err error) error {
	if errors.Is(err, graph.ErrDuplicateNode) || errors.Is(err, graph.ErrEmptyNodeID) {
		return BadRequest(c, err.Error())
	}
	common.LogError(c.UserContext(), err, "Failed to build graph", nil)
	return ServerError(c, "Failed to build graph")
}

// recordRun stores the outcome in the history when enabled. Failures are logged only; a
// broken history must not break rendering.
func (s *Server) recordRun(ctx context.Context, source string, g *graph.Graph) {
	if s.history == nil {
		return
	}
	run := g.Record(source)
	if err := s.history.SaveRun(ctx, run); err != nil {
		common.LogError(ctx, err, "Failed to record run", common.Fields{"source": source})
	}
}
