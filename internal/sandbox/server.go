package sandbox

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

//go:embed assets
var assets embed.FS

// Options configure the sandbox server.
type Options struct {
	ExtensionDirs []string
	ContainerPath string
	// EnginePath serves a real engine build when set.
	EnginePath string
}

func (o Options) sources() Sources {
	return Sources{ExtensionDirs: o.ExtensionDirs, ContainerPath: o.ContainerPath}
}

// Server serves the sandbox pages, the assembled container and the
// extension files. Descriptors are read on every request.
type Server struct {
	opts Options
	log  *zap.Logger
	e    *echo.Echo
}

// NewServer returns a server for opts. A nil logger discards output.
func NewServer(opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{opts: opts, log: log.Named("sandbox"), e: echo.New()}
	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Use(requestLogger(s.log))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.e.GET("/", s.asset("assets/libSandbox.html", echo.MIMETextHTMLCharsetUTF8))
	s.e.GET("/viewSandbox.html", s.asset("assets/viewSandbox.html", echo.MIMETextHTMLCharsetUTF8))
	s.e.GET("/extensionbridge/extensionbridge-child.js", s.asset("assets/extensionbridge-child.js", echo.MIMEApplicationJavaScriptCharsetUTF8))
	s.e.GET("/engine.js", s.engine)
	s.e.GET("/container.js", s.container)
	s.e.GET("/hosted/:extension/*", s.extensionFile(func(d *Descriptor) string { return "" }))
	s.e.GET("/extensionViews/:extension/*", s.extensionFile(func(d *Descriptor) string { return d.ViewBasePath }))
	s.e.GET("/api/extensions", s.extensions)
	s.e.POST("/container", s.saveContainer, DecodeJSON[Container]((*Container).Validate))
	s.e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.e }

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.log.Info("sandbox listening", zap.String("url", "http://"+addr+"/"))
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

func (s *Server) asset(name, contentType string) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := assets.ReadFile(name)
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, contentType, data)
	}
}

func (s *Server) engine(c echo.Context) error {
	if s.opts.EnginePath == "" {
		return s.asset("assets/engine.js", echo.MIMEApplicationJavaScriptCharsetUTF8)(c)
	}
	data, err := os.ReadFile(s.opts.EnginePath)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "engine: "+err.Error()).SetInternal(err)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJavaScriptCharsetUTF8, data)
}

func (s *Server) container(c echo.Context) error {
	body, err := BuildContainer(c.Request().Context(), s.opts.sources())
	if err != nil {
		s.log.Warn("container build failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Blob(http.StatusOK, echo.MIMEApplicationJavaScriptCharsetUTF8, body)
}

// extensionFile serves files of the named extension below the directory
// returned by base.
func (s *Server) extensionFile(base func(*Descriptor) string) echo.HandlerFunc {
	return func(c echo.Context) error {
		descriptors, err := LoadDescriptors(s.opts.ExtensionDirs)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
		}
		var d *Descriptor
		for _, candidate := range descriptors {
			if candidate.Name == c.Param("extension") {
				d = candidate
			}
		}
		if d == nil {
			return echo.NewHTTPError(http.StatusNotFound, "unknown extension "+c.Param("extension"))
		}
		rel, err := url.PathUnescape(c.Param("*"))
		if err != nil || !relativeInside(rel) || hidden(rel) {
			return echo.NewHTTPError(http.StatusForbidden, "invalid path")
		}
		root, err := filepath.Abs(filepath.Join(d.Dir, filepath.FromSlash(base(d))))
		if err != nil {
			return err
		}
		file := filepath.Join(root, filepath.FromSlash(path.Clean(rel)))
		if !strings.HasPrefix(file, root+string(filepath.Separator)) {
			return echo.NewHTTPError(http.StatusForbidden, "invalid path")
		}
		return c.File(file)
	}
}

// hidden reports whether rel names a dot file or lies below a dot
// directory such as .sandbox, which holds the local config and credentials.
func hidden(rel string) bool {
	for _, seg := range strings.Split(path.Clean(strings.ReplaceAll(rel, "\\", "/")), "/") {
		if strings.HasPrefix(seg, ".") && seg != "." {
			return true
		}
	}
	return false
}

// ViewLink points at one view of an extension.
type ViewLink struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName"`
	URL         string `json:"url"`
}

// ExtensionSummary describes one extension for the view sandbox page.
type ExtensionSummary struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	Version     string     `json:"version"`
	Views       []ViewLink `json:"views"`
}

func (s *Server) extensions(c echo.Context) error {
	descriptors, err := LoadDescriptors(s.opts.ExtensionDirs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
	out := make([]ExtensionSummary, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, summarize(d))
	}
	return c.JSON(http.StatusOK, out)
}

func summarize(d *Descriptor) ExtensionSummary {
	sum := ExtensionSummary{Name: d.Name, DisplayName: d.DisplayName, Version: d.Version, Views: []ViewLink{}}
	link := func(viewPath string) string {
		return "/extensionViews/" + d.Name + "/" + strings.TrimPrefix(path.Clean(viewPath), "/")
	}
	if d.Configuration != nil && d.Configuration.ViewPath != "" {
		sum.Views = append(sum.Views, ViewLink{Type: "configuration", DisplayName: "Extension Configuration", URL: link(d.Configuration.ViewPath)})
	}
	for _, typ := range ComponentTypes {
		for _, comp := range d.Components(typ) {
			if comp.ViewPath == "" {
				continue
			}
			sum.Views = append(sum.Views, ViewLink{Type: typ, Name: comp.Name, DisplayName: comp.DisplayName, URL: link(comp.ViewPath)})
		}
	}
	return sum
}

func (s *Server) saveContainer(c echo.Context) error {
	container, ok := Decoded[Container](c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "missing container")
	}
	if err := SaveContainer(s.opts.ContainerPath, container); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
	s.log.Info("container saved", zap.String("path", s.opts.ContainerPath))
	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

// requestLogger logs every request with its status and latency.
func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			log.Info("request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
			)
			return nil
		}
	}
}
