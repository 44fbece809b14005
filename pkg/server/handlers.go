package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matzehuels/starsky/pkg/buildinfo"
	"github.com/matzehuels/starsky/pkg/catalog"
	"github.com/matzehuels/starsky/pkg/errors"
	"github.com/matzehuels/starsky/pkg/observability"
	"github.com/matzehuels/starsky/pkg/pipeline"
)

// errorBody is the JSON error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.serveFormat(w, r, pipeline.FormatHTML, "text/html; charset=utf-8")
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.serveFormat(w, r, pipeline.FormatSVG, "image/svg+xml")
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	s.serveFormat(w, r, pipeline.FormatPNG, "image/png")
}

func (s *Server) handleSky(w http.ResponseWriter, r *http.Request) {
	s.serveFormat(w, r, pipeline.FormatJSON, "application/json")
}

func (s *Server) serveFormat(w http.ResponseWriter, r *http.Request, format, contentType string) {
	opts, err := s.options(r.URL.Query(), format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if format == pipeline.FormatHTML {
		opts.RegenerateURL = regenerateURL(r.URL.Query())
	}

	res, err := s.runner.Execute(r.Context(), s.catalog(r.Context()), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Starsky-Seed", strconv.FormatUint(res.Sky.Seed, 10))
	w.Header().Set("X-Starsky-Run", res.Sky.RunID)
	if opts.Pinned() {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	_, _ = w.Write(res.Artifacts[format])
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog(r.Context()).Document())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

func (s *Server) catalog(ctx context.Context) *catalog.Catalog {
	c, info := s.runner.LoadCatalog(ctx, s.source, false)
	if info.Fallback && s.source != nil {
		s.logger.Warn("serving default catalog", "source", info.Source)
	}
	return c
}

// options applies query overrides to the base options and validates them.
func (s *Server) options(q url.Values, format string) (pipeline.Options, error) {
	opts := s.base
	opts.Formats = []string{format}

	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "seed must be a non-negative integer, got %q", v)
		}
		opts.Seed = seed
	}
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"margin", &opts.Margin},
		{"scale", &opts.Scale},
	} {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %q", f.name, v)
		}
		*f.dst = n
	}
	for _, f := range []struct {
		name string
		dst  *bool
	}{
		{"relaxed", &opts.Relaxed},
		{"popups", &opts.Popups},
		{"meteors", &opts.Meteors},
	} {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", f.name, v)
		}
		*f.dst = b
	}
	if v := q.Get("strategy"); v != "" {
		opts.Strategy = v
	}

	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// regenerateURL keeps every parameter except the seed, so the button
// yields a new sky with the same settings.
func regenerateURL(q url.Values) string {
	next := url.Values{}
	for k, v := range q {
		if k != "seed" {
			next[k] = v
		}
	}
	if len(next) == 0 {
		return "/"
	}
	return "/?" + next.Encode()
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	switch {
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	case r.Context().Err() != nil:
		status = http.StatusServiceUnavailable
		code = errors.ErrCodeTimeout
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}

	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Code: string(code), Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
