package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/dashgrid/pkg/board"
	"github.com/matzehuels/dashgrid/pkg/config"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/layout"
	"github.com/matzehuels/dashgrid/pkg/pipeline"
	"github.com/matzehuels/dashgrid/pkg/render"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// createBoardRequest is the body of POST /boards. A nil config uses
// config.Default().
type createBoardRequest struct {
	Name   string         `json:"name,omitempty"`
	Config *config.Board  `json:"config,omitempty"`
	Layout *layout.Layout `json:"layout,omitempty"`
}

// addWidgetRequest is the body of POST .../widgets. X and Y must be given
// together; without them the target chooses the position.
type addWidgetRequest struct {
	ID       string         `json:"id,omitempty"`
	Type     string         `json:"type,omitempty"`
	Width    int            `json:"width,omitempty"`
	Height   int            `json:"height,omitempty"`
	X        *int           `json:"x,omitempty"`
	Y        *int           `json:"y,omitempty"`
	Fixed    bool           `json:"fixed,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// updateWidgetRequest is the body of PATCH .../widgets/{wid}. Omitted
// fields keep their current value. A Target different from the URL key
// transfers the widget.
type updateWidgetRequest struct {
	X      *int   `json:"x,omitempty"`
	Y      *int   `json:"y,omitempty"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
	Target string `json:"target,omitempty"`
}

// widgetView is a widget as returned by the API.
type widgetView struct {
	ID       string         `json:"id"`
	Type     string         `json:"type,omitempty"`
	Target   string         `json:"target"`
	X        int            `json:"x"`
	Y        int            `json:"y"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Fixed    bool           `json:"fixed,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func viewOf(target string, w *board.Widget) widgetView {
	r := w.Bounds()
	return widgetView{
		ID:       w.ID,
		Type:     w.Type,
		Target:   target,
		X:        r.X,
		Y:        r.Y,
		Width:    r.Width,
		Height:   r.Height,
		Fixed:    !w.Draggable(),
		Metadata: w.Metadata,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if docs == nil {
		docs = []*store.Document{}
	}
	s.writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var req createBoardRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	cfg := config.Default()
	if req.Config != nil {
		cfg = *req.Config
	}
	if req.Name != "" {
		cfg.Name = req.Name
	}
	var l layout.Layout
	if req.Layout != nil {
		l = *req.Layout
	}

	// Loading validates the config and proves the layout fits.
	b, err := board.Load(cfg, l)
	if err != nil {
		s.writeError(w, err)
		return
	}
	b.Logger = s.logger
	doc := store.NewDocument(cfg, b.Export())
	if err := s.store.Put(r.Context(), doc); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("board created", "id", doc.ID, "name", doc.Name)
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mutate runs fn on the board and target named by the URL and stores the
// result if fn succeeds.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, status int, fn func(b *board.Board, t *board.Target) (any, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := r.Context()
	doc, err := s.store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	b, err := doc.Board()
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "rebuild board %s", doc.ID))
		return
	}
	b.Logger = s.logger
	t, err := b.Target(chi.URLParam(r, "key"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	body, err := fn(b, t)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc.Update(b)
	if err := s.store.Put(ctx, doc); err != nil {
		s.writeError(w, err)
		return
	}
	if body == nil {
		w.WriteHeader(status)
		return
	}
	s.writeJSON(w, status, body)
}

func (s *Server) handleAddWidget(w http.ResponseWriter, r *http.Request) {
	var req addWidgetRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if (req.X == nil) != (req.Y == nil) {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "x and y must be given together"))
		return
	}
	spec := board.Spec{
		ID:       req.ID,
		Type:     req.Type,
		Width:    req.Width,
		Height:   req.Height,
		Fixed:    req.Fixed,
		Metadata: req.Metadata,
	}
	if req.X != nil {
		spec.Position = board.At(*req.X, *req.Y)
	}

	s.mutate(w, r, http.StatusCreated, func(b *board.Board, t *board.Target) (any, error) {
		wd, err := t.Add(spec)
		if err != nil {
			return nil, err
		}
		return viewOf(t.Key(), wd), nil
	})
}

func (s *Server) handleUpdateWidget(w http.ResponseWriter, r *http.Request) {
	var req updateWidgetRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	id := chi.URLParam(r, "wid")

	s.mutate(w, r, http.StatusOK, func(b *board.Board, t *board.Target) (any, error) {
		wd, ok := t.Widget(id)
		if !ok {
			return nil, errors.New(errors.ErrCodeWidgetNotFound, "widget %s not found on target %s", id, t.Key())
		}
		cur := wd.Bounds()
		x, y := valueOr(req.X, cur.X), valueOr(req.Y, cur.Y)

		if req.Target != "" && req.Target != t.Key() {
			if err := b.Transfer(id, t.Key(), req.Target, x, y); err != nil {
				return nil, err
			}
			dst, _ := b.Target(req.Target)
			t = dst
		} else if req.X != nil || req.Y != nil {
			if err := t.Move(id, x, y); err != nil {
				return nil, err
			}
		}
		if req.Width != nil || req.Height != nil {
			cur = wd.Bounds()
			if err := t.Resize(id, valueOr(req.Width, cur.Width), valueOr(req.Height, cur.Height)); err != nil {
				return nil, err
			}
		}
		return viewOf(t.Key(), wd), nil
	})
}

func (s *Server) handleDeleteWidget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "wid")
	s.mutate(w, r, http.StatusNoContent, func(b *board.Board, t *board.Target) (any, error) {
		return nil, t.Delete(id)
	})
}

// contentTypes maps render formats to response content types.
var contentTypes = map[string]string{
	render.FormatText: "text/plain; charset=utf-8",
	render.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	render.FormatSVG:  "image/svg+xml",
	render.FormatPDF:  "application/pdf",
	render.FormatPNG:  "image/png",
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := strings.TrimSpace(q.Get("format"))
	if format == "" {
		format = pipeline.DefaultFormat
	}
	opts := pipeline.Options{
		Formats: []string{format},
		Target:  q.Get("target"),
		Styled:  q.Get("styled") == "true",
	}
	if err := opts.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	b, err := doc.Board()
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "rebuild board %s", doc.ID))
		return
	}
	b.Logger = s.logger

	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), b, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	cacheStatus := "MISS"
	if hit {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func valueOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
