package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/orbital/internal/logger"
	"github.com/samcharles93/orbital/internal/system"
	"github.com/samcharles93/orbital/pkg/orbital"
)

type Server struct {
	store *SessionStore
	log   logger.Logger
	clock func() time.Time
}

func NewServer(store *SessionStore, log logger.Logger) *Server {
	if store == nil {
		store = NewSessionStore(StoreConfig{Device: "host"})
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		store: store,
		log:   log,
		clock: time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/contexts", s.handleCreate)
	e.GET("/v1/contexts/:id", s.handleGet)
	e.DELETE("/v1/contexts/:id", s.handleDelete)
	e.PUT("/v1/contexts/:id/points", s.handleSetPoints)
	e.POST("/v1/contexts/:id/touch", s.handleTouch)
	e.GET("/v1/contexts/:id/arrays/:kind", s.handleArray)
	e.POST("/v1/contexts/:id/mo/rescale", s.handleRescale)
	e.POST("/v1/contexts/:id/mo/select", s.handleSelect)
}

// handleCreate accepts a system document as JSON, or as YAML when the
// request says so.
func (s *Server) handleCreate(c *echo.Context) error {
	format := system.JSON
	if ct := c.Request().Header.Get(echo.HeaderContentType); strings.Contains(ct, "yaml") {
		format = system.YAML
	}
	doc, err := system.Decode(c.Request().Body, format)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	sess, err := s.store.Create(doc, s.clock())
	if err != nil {
		return writeFailure(c, err, "")
	}
	s.log.Info("context created", "id", sess.ID().String(), "name", sess.Name, "device", sess.Device)
	var status ContextStatus
	_ = sess.Do(func(ctx *orbital.Context) error {
		status = describe(sess, ctx)
		return nil
	})
	return c.JSON(http.StatusOK, status)
}

func (s *Server) handleGet(c *echo.Context) error {
	sess, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "context not found")
	}
	var status ContextStatus
	_ = sess.Do(func(ctx *orbital.Context) error {
		status = describe(sess, ctx)
		return nil
	})
	return c.JSON(http.StatusOK, status)
}

func (s *Server) handleDelete(c *echo.Context) error {
	id := c.Param("id")
	if err := s.store.Delete(id); err != nil {
		return writeFailure(c, err, "")
	}
	s.log.Info("context destroyed", "id", id)
	return c.JSON(http.StatusOK, DeleteResponse{
		ID:      id,
		Object:  "context",
		Deleted: true,
	})
}

func (s *Server) handleSetPoints(c *echo.Context) error {
	sess, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "context not found")
	}
	req, err := decodeJSON[PointsRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, "invalid JSON body")
	}
	if len(req.Points) == 0 {
		return writeFailure(c, newInvalidRequest("points must not be empty"), "points")
	}
	coord, err := system.Flatten("points", req.Points, 3)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), "points", "")
	}
	return s.mutate(c, sess, "points", func(ctx *orbital.Context) error {
		return ctx.SetPoints(orbital.Normal, coord)
	})
}

func (s *Server) handleTouch(c *echo.Context) error {
	sess, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "context not found")
	}
	return s.mutate(c, sess, "", func(ctx *orbital.Context) error { return ctx.Touch() })
}

func (s *Server) handleRescale(c *echo.Context) error {
	sess, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "context not found")
	}
	req, err := decodeJSON[RescaleRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, "invalid JSON body")
	}
	if req.Factor == nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "factor is required", "factor", "")
	}
	return s.mutate(c, sess, "factor", func(ctx *orbital.Context) error {
		return ctx.RescaleMO(*req.Factor)
	})
}

func (s *Server) handleSelect(c *echo.Context) error {
	sess, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "context not found")
	}
	req, err := decodeJSON[SelectRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, "invalid JSON body")
	}
	return s.mutate(c, sess, "keep", func(ctx *orbital.Context) error {
		return ctx.SelectMO(req.Keep)
	})
}

// mutate applies fn and answers with the resulting status.
func (s *Server) mutate(c *echo.Context, sess *Session, param string, fn func(*orbital.Context) error) error {
	var status ContextStatus
	err := sess.Do(func(ctx *orbital.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		status = describe(sess, ctx)
		return nil
	})
	if err != nil {
		return writeFailure(c, err, param)
	}
	return c.JSON(http.StatusOK, status)
}

func (s *Server) handleArray(c *echo.Context) error {
	sess, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "context not found")
	}
	kind, err := orbital.ParseKind(c.Param("kind"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), "kind", "")
	}
	var resp ArrayResponse
	err = sess.Do(func(ctx *orbital.Context) error {
		dims, err := ctx.Shape(kind)
		if err != nil {
			return err
		}
		n := 1
		for _, d := range dims {
			n *= d
		}
		data := make([]float64, n)
		if err := ctx.GetHost(kind, data); err != nil {
			return err
		}
		resp = ArrayResponse{
			ID:     sess.ID().String(),
			Object: "array",
			Kind:   kind.String(),
			Shape:  dims,
			Data:   data,
		}
		return nil
	})
	if err != nil {
		return writeFailure(c, err, "")
	}
	return c.JSON(http.StatusOK, resp)
}

func describe(sess *Session, ctx *orbital.Context) ContextStatus {
	st := ContextStatus{
		ID:        sess.ID().String(),
		Object:    "context",
		Name:      sess.Name,
		Device:    sess.Device,
		CreatedAt: sess.Created.Unix(),
		Date:      ctx.Date(),
		Groups:    make(map[string]bool),
		Arrays:    make(map[string]ArrayStatus),
	}
	for _, g := range orbital.Groups() {
		st.Groups[g.String()] = ctx.Provided(g)
	}
	for _, k := range orbital.Kinds() {
		st.Arrays[k.String()] = ArrayStatus{
			Fresh:        ctx.Fresh(k),
			Computations: ctx.Computations(k),
		}
	}
	st.AONum, _ = ctx.GetAONum()
	st.MONum, _ = ctx.GetMONum()
	st.PointNum, _ = ctx.GetPointNum()
	return st
}
