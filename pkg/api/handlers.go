package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ja7ad/taskmon/pkg/process"
	"github.com/ja7ad/taskmon/pkg/procsig"
)

func errorBody(msg string) gin.H { return gin.H{"error": msg} }

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getMetrics(c *gin.Context) {
	snap, ok := s.metrics.Latest()
	if !ok {
		var err error
		if snap, err = s.metrics.Sample(); err != nil {
			s.log.Error("sample on demand", "err", err)
			c.JSON(http.StatusServiceUnavailable, errorBody(err.Error()))
			return
		}
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) streamMetrics(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug("websocket upgrade", "err", err)
		return
	}
	var initial []byte
	if snap, ok := s.metrics.Latest(); ok {
		initial, _ = json.Marshal(snap)
	}
	s.hub.serve(conn, initial)
}

type processQuery struct {
	Search  string `form:"search" binding:"max=256"`
	SortBy  string `form:"sort_by" binding:"omitempty,oneof=cpu mem pid user command"`
	SortDir string `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
	Limit   *int   `form:"limit" binding:"omitempty,min=0,max=100000"`
	Offset  int    `form:"offset" binding:"min=0"`
}

func (pq processQuery) query() (process.Query, error) {
	key, err := process.ParseSortKey(pq.SortBy)
	if err != nil {
		return process.Query{}, err
	}
	dir, err := process.ParseSortDir(pq.SortDir)
	if err != nil {
		return process.Query{}, err
	}
	return process.Query{Search: pq.Search, SortBy: key, SortDir: dir, Limit: pq.Limit, Offset: pq.Offset}, nil
}

func (s *Server) listProcesses(c *gin.Context) {
	var q *process.Query
	if c.Request.URL.RawQuery != "" {
		var pq processQuery
		if err := c.ShouldBindQuery(&pq); err != nil {
			c.JSON(http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		parsed, err := pq.query()
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		q = &parsed
	}

	rows, err := s.procs.List(q)
	if err != nil {
		s.log.Error("list processes", "err", err)
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"processes": rows, "count": len(rows)})
}

type signalRequest struct {
	Signal string `json:"signal" binding:"required"`
}

func (s *Server) signalProcess(c *gin.Context) {
	pid, err := strconv.Atoi(c.Param("pid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("pid must be an integer"))
		return
	}
	var req signalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	kind, err := procsig.ParseKind(req.Signal)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	if err := s.signals.Send(pid, kind); err != nil {
		c.JSON(signalStatus(err), errorBody(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

func signalStatus(err error) int {
	switch {
	case errors.Is(err, procsig.ErrInvalidTarget), errors.Is(err, procsig.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, procsig.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, procsig.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
