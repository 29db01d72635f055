// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具

package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ZSC714725/xrecord/internal/ffmpeg/skills"
	"github.com/ZSC714725/xrecord/internal/logger"
	"github.com/ZSC714725/xrecord/internal/pipeline"
)

// Handler holds dependencies
type Handler struct {
	state  *pipeline.State
	skills skills.Skills
}

// NewHandler creates API handler
func NewHandler(state *pipeline.State, sk skills.Skills) *Handler {
	return &Handler{state: state, skills: sk}
}

// GetStatus GET /api/v1/status
func (h *Handler) GetStatus(c *gin.Context) {
	st := h.state.Status()

	resp := StatusResponse{
		ID:        st.ID,
		State:     st.Phase,
		Elapsed:   st.Elapsed.Seconds(),
		Duration:  st.Total.Seconds(),
		CPU:       st.CPU,
		Memory:    st.Memory,
		Output:    st.Output,
		StartedAt: st.StartedAt.Unix(),
	}
	if st.Total > 0 {
		pct := st.Elapsed.Seconds() / st.Total.Seconds() * 100
		if pct > 100 {
			pct = 100
		}
		resp.Progress = pct
	}
	if st.Phase == pipeline.PhaseDone {
		resp.Progress = 100
	}

	c.JSON(http.StatusOK, resp)
}

// Skills GET /api/v1/skills
func (h *Handler) Skills(c *gin.Context) {
	c.JSON(http.StatusOK, skillsToAPI(h.skills))
}

// Stop POST /api/v1/stop
//
// 与 SIGINT 相同：录制阶段结束录制，转码阶段中止任务
func (h *Handler) Stop(c *gin.Context) {
	h.state.Stop()
	c.JSON(http.StatusOK, "OK")
}

// Router builds the gin engine with all routes.
func Router(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), cors.Default())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/status", h.GetStatus)
		v1.GET("/skills", h.Skills)
		v1.POST("/stop", h.Stop)
	}
	return r
}

// Serve starts the control server in the background. The returned
// func shuts it down.
func Serve(bind string, h *Handler, log logger.Logger) (func(), error) {
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{Handler: Router(h)}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error("control api: %v", err)
		}
	}()
	log.Info("control api listening on %s", ln.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}
