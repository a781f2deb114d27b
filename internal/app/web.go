// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/relabs-tech/inertial_radar/internal/geo"
	"github.com/relabs-tech/inertial_radar/internal/navigator"
)

// StatusResponse is returned by GET /api/state and pushed on /ws.
type StatusResponse struct {
	Controller navigator.Snapshot `json:"controller"`
	View       NavState           `json:"view"`
}

// DestinationResponse describes the current destination.
type DestinationResponse struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	LatitudeE6  int32   `json:"lat_e6"`
	LongitudeE6 int32   `json:"lon_e6"`
}

type destinationRequest struct {
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
	LatE6 *int32   `json:"lat_e6"`
	LonE6 *int32   `json:"lon_e6"`
}

type geocodeRequest struct {
	Address string `json:"address" binding:"required"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// WebServer exposes the controller over HTTP and a websocket feed.
type WebServer struct {
	manager  *navigator.Manager
	view     *StateView
	geocoder Geocoder
	hub      *Hub
	logger   *zap.SugaredLogger
	engine   *gin.Engine
}

// NewWebServer builds the router. geocoder may be nil.
func NewWebServer(m *navigator.Manager, view *StateView, geocoder Geocoder, logger *zap.SugaredLogger) *WebServer {
	gin.SetMode(gin.ReleaseMode)
	w := &WebServer{
		manager:  m,
		view:     view,
		geocoder: geocoder,
		hub:      NewHub(logger),
		logger:   logger,
		engine:   gin.New(),
	}
	w.engine.Use(gin.Recovery())

	api := w.engine.Group("/api")
	api.GET("/state", w.getState)
	api.GET("/destination", w.getDestination)
	api.PUT("/destination", w.putDestination)
	api.DELETE("/destination", w.deleteDestination)
	api.POST("/destination/geocode", w.geocodeDestination)
	api.POST("/resume", w.resume)
	api.POST("/pause", w.pause)
	w.engine.GET("/ws", func(c *gin.Context) {
		w.hub.ServeWS(c.Writer, c.Request, w.status())
	})

	view.OnChange(func(NavState) { w.hub.Broadcast(w.status()) })
	return w
}

// Handler returns the HTTP handler.
func (w *WebServer) Handler() http.Handler { return w.engine }

// Run serves on addr until ctx is done.
func (w *WebServer) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: w.engine}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	w.logger.Infof("web: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web: %w", err)
	}
	return nil
}

func (w *WebServer) status() StatusResponse {
	return StatusResponse{Controller: w.manager.Snapshot(), View: w.view.State()}
}

func (w *WebServer) getState(c *gin.Context) {
	c.JSON(http.StatusOK, w.status())
}

func (w *WebServer) getDestination(c *gin.Context) {
	dest, ok := w.manager.Destination()
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no destination"})
		return
	}
	c.JSON(http.StatusOK, destinationResponse(dest))
}

func (w *WebServer) putDestination(c *gin.Context) {
	var req destinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var err error
	switch {
	case req.Lat != nil && req.Lon != nil:
		err = w.manager.SetDestination(*req.Lat, *req.Lon)
	case req.LatE6 != nil && req.LonE6 != nil:
		err = w.manager.SetDestinationE6(*req.LatE6, *req.LonE6)
	default:
		c.JSON(http.StatusBadRequest, errorResponse{Error: "lat/lon or lat_e6/lon_e6 required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	w.saveAndRespond(c)
}

func (w *WebServer) deleteDestination(c *gin.Context) {
	if err := w.manager.ClearDestination(c.Request.Context()); err != nil {
		w.logger.Errorf("web: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (w *WebServer) geocodeDestination(c *gin.Context) {
	if w.geocoder == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "geocoding is not configured"})
		return
	}
	var req geocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	loc, err := w.geocoder.Geocode(c.Request.Context(), req.Address)
	if errors.Is(err, ErrAddressNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		w.logger.Errorf("web: %v", err)
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	if err := w.manager.SetDestination(loc.Latitude, loc.Longitude); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	w.saveAndRespond(c)
}

func (w *WebServer) saveAndRespond(c *gin.Context) {
	if err := w.manager.SaveDestination(c.Request.Context()); err != nil {
		w.logger.Errorf("web: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	dest, _ := w.manager.Destination()
	c.JSON(http.StatusOK, destinationResponse(dest))
}

func (w *WebServer) resume(c *gin.Context) {
	if err := w.manager.Resume(); err != nil {
		w.logger.Warnf("web: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, w.status())
}

func (w *WebServer) pause(c *gin.Context) {
	if err := w.manager.Pause(); err != nil {
		w.logger.Warnf("web: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, w.status())
}

func destinationResponse(dest geo.Location) DestinationResponse {
	e6 := dest.ToE6()
	return DestinationResponse{
		Latitude:    dest.Latitude,
		Longitude:   dest.Longitude,
		LatitudeE6:  e6.LatitudeE6,
		LongitudeE6: e6.LongitudeE6,
	}
}
