// Package api is the board's web server: the kiosk page, display push and the admin api
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/aouyang1/labboard/api/models"
	"github.com/aouyang1/labboard/api/web/templates"
	"github.com/aouyang1/labboard/board"
	"github.com/aouyang1/labboard/events"
	"github.com/aouyang1/labboard/slideshow"
	"github.com/aouyang1/labboard/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	inputTimeout    = 5 * time.Second
	shutdownTimeout = 10 * time.Second

	defaultAdminRate  = 5
	defaultAdminBurst = 10
)

type displayController interface {
	Enabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
}

type Options struct {
	// RootPath holds the synced assets directory served at /assets.
	RootPath string
	// AdminRate limits admin requests per client, per second.
	AdminRate  float64
	AdminBurst int

	Events  *events.Service
	Display displayController

	LocalManager    *LocalManager
	RemoteManager   *RemoteManager
	ScheduleManager *ScheduleManager
}

type WebServer struct {
	router   *gin.Engine
	board    *board.Board
	settings board.SettingsStore
	hub      *Hub
	composer *slideshow.Composer
	events   *events.Service
	display  displayController
	rootPath string

	localManager    *LocalManager
	remoteManager   *RemoteManager
	scheduleManager *ScheduleManager

	pageMu sync.RWMutex
	page   *slideshow.Page
}

func NewWebServer(b *board.Board, settings board.SettingsStore, hub *Hub, composer *slideshow.Composer, page *slideshow.Page, opts Options) (*WebServer, error) {
	if b == nil || settings == nil || hub == nil {
		return nil, errors.New("web server needs a board, a settings store and a hub")
	}
	if opts.RootPath == "" {
		opts.RootPath = "."
	}
	if opts.AdminRate <= 0 {
		opts.AdminRate = defaultAdminRate
	}
	if opts.AdminBurst <= 0 {
		opts.AdminBurst = defaultAdminBurst
	}

	ws := &WebServer{
		router:          gin.New(),
		board:           b,
		settings:        settings,
		hub:             hub,
		composer:        composer,
		events:          opts.Events,
		display:         opts.Display,
		rootPath:        opts.RootPath,
		localManager:    opts.LocalManager,
		remoteManager:   opts.RemoteManager,
		scheduleManager: opts.ScheduleManager,
		page:            page,
	}
	ws.router.Use(gin.Recovery())

	if err := ws.setupRoutes(newIPRateLimiter(opts.AdminRate, opts.AdminBurst)); err != nil {
		return nil, err
	}
	return ws, nil
}

func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

func (ws *WebServer) setupRoutes(limiter *ipRateLimiter) error {
	staticFiles, err := staticFS()
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}

	ws.router.StaticFS("/static", http.FS(staticFiles))
	ws.router.Static("/assets", filepath.Join(ws.rootPath, "assets"))

	ws.router.GET("/", ws.handleIndex)
	ws.router.GET("/ws", ws.handleWebsocket)
	ws.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	fragments := ws.router.Group("/fragments")
	fragments.GET("/hours", ws.handleHoursFragment)
	fragments.GET("/status", ws.handleStatusFragment)
	fragments.GET("/banner", ws.handleBannerFragment)
	fragments.GET("/events", ws.handleEventsFragment)

	api := ws.router.Group("/api")
	api.GET("/state", ws.handleGetState)
	api.GET("/hours", ws.handleGetHours)
	api.GET("/events", ws.handleGetEvents)
	api.GET("/settings", ws.handleGetSettings)

	api.POST("/slides/next", ws.handleNext)
	api.POST("/slides/prev", ws.handlePrev)
	api.POST("/slides/goto/:index", ws.handleGoto)
	api.POST("/input/swipe", ws.handleSwipe)
	api.POST("/input/key", ws.handleKey)

	admin := api.Group("", limiter.middleware())
	admin.PUT("/settings", ws.handleUpdateSettings)
	admin.POST("/settings/reset", ws.handleResetSettings)
	admin.POST("/status/:state", ws.handleQuickStatus)
	admin.POST("/admin/tap", ws.handleAdminTap)
	admin.POST("/admin/press", ws.handleAdminPress)
	admin.POST("/admin/release", ws.handleAdminRelease)
	admin.POST("/admin/close", ws.handleAdminClose)
	admin.GET("/admin/form", ws.handleAdminForm)
	admin.GET("/display", ws.handleGetDisplay)
	admin.PUT("/display/:state", ws.handleUpdateDisplay)

	return nil
}

// Start serves on addr and runs the managers until ctx is done.
func (ws *WebServer) Start(ctx context.Context, addr string) error {
	if ws.localManager != nil {
		go ws.localManager.Run(ctx)
	}
	if ws.remoteManager != nil {
		go ws.remoteManager.Run(ctx)
	}
	if ws.scheduleManager != nil {
		go ws.scheduleManager.Run(ctx)
	}
	go ws.watchUpdates(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           ws.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting web server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	slog.Info("web server stopped")
	return nil
}

// watchUpdates recomposes the page when fragments change and reloads displays when
// synced assets change.
func (ws *WebServer) watchUpdates(ctx context.Context) {
	var localUpdated, remoteUpdated <-chan bool
	if ws.localManager != nil {
		localUpdated = ws.localManager.Updated
	}
	if ws.remoteManager != nil {
		remoteUpdated = ws.remoteManager.Updated
	}

	for {
		select {
		case <-localUpdated:
			slog.Info("found new slide fragments, recomposing page")
			if err := ws.Recompose(ctx); err != nil {
				slog.Error("error while recomposing page", "error", err)
			}
		case <-remoteUpdated:
			slog.Info("found new remote assets, reloading displays")
			ws.hub.Publish(board.Message{Type: board.MessageReload})
		case <-ctx.Done():
			return
		}
	}
}

// Recompose rebuilds the page, updates the board's slide order and reloads displays.
func (ws *WebServer) Recompose(ctx context.Context) error {
	if ws.composer == nil {
		return errors.New("no page composer configured")
	}
	page, err := ComposePage(ctx, ws.composer)
	if err != nil {
		return err
	}

	ws.pageMu.Lock()
	ws.page = page
	ws.pageMu.Unlock()

	if err := ws.board.SetSlides(ctx, page.Slides); err != nil {
		return fmt.Errorf("failed to update slide order: %w", err)
	}
	ws.hub.Publish(board.Message{Type: board.MessageReload})
	return nil
}

func (ws *WebServer) handleIndex(c *gin.Context) {
	ws.pageMu.RLock()
	page := ws.page
	ws.pageMu.RUnlock()

	if page == nil {
		c.String(http.StatusServiceUnavailable, "Board page is not ready")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page.HTML))
}

func (ws *WebServer) handleWebsocket(c *gin.Context) {
	ws.hub.Serve(c.Writer, c.Request, ws.handleDisplayInput)
}

// handleDisplayInput applies input a display sent over its websocket.
func (ws *WebServer) handleDisplayInput(msg models.InputMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), inputTimeout)
	defer cancel()

	var err error
	switch msg.Type {
	case models.InputSwipe:
		_, err = ws.board.Swipe(ctx, msg.DX, msg.DY)
	case models.InputKey:
		_, err = ws.board.Key(ctx, msg.Key, msg.Editing)
	case models.InputNext:
		_, err = ws.board.Next(ctx)
	case models.InputPrev:
		_, err = ws.board.Prev(ctx)
	case models.InputGoto:
		_, err = ws.board.Goto(ctx, msg.Index)
	case models.InputTap:
		_, err = ws.board.AdminTap(ctx)
	case models.InputPress:
		_, err = ws.board.AdminPress(ctx)
	case models.InputRelease:
		_, err = ws.board.AdminRelease(ctx)
	case models.InputClose:
		_, err = ws.board.CloseAdmin(ctx)
	default:
		slog.Debug("ignoring unknown display input", "type", msg.Type)
		return
	}
	if err != nil {
		slog.Warn("failed to apply display input", "type", msg.Type, "error", err)
	}
}

// boardError writes the response for a failed board call.
func boardError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, board.ErrStopped) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, models.ErrorResponse{Error: err.Error()})
}

func navigation(res board.Result) models.NavigationResponse {
	return models.NavigationResponse{
		Slide: res.Display.Slide,
		Index: res.Display.SlideIndex,
		Moved: res.Moved,
	}
}

func adminResponse(res board.Result) models.AdminResponse {
	return models.AdminResponse{
		AdminOpen: res.Display.AdminOpen,
		Form:      res.Form,
	}
}

func (ws *WebServer) handleGetState(c *gin.Context) {
	d, err := ws.board.Snapshot(c.Request.Context())
	if err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (ws *WebServer) handleGetHours(c *gin.Context) {
	d, err := ws.board.Snapshot(c.Request.Context())
	if err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.HoursResponse{
		Summary: d.HoursSummary,
		Line:    d.HoursLine,
		Open:    d.Open,
		Rows:    d.Hours,
	})
}

func (ws *WebServer) upcomingEvents(c *gin.Context) ([]events.Event, bool) {
	if ws.events == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "events feed not configured"})
		return nil, false
	}
	evs, err := ws.events.Upcoming(c.Request.Context(), events.DefaultLimit)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: fmt.Sprintf("Failed to load events: %v", err)})
		return nil, false
	}
	return evs, true
}

func (ws *WebServer) handleGetEvents(c *gin.Context) {
	evs, ok := ws.upcomingEvents(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.EventsResponse{Events: evs, Total: len(evs)})
}

func (ws *WebServer) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, ws.settings.Load())
}

func (ws *WebServer) handleUpdateSettings(c *gin.Context) {
	var form store.SettingsForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	if _, err := ws.board.SaveForm(c.Request.Context(), form); err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws.settings.Load())
}

func (ws *WebServer) handleResetSettings(c *gin.Context) {
	if _, err := ws.board.Reset(c.Request.Context()); err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws.settings.Load())
}

func (ws *WebServer) handleQuickStatus(c *gin.Context) {
	var status store.Status
	switch strings.ToLower(c.Param("state")) {
	case "open":
		status = store.StatusOpen
	case "closed":
		status = store.StatusClosed
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "state must be open or closed"})
		return
	}

	res, err := ws.board.QuickStatus(c.Request.Context(), status)
	if err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, res.Display)
}

func (ws *WebServer) handleNext(c *gin.Context) {
	res, err := ws.board.Next(c.Request.Context())
	if err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, navigation(res))
}

func (ws *WebServer) handlePrev(c *gin.Context) {
	res, err := ws.board.Prev(c.Request.Context())
	if err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, navigation(res))
}

func (ws *WebServer) handleGoto(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "index must be an integer"})
		return
	}
	res, err := ws.board.Goto(c.Request.Context(), index)
	if err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, navigation(res))
}

func (ws *WebServer) handleSwipe(c *gin.Context) {
	var req models.SwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}
	res, err := ws.board.Swipe(c.Request.Context(), req.DX, req.DY)
	if err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, navigation(res))
}

func (ws *WebServer) handleKey(c *gin.Context) {
	var req models.KeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}
	res, err := ws.board.Key(c.Request.Context(), req.Key, req.Editing)
	if err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, navigation(res))
}

func (ws *WebServer) handleAdminTap(c *gin.Context) {
	res, err := ws.board.AdminTap(c.Request.Context())
	if err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, adminResponse(res))
}

func (ws *WebServer) handleAdminPress(c *gin.Context) {
	res, err := ws.board.AdminPress(c.Request.Context())
	if err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, adminResponse(res))
}

func (ws *WebServer) handleAdminRelease(c *gin.Context) {
	res, err := ws.board.AdminRelease(c.Request.Context())
	if err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, adminResponse(res))
}

func (ws *WebServer) handleAdminClose(c *gin.Context) {
	res, err := ws.board.CloseAdmin(c.Request.Context())
	if err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, adminResponse(res))
}

func (ws *WebServer) handleAdminForm(c *gin.Context) {
	form, err := ws.board.AdminForm(c.Request.Context())
	if err != nil {
		boardError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (ws *WebServer) handleGetDisplay(c *gin.Context) {
	if ws.display == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "display control not configured"})
		return
	}
	enabled, err := ws.display.Enabled(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to get display state: %v", err)})
		return
	}

	c.JSON(http.StatusOK, models.DisplayStateResponse{Enabled: enabled})
}

func (ws *WebServer) handleUpdateDisplay(c *gin.Context) {
	if ws.display == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "display control not configured"})
		return
	}
	state := c.Param("state")
	if state != "0" && state != "1" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "state must be 0 (off) or 1 (on)"})
		return
	}

	desiredEnabled := state == "1"
	if err := ws.display.SetEnabled(c.Request.Context(), desiredEnabled); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to update display state: %v", err)})
		return
	}

	// Re-read state to reflect actual output if possible.
	enabled, err := ws.display.Enabled(c.Request.Context())
	if err != nil {
		slog.Warn("failed to re-read display state after update", "error", err)
		enabled = desiredEnabled
	}

	c.JSON(http.StatusOK, models.DisplayStateResponse{Enabled: enabled})
}

func renderFragment(c *gin.Context, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		slog.Error("failed to render fragment", "path", c.FullPath(), "error", err)
	}
}

func (ws *WebServer) handleHoursFragment(c *gin.Context) {
	d, err := ws.board.Snapshot(c.Request.Context())
	if err != nil {
		boardError(c, err)
		return
	}
	renderFragment(c, templates.HoursList(d.Hours))
}

func (ws *WebServer) handleStatusFragment(c *gin.Context) {
	d, err := ws.board.Snapshot(c.Request.Context())
	if err != nil {
		boardError(c, err)
		return
	}
	renderFragment(c, templates.StatusPanel(d))
}

func (ws *WebServer) handleBannerFragment(c *gin.Context) {
	d, err := ws.board.Snapshot(c.Request.Context())
	if err != nil {
		boardError(c, err)
		return
	}
	renderFragment(c, templates.Banner(d))
}

func (ws *WebServer) handleEventsFragment(c *gin.Context) {
	evs, ok := ws.upcomingEvents(c)
	if !ok {
		return
	}
	renderFragment(c, templates.EventsList(evs))
}
