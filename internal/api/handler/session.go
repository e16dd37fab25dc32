package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/timmy/socialkit/internal/domain"
	"github.com/timmy/socialkit/internal/logger"
	"github.com/timmy/socialkit/internal/service"
)

// SessionHandler exposes kit sessions over HTTP.
type SessionHandler struct {
	sessions  *service.SessionManager
	templates TemplateSource
	exporter  *service.KitExporter
}

// NewSessionHandler creates a session handler.
// Parameters:
//   - sessions: live session registry.
//   - templates: template gallery, may be nil.
//   - exporter: object storage exporter, nil when storage is disabled.
func NewSessionHandler(sessions *service.SessionManager, templates TemplateSource, exporter *service.KitExporter) *SessionHandler {
	return &SessionHandler{sessions: sessions, templates: templates, exporter: exporter}
}

type sourceRequest struct {
	DataURL string `json:"data_url" binding:"required"`
}

type templateRequest struct {
	Seed string `json:"seed" binding:"required"`
}

type briefRequest struct {
	Brief string `json:"brief"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// SourceResponse is returned after a source image was installed.
type SourceResponse struct {
	Image   *service.ImageInfo `json:"image"`
	Session *service.Snapshot  `json:"session"`
}

// ToggleResponse reports the selection after a toggle.
type ToggleResponse struct {
	PlatformID string   `json:"platform_id"`
	Selected   bool     `json:"selected"`
	Selection  []string `json:"selection"`
}

// StatusResponse is the batch status of a session.
type StatusResponse struct {
	Status domain.GenerationStatus `json:"status"`
	Phase  domain.BatchPhase       `json:"phase"`
}

func (h *SessionHandler) session(c *gin.Context) (*service.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) result(c *gin.Context, s *service.Session) (*domain.GeneratedResult, bool) {
	r, err := s.Result(c.Param("rid"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return r, true
}

// Create handles POST /api/v1/sessions.
func (h *SessionHandler) Create(c *gin.Context) {
	s := h.sessions.Create()
	logger.CtxInfo(logger.SetSessionID(c.Request.Context(), s.ID()), "Session created")
	c.JSON(http.StatusCreated, s.Snapshot())
}

// Get handles GET /api/v1/sessions/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// Delete handles DELETE /api/v1/sessions/:id.
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadSource handles POST /api/v1/sessions/:id/source.
// Accepts a multipart "image" file or a JSON body {"data_url": "..."}.
func (h *SessionHandler) UploadSource(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var data []byte
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("image")
		if err != nil {
			badRequest(c, "Missing form file 'image'")
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondError(c, fmt.Errorf("open upload: %w", err))
			return
		}
		defer f.Close()
		data, err = io.ReadAll(io.LimitReader(f, service.MaxSourceBytes+1))
		if err != nil {
			respondError(c, fmt.Errorf("read upload: %w", err))
			return
		}
	} else {
		var req sourceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request: "+err.Error())
			return
		}
		payload, err := domain.ParseDataURL(req.DataURL)
		if err != nil {
			respondError(c, err)
			return
		}
		data = payload.Data
	}

	h.installSource(c, s, data)
}

// LoadTemplate handles POST /api/v1/sessions/:id/template.
func (h *SessionHandler) LoadTemplate(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if h.templates == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Template gallery is not configured"})
		return
	}

	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	if _, found := domain.FindTemplate(req.Seed); !found {
		badRequest(c, "Unknown template: "+req.Seed)
		return
	}

	payload, err := h.templates.Load(c.Request.Context(), req.Seed)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "Template load failed: seed=%s, error=%v", req.Seed, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load template: " + err.Error()})
		return
	}
	h.installSource(c, s, payload.Data)
}

func (h *SessionHandler) installSource(c *gin.Context, s *service.Session, data []byte) {
	img, info, err := service.NewSourceImage(data)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.SetSource(img); err != nil {
		respondError(c, err)
		return
	}

	logger.With(logger.Fields{logger.FieldSize: len(data)}).
		Info(c.Request.Context(), "Source image set: format=%s, %dx%d", info.Format, info.Width, info.Height)
	c.JSON(http.StatusOK, SourceResponse{Image: info, Session: s.Snapshot()})
}

// ClearSource handles DELETE /api/v1/sessions/:id/source.
func (h *SessionHandler) ClearSource(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.ClearSource()
	c.JSON(http.StatusOK, s.Snapshot())
}

// SetBrief handles PUT /api/v1/sessions/:id/brief.
func (h *SessionHandler) SetBrief(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req briefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	s.SetBrief(req.Brief)
	c.JSON(http.StatusOK, s.Snapshot())
}

// SetTheme handles PUT /api/v1/sessions/:id/theme.
func (h *SessionHandler) SetTheme(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	theme, err := domain.ParseTheme(req.Theme)
	if err != nil {
		respondError(c, err)
		return
	}
	s.SetTheme(theme)
	c.JSON(http.StatusOK, s.Snapshot())
}

// TogglePlatform handles POST /api/v1/sessions/:id/platforms/:pid/toggle.
func (h *SessionHandler) TogglePlatform(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	pid := c.Param("pid")
	selected, err := s.TogglePlatform(pid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToggleResponse{PlatformID: pid, Selected: selected, Selection: s.Selection()})
}

// SelectAll handles POST /api/v1/sessions/:id/platforms/all.
func (h *SessionHandler) SelectAll(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.SelectAll()
	c.JSON(http.StatusOK, s.Snapshot())
}

// Generate handles POST /api/v1/sessions/:id/generate.
// The batch runs in the background; progress is observable via status and events.
func (h *SessionHandler) Generate(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// Detach from the request so the batch outlives it; the request logger comes along.
	batchCtx := logger.FromContext(ctx).WithContext(context.Background())
	run, err := s.BeginGenerate(batchCtx)
	if err != nil {
		logger.CtxWarn(ctx, "Generate rejected: %v", err)
		respondError(c, err)
		return
	}
	if run == nil {
		snap := s.Snapshot()
		logger.CtxDebug(ctx, "Generate ignored: has_source=%v, selected=%d", snap.HasSource, len(snap.Selection))
		c.JSON(http.StatusOK, gin.H{"started": false, "session": snap})
		return
	}

	go func() {
		if err := run(); err != nil && !errors.Is(err, service.ErrSessionReset) {
			logger.CtxWarn(batchCtx, "Background batch ended with error: %v", err)
		}
	}()

	snap := s.Snapshot()
	logger.CtxInfo(ctx, "Batch scheduled: platforms=%d, theme=%s", len(snap.Selection), snap.Theme)
	c.JSON(http.StatusAccepted, gin.H{"started": true, "session_id": s.ID()})
}

// Status handles GET /api/v1/sessions/:id/status.
func (h *SessionHandler) Status(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st := s.Status()
	c.JSON(http.StatusOK, StatusResponse{Status: st, Phase: st.Phase()})
}

// Events handles GET /api/v1/sessions/:id/events as a server-sent event stream.
// The first event is a "snapshot" of the session; later events mirror Subscribe.
func (h *SessionHandler) Events(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	events, unsubscribe := s.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("snapshot", s.Snapshot())
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case e, open := <-events:
			if !open {
				return false
			}
			c.SSEvent(string(e.Type), e)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// Regenerate handles POST /api/v1/sessions/:id/results/:rid/regenerate.
// Runs synchronously and returns the updated result.
func (h *SessionHandler) Regenerate(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	rid := c.Param("rid")
	if _, ok := h.result(c, s); !ok {
		return
	}
	ctx := logger.WithField(c.Request.Context(), logger.FieldResultID, rid)

	if err := s.Regenerate(ctx, rid); err != nil {
		switch statusFor(err) {
		case http.StatusConflict, http.StatusNotFound:
			respondError(c, err)
		default:
			_ = c.Error(err)
			logger.FromContext(ctx).WithError(err).Warn("Regeneration failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": regenerateFailedNotice})
		}
		return
	}

	r, ok := h.result(c, s)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r)
}

// Download handles GET /api/v1/sessions/:id/results/:rid/download.
func (h *SessionHandler) Download(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	r, ok := h.result(c, s)
	if !ok {
		return
	}
	img, err := r.Image()
	if err != nil {
		respondError(c, err)
		return
	}

	name := domain.KitFilename(r.Platform.ID, r.Theme, img.Extension())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, img.MIMEType, img.Data)
}

// Caption handles GET /api/v1/sessions/:id/results/:rid/caption.
func (h *SessionHandler) Caption(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	r, ok := h.result(c, s)
	if !ok {
		return
	}
	c.String(http.StatusOK, r.CopyText())
}

// Export handles POST /api/v1/sessions/:id/results/:rid/export.
func (h *SessionHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Export storage is not configured"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	r, ok := h.result(c, s)
	if !ok {
		return
	}

	asset, err := h.exporter.Export(c.Request.Context(), s.ID(), r)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// Reset handles POST /api/v1/sessions/:id/reset.
func (h *SessionHandler) Reset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Reset()
	c.JSON(http.StatusOK, s.Snapshot())
}
