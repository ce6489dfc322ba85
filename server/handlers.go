package server

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/imagequery"
	"github.com/kbukum/smartsearch/logger"
	"github.com/kbukum/smartsearch/observability"
	"github.com/kbukum/smartsearch/searchinput"
	"github.com/kbukum/smartsearch/sse"
	"github.com/kbukum/smartsearch/transcription"
	"github.com/kbukum/smartsearch/validation"
)

// imageField is the multipart field carrying an uploaded photo.
const imageField = "image"

// SessionView is a session's state as returned by the API.
type SessionView struct {
	ID string `json:"id"`
	searchinput.Snapshot
}

// RecordingView describes a recording that just started.
type RecordingView struct {
	RecordingID string `json:"recording_id"`
	Provider    string `json:"provider"`
	Remaining   int    `json:"remaining"`
}

// QueryView carries the query after an operation that may have changed it.
type QueryView struct {
	Query string `json:"query"`
}

type queryRequest struct {
	Query *string `json:"query" binding:"required"`
}

type providerRequest struct {
	Provider string `json:"provider"`
	Toggle   bool   `json:"toggle"`
}

// Handlers serves the session API.
type Handlers struct {
	sessions      *Sessions
	hub           *sse.Hub
	maxImageBytes int64
	log           *logger.Logger
}

// NewHandlers creates the session API handlers. maxImageBytes caps how much
// of an uploaded image is read before the extractor rejects it.
func NewHandlers(sessions *Sessions, hub *sse.Hub, maxImageBytes int64, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Handlers{
		sessions:      sessions,
		hub:           hub,
		maxImageBytes: maxImageBytes,
		log:           log.WithComponent("api"),
	}
}

// Register mounts the session routes on r.
func (h *Handlers) Register(r gin.IRouter) {
	s := r.Group("/sessions")
	s.POST("", h.createSession)
	s.GET("/:id", h.withSession(h.getSession))
	s.DELETE("/:id", h.deleteSession)
	s.PUT("/:id/query", h.withSession(h.setQuery))
	s.PUT("/:id/provider", h.withSession(h.setProvider))
	s.POST("/:id/recording", h.withSession(h.beginRecording))
	s.POST("/:id/recording/chunks", h.withSession(h.pushChunk))
	s.DELETE("/:id/recording", h.withSession(h.endRecording))
	s.POST("/:id/image", h.withSession(h.selectImage))
	s.DELETE("/:id/image", h.withSession(h.clearImage))
	s.POST("/:id/submit", h.withSession(h.submit))
	s.GET("/:id/events", h.withSession(h.events))
}

// ProviderHealth reports every registered transcription provider.
func ProviderHealth(reg *transcription.Registry) func(ctx context.Context) []observability.Health {
	return func(ctx context.Context) []observability.Health {
		names := reg.List()
		out := make([]observability.Health, 0, len(names))
		for _, name := range names {
			p, ok := reg.Get(name)
			out = append(out, observability.ProviderHealth(name, ok && p.IsAvailable(ctx)))
		}
		return out
	}
}

type sessionHandler func(c *gin.Context, sess *Session)

func (h *Handlers) withSession(next sessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := h.sessions.Get(c.Param("id"))
		if err != nil {
			RespondWithError(c, err)
			return
		}
		next(c, sess)
	}
}

func view(sess *Session) SessionView {
	return SessionView{ID: sess.ID, Snapshot: sess.Controller.Snapshot()}
}

func (h *Handlers) createSession(c *gin.Context) {
	sess, err := h.sessions.Create()
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondCreated(c, view(sess))
}

func (h *Handlers) getSession(c *gin.Context, sess *Session) {
	RespondOK(c, view(sess))
}

func (h *Handlers) deleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondNoContent(c)
}

func (h *Handlers) setQuery(c *gin.Context, sess *Session) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, errors.InvalidInput("query", err.Error()))
		return
	}
	sess.Controller.SetQuery(*req.Query)
	RespondOK(c, QueryView{Query: sess.Controller.Query()})
}

func (h *Handlers) setProvider(c *gin.Context, sess *Session) {
	var req providerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, errors.InvalidInput("provider", err.Error()))
		return
	}
	if verr := validation.New().
		Custom(req.Toggle || req.Provider != "", "provider", "provider or toggle is required").
		Validate(); verr != nil {
		RespondWithError(c, verr)
		return
	}
	if req.Toggle {
		sess.Controller.ToggleProvider()
	} else if err := sess.Controller.SelectProvider(transcription.ProviderID(req.Provider)); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, view(sess))
}

// beginRecording opens the session's device and starts the countdown. The
// optional content_type query parameter names the audio format of the
// chunks that follow; without it the format is sniffed.
func (h *Handlers) beginRecording(c *gin.Context, sess *Session) {
	sess.Device.SetContentType(c.Query("content_type"))
	id, err := sess.Controller.BeginRecording(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}
	snap := sess.Controller.Snapshot()
	RespondCreated(c, RecordingView{RecordingID: id, Provider: snap.Provider, Remaining: snap.Remaining})
}

func (h *Handlers) pushChunk(c *gin.Context, sess *Session) {
	chunk, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondWithError(c, errors.InvalidInput("chunk", err.Error()))
		return
	}
	if err := sess.Device.Push(chunk); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondNoContent(c)
}

// endRecording stops the recording and waits for its transcription.
func (h *Handlers) endRecording(c *gin.Context, sess *Session) {
	query, err := sess.Controller.EndRecording(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, QueryView{Query: query})
}

// selectImage previews the uploaded photo and starts tag extraction. The
// resulting query arrives as a query event.
func (h *Handlers) selectImage(c *gin.Context, sess *Session) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		RespondWithError(c, errors.InvalidInput(imageField, "multipart field \"image\" is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		RespondWithError(c, errors.InvalidInput(imageField, err.Error()))
		return
	}
	defer f.Close()

	r := io.Reader(f)
	if h.maxImageBytes > 0 {
		r = io.LimitReader(f, h.maxImageBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		RespondWithError(c, errors.InvalidInput(imageField, err.Error()))
		return
	}

	sel, err := sess.Controller.SelectImage(c.Request.Context(), imagequery.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondAccepted(c, sel)
}

func (h *Handlers) clearImage(c *gin.Context, sess *Session) {
	sess.Controller.ClearImage()
	RespondNoContent(c)
}

func (h *Handlers) submit(c *gin.Context, sess *Session) {
	resp, err := sess.Controller.Submit(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, resp)
}

func (h *Handlers) events(c *gin.Context, sess *Session) {
	if h.hub == nil {
		RespondWithError(c, errors.New(errors.ErrCodeInternal, "event streaming is disabled", http.StatusNotImplemented))
		return
	}
	sse.ServeSSE(h.hub, c.Writer, c.Request, sse.NewClientID(sess.ID))
}
