package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/youruser/memeapp/internal/caption"
	imagepkg "github.com/youruser/memeapp/internal/image"
	"github.com/youruser/memeapp/internal/notify"
	"github.com/youruser/memeapp/internal/placement"
	"github.com/youruser/memeapp/internal/session"
)

const maxCaptionRunes = 280

// multipartSlack leaves room for form boundaries around the file part.
const multipartSlack = 64 << 10

func (h *Handler) createSession(c *gin.Context) {
	s := h.sessions.Create()
	v, err := h.sessions.Snapshot(s.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) getSession(c *gin.Context) {
	v, err := h.sessions.Snapshot(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// mutate runs fn on the session and answers with its updated view.
func (h *Handler) mutate(c *gin.Context, fn func(*session.Session) error) {
	var v session.View
	err := h.sessions.With(c.Param("id"), func(s *session.Session) error {
		if err := fn(s); err != nil {
			return err
		}
		v = s.View()
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) uploadImage(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.sessions.Get(id); err != nil {
		fail(c, err)
		return
	}
	limit := h.cfg.MaxUploadBytes
	if limit <= 0 {
		limit = session.DefaultMaxUploadBytes
	}
	tooLarge := &session.ValidationError{Field: "file", Reason: session.ReasonTooLarge,
		Err: fmt.Errorf("limit is %d bytes", limit)}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartSlack)
	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			fail(c, tooLarge)
			return
		}
		fail(c, malformed("file", err))
		return
	}
	if fh.Size > limit {
		fail(c, tooLarge)
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, malformed("file", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		fail(c, malformed("file", err))
		return
	}

	src, err := session.DecodeUpload(fh.Filename, data, limit)
	if err != nil {
		fail(c, err)
		return
	}
	score := h.sessions.RollViralScore()
	var v session.View
	err = h.sessions.With(id, func(s *session.Session) error {
		s.ReplaceImage(src, score)
		v = s.View()
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.stats.ObserveScore(score)
	c.JSON(http.StatusOK, gin.H{"session": v, "notice": notify.ImageLoaded})
}

func (h *Handler) selectTemplate(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, malformed("template", err))
		return
	}
	id := c.Param("id")
	if _, err := h.sessions.Get(id); err != nil {
		fail(c, err)
		return
	}
	t, err := h.catalog.Get(req.ID)
	if err != nil {
		fail(c, err)
		return
	}
	img, err := h.images.Load(c.Request.Context(), t)
	if err != nil {
		fail(c, err)
		return
	}
	var v session.View
	err = h.sessions.With(id, func(s *session.Session) error {
		s.ReplaceImage(&session.SourceImage{Image: img, Origin: "template", Ref: t.ID}, t.ViralScore)
		v = s.View()
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.stats.ObserveScore(t.ViralScore)
	c.JSON(http.StatusOK, gin.H{"session": v, "notice": notify.TemplateSelected(t.Name)})
}

func (h *Handler) generateCaption(c *gin.Context) {
	id := c.Param("id")
	var gen uint64
	err := h.sessions.With(id, func(s *session.Session) error {
		if err := s.RequireImage(); err != nil {
			return err
		}
		gen = s.Generation
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}

	text, err := h.captions.Generate(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	var v session.View
	err = h.sessions.With(id, func(s *session.Session) error {
		if err := s.ApplyCaption(text, gen); err != nil {
			return err
		}
		v = s.View()
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}

	celebrate := h.stats.CaptionDelivered(v.ViralScore)
	notices := []notify.Notice{notify.CaptionReady}
	if celebrate {
		notices = append(notices, notify.ViralDetected)
	}
	c.JSON(http.StatusOK, gin.H{"session": v, "celebrate": celebrate, "notices": notices})
}

// streamCaption replays the current caption as server-sent events: a
// "notice" event first, then one rune more per "caption" event, finishing
// with a "done" event.
func (h *Handler) streamCaption(c *gin.Context) {
	v, err := h.sessions.Snapshot(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	steps := caption.Typewriter(v.Caption)
	ctx := c.Request.Context()

	var tick <-chan time.Time
	if h.cfg.TypewriterInterval > 0 {
		t := time.NewTicker(h.cfg.TypewriterInterval)
		defer t.Stop()
		tick = t.C
	}
	c.SSEvent("notice", notify.CaptionBrewing)
	c.Writer.Flush()
	for _, step := range steps {
		if tick != nil {
			select {
			case <-ctx.Done():
				return
			case <-tick:
			}
		}
		c.SSEvent("caption", step)
		c.Writer.Flush()
	}
	c.SSEvent("done", v.Caption)
	c.Writer.Flush()
}

func (h *Handler) setCaption(c *gin.Context) {
	var req struct {
		Caption string `json:"caption"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, malformed("caption", err))
		return
	}
	if utf8.RuneCountInString(req.Caption) > maxCaptionRunes {
		fail(c, &session.ValidationError{Field: "caption", Reason: session.ReasonOutOfRange})
		return
	}
	h.mutate(c, func(s *session.Session) error {
		if err := s.RequireImage(); err != nil {
			return err
		}
		s.Caption = req.Caption
		return nil
	})
}

func (h *Handler) setStyle(c *gin.Context) {
	var req struct {
		FontSizePx  *int            `json:"font_size_px"`
		FillColor   *imagepkg.Color `json:"fill_color"`
		StrokeColor *imagepkg.Color `json:"stroke_color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, imagepkg.ErrInvalidColor) {
			fail(c, malformed("color", err))
			return
		}
		fail(c, malformed("style", err))
		return
	}
	h.mutate(c, func(s *session.Session) error {
		next := s.Style
		if req.FontSizePx != nil {
			next.FontSizePx = *req.FontSizePx
		}
		if req.FillColor != nil {
			next.Fill = *req.FillColor
		}
		if req.StrokeColor != nil {
			next.Stroke = *req.StrokeColor
		}
		return s.SetStyle(next)
	})
}

func (h *Handler) setPosition(c *gin.Context) {
	var p placement.Position
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, malformed("position", err))
		return
	}
	h.mutate(c, func(s *session.Session) error {
		s.Placement.Set(p)
		return nil
	})
}

func (h *Handler) dragBegin(c *gin.Context) {
	h.mutate(c, func(s *session.Session) error {
		s.Placement.Begin()
		return nil
	})
}

type dragMoveRequest struct {
	PointerX float64          `json:"pointer_x"`
	PointerY float64          `json:"pointer_y"`
	Bounds   placement.Bounds `json:"bounds"`
}

func (h *Handler) dragMove(c *gin.Context) {
	var req dragMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, malformed("pointer", err))
		return
	}
	h.mutate(c, func(s *session.Session) error {
		s.Placement.Move(req.PointerX, req.PointerY, req.Bounds)
		return nil
	})
}

func (h *Handler) dragEnd(c *gin.Context) {
	h.mutate(c, func(s *session.Session) error {
		s.Placement.End()
		return nil
	})
}

func (h *Handler) preview(c *gin.Context) {
	var req struct {
		Box placement.Bounds `json:"box"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, malformed("box", err))
		return
	}
	v, err := h.sessions.Snapshot(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	x, y := placement.Preview(v.Position, req.Box)
	c.JSON(http.StatusOK, gin.H{
		"position":  v.Position,
		"x":         x,
		"y":         y,
		"font_size": v.Style.FontSizePx,
	})
}
