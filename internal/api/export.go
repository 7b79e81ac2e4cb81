package api

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	imagepkg "github.com/youruser/memeapp/internal/image"
	"github.com/youruser/memeapp/internal/notify"
	"github.com/youruser/memeapp/internal/placement"
	"github.com/youruser/memeapp/internal/session"
	"github.com/youruser/memeapp/internal/share"
)

// render snapshots the session under its lock, then composes outside it so a
// slow encode never blocks drag updates.
func (h *Handler) render(c *gin.Context, format imagepkg.Format, quality int) (*imagepkg.Artifact, error) {
	var (
		src   *session.SourceImage
		text  string
		style imagepkg.CaptionStyle
		pos   placement.Position
	)
	err := h.sessions.With(c.Param("id"), func(s *session.Session) error {
		if err := s.RequireImage(); err != nil {
			return err
		}
		src = s.Source
		text = s.Caption
		style = s.Style
		pos = s.Placement.Position()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return imagepkg.Render(c.Request.Context(), src.Image, text, style, pos, imagepkg.RenderOptions{
		MaxWidth: h.cfg.MaxOutputWidth,
		Format:   format,
		Quality:  quality,
	})
}

func (h *Handler) exportParams(c *gin.Context) (imagepkg.Format, int, error) {
	format, err := imagepkg.ParseFormat(c.Query("format"))
	if err != nil {
		return "", 0, malformed("format", err)
	}
	quality := h.cfg.ExportQuality
	if q := c.Query("quality"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 || v > 100 {
			return "", 0, &session.ValidationError{Field: "quality", Reason: session.ReasonOutOfRange, Err: err}
		}
		quality = v
	}
	return format, quality, nil
}

func (h *Handler) export(c *gin.Context) {
	format, quality, err := h.exportParams(c)
	if err != nil {
		fail(c, err)
		return
	}
	a, err := h.render(c, format, quality)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename))
	c.Header("X-Meme-Width", strconv.Itoa(a.Width))
	c.Header("X-Meme-Height", strconv.Itoa(a.Height))
	c.Header("X-Meme-Notice", mime.QEncoding.Encode("utf-8", notify.Downloaded.Message))
	c.Data(http.StatusOK, a.ContentType(), a.Data)
}

type shareRequest struct {
	// Native is false when the client has no share target of its own.
	Native *bool `json:"native"`
}

func (h *Handler) share(c *gin.Context) {
	var req shareRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, malformed("share", err))
			return
		}
	}
	a, err := h.render(c, imagepkg.FormatPNG, h.cfg.ExportQuality)
	if err != nil {
		fail(c, err)
		return
	}

	clip := &share.InlineClipboard{}
	svc := &share.Service{Clipboard: clip}
	if req.Native == nil || *req.Native {
		svc.Native = h.links
	}
	out, err := svc.Share(c.Request.Context(), share.Payload{
		Data:        a.Data,
		Filename:    "ai-meme.png",
		ContentType: a.ContentType(),
		Title:       share.DefaultTitle,
		Text:        share.DefaultText,
	})
	if err != nil {
		fail(c, err)
		return
	}

	resp := gin.H{"method": out.Method, "title": share.DefaultTitle, "text": share.DefaultText}
	switch out.Method {
	case share.MethodNative:
		resp["url"] = out.Result.URL
		resp["qr_url"] = out.Result.URL + "/qr"
		resp["notice"] = notify.Shared
	case share.MethodClipboard:
		resp["data_uri"] = clip.DataURI()
		resp["notice"] = notify.CopiedClipboard
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getShared(c *gin.Context) {
	p, err := h.links.Get(c.Param("token"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", p.Filename))
	c.Data(http.StatusOK, p.ContentType, p.Data)
}

func (h *Handler) getSharedQR(c *gin.Context) {
	token := c.Param("token")
	if _, err := h.links.Get(token); err != nil {
		fail(c, err)
		return
	}
	b, err := imagepkg.GenerateQRPNG(h.links.URL(token), imagepkg.DefaultQRSize)
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}
