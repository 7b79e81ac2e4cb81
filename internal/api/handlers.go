package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youruser/memeapp/internal/ads"
	"github.com/youruser/memeapp/internal/caption"
	"github.com/youruser/memeapp/internal/config"
	imagepkg "github.com/youruser/memeapp/internal/image"
	"github.com/youruser/memeapp/internal/session"
	"github.com/youruser/memeapp/internal/share"
	"github.com/youruser/memeapp/internal/stats"
	"github.com/youruser/memeapp/internal/templates"
)

// Handler carries the collaborators the routes need.
type Handler struct {
	cfg      config.Config
	sessions *session.Store
	catalog  *templates.Catalog
	images   *templates.Images
	captions *caption.Generator
	links    *share.LinkSharer
	ads      *ads.Injector
	stats    *stats.Counter
}

type Deps struct {
	Config   config.Config
	Sessions *session.Store
	Catalog  *templates.Catalog
	Images   *templates.Images
	Captions *caption.Generator
	Links    *share.LinkSharer
	Ads      *ads.Injector
	Stats    *stats.Counter
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		cfg:      d.Config,
		sessions: d.Sessions,
		catalog:  d.Catalog,
		images:   d.Images,
		captions: d.Captions,
		links:    d.Links,
		ads:      d.Ads,
		stats:    d.Stats,
	}
}

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// qr endpoint returns a PNG of a QR for "text" query param
func qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		fail(c, malformed("text", nil))
		return
	}
	size := imagepkg.DefaultQRSize
	if v, err := strconv.Atoi(c.Query("size")); err == nil {
		size = v
	}
	b, err := imagepkg.GenerateQRPNG(text, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// palette lists the editor's colour swatches and the default style.
func palette(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"colors": imagepkg.Palette, "default": imagepkg.DefaultStyle()})
}

func (h *Handler) listTemplates(c *gin.Context) {
	opt := templates.FilterOptions{FreeWords: c.Query("q")}
	if v, err := strconv.Atoi(c.Query("min_score")); err == nil {
		opt.MinViralScore = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		opt.Limit = v
	}
	out := templates.Filter(h.catalog.All(), opt)
	c.JSON(http.StatusOK, gin.H{"count": len(out), "templates": out})
}

func (h *Handler) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats.Snapshot())
}

func (h *Handler) adSlot(c *gin.Context) {
	slot := c.Param("slot")
	if !h.ads.Has(slot) {
		fail(c, ads.ErrUnknownSlot)
		return
	}
	var first bool
	err := h.sessions.With(c.Param("id"), func(s *session.Session) error {
		first = s.MarkAd(slot)
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	sn, err := h.ads.Snippet(slot, first)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sn)
}
