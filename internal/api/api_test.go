package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/memeapp/internal/ads"
	"github.com/youruser/memeapp/internal/caption"
	"github.com/youruser/memeapp/internal/config"
	imagepkg "github.com/youruser/memeapp/internal/image"
	"github.com/youruser/memeapp/internal/notify"
	"github.com/youruser/memeapp/internal/session"
	"github.com/youruser/memeapp/internal/share"
	"github.com/youruser/memeapp/internal/stats"
	"github.com/youruser/memeapp/internal/templates"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	r       *gin.Engine
	dataDir string
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates"), 0o755))
	require.NoError(t, imaging.Save(imaging.New(640, 480, color.NRGBA{B: 200, A: 255}),
		filepath.Join(dir, "templates", "drake.jpg")))

	cfg := config.Config{
		DataDir:        dir,
		PublicURL:      "https://memes.example",
		MaxUploadBytes: 5 << 20,
		MaxOutputWidth: 1200,
		ExportQuality:  90,
		SessionTTL:     time.Minute,
		ShareTTL:       time.Minute,
		ExportRate:     1000,
		ExportBurst:    1000,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	catalog, err := templates.LoadFromDataDir(dir)
	require.NoError(t, err)

	h := NewHandler(Deps{
		Config:   cfg,
		Sessions: session.NewStore(cfg.SessionTTL, 1),
		Catalog:  catalog,
		Images:   templates.NewImages(dir),
		Captions: caption.New(1, 0),
		Links:    share.NewLinkSharer(cfg.PublicURL, cfg.ShareTTL),
		Ads:      ads.NewInjector("ca-pub-test", ads.DefaultSlots),
		Stats:    stats.NewCounter(),
	})
	r := gin.New()
	RegisterRoutes(r, h)
	return &testServer{r: r, dataDir: dir}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.r.ServeHTTP(w, req)
	return w
}

func (ts *testServer) upload(t *testing.T, id string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	buf := new(bytes.Buffer)
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("file", "pic.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/image", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	ts.r.ServeHTTP(w, req)
	return w
}

func (ts *testServer) newSession(t *testing.T) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var v session.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v.ID
}

func (ts *testServer) view(t *testing.T, id string) session.View {
	t.Helper()
	w := ts.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v session.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func pngOf(t *testing.T, w, h int, noisy bool) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	seed := uint32(2463534242)
	for i := range img.Pix {
		if noisy {
			seed ^= seed << 13
			seed ^= seed >> 17
			seed ^= seed << 5
			img.Pix[i] = uint8(seed)
		} else {
			img.Pix[i] = 0x80
		}
		if i%4 == 3 {
			img.Pix[i] = 0xff
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

type errorBody struct {
	Error  string `json:"error"`
	Notice struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"notice"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestHealthAndTemplates(t *testing.T) {
	ts := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/health", nil).Code)

	w := ts.do(t, http.MethodGet, "/api/templates?min_score=90", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Count     int                  `json:"count"`
		Templates []templates.Template `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)

	w = ts.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"memes_created":12478`)
}

func TestEditAndExportFlow(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.newSession(t)

	w := ts.upload(t, id, pngOf(t, 2000, 1000, false))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Image loaded!")

	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/caption/generate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	v := ts.view(t, id)
	assert.Contains(t, caption.Captions, v.Caption)
	assert.GreaterOrEqual(t, v.ViralScore, 70)

	w = ts.do(t, http.MethodPut, "/api/sessions/"+id+"/caption", gin.H{"caption": "TEST"})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPut, "/api/sessions/"+id+"/style", gin.H{"font_size_px": 40, "fill_color": "#FFD93D"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	v = ts.view(t, id)
	assert.Equal(t, 40, v.Style.FontSizePx)
	assert.Equal(t, "#FFD93D", v.Style.Fill.String())
	assert.Equal(t, "#000000", v.Style.Stroke.String())

	bounds := gin.H{"left": 0, "top": 0, "width": 800, "height": 400}
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/sessions/"+id+"/drag/begin", nil).Code)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/sessions/"+id+"/drag/move",
		gin.H{"pointer_x": 200, "pointer_y": 1000, "bounds": bounds}).Code)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/sessions/"+id+"/drag/end", nil).Code)
	v = ts.view(t, id)
	assert.Equal(t, 25.0, v.Position.X)
	assert.Equal(t, 95.0, v.Position.Y)
	assert.False(t, v.Dragging)

	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/preview", gin.H{"box": bounds})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"x":200`)
	assert.Contains(t, w.Body.String(), `"y":380`)

	w = ts.do(t, http.MethodGet, "/api/sessions/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename="ai-meme-\d+\.png"$`, w.Header().Get("Content-Disposition"))
	msg, err := new(mime.WordDecoder).DecodeHeader(w.Header().Get("X-Meme-Notice"))
	require.NoError(t, err)
	assert.Equal(t, notify.Downloaded.Message, msg)
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1200, 600), img.Bounds())

	w = ts.do(t, http.MethodGet, "/api/sessions/"+id+"/export?format=jpeg&quality=70", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

	w = ts.do(t, http.MethodGet, "/api/sessions/"+id+"/export?quality=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStyleOutOfRangeRejected(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.newSession(t)
	w := ts.do(t, http.MethodPut, "/api/sessions/"+id+"/style", gin.H{"font_size_px": 99})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Font size must be between 16 and 72px.", decodeError(t, w).Notice.Message)
	assert.Equal(t, 36, ts.view(t, id).Style.FontSizePx)

	for _, bad := range []string{"chartreuse", "#GGGGGG"} {
		w = ts.do(t, http.MethodPut, "/api/sessions/"+id+"/style", gin.H{"fill_color": bad})
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
		assert.Equal(t, "Colors must look like #RRGGBB.", decodeError(t, w).Notice.Message, bad)
	}
	assert.Equal(t, "#FFFFFF", ts.view(t, id).Style.Fill.String())
}

func TestPositionIsClamped(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.newSession(t)
	w := ts.do(t, http.MethodPut, "/api/sessions/"+id+"/position", gin.H{"x": -40, "y": 140})
	require.Equal(t, http.StatusOK, w.Code)
	v := ts.view(t, id)
	assert.Equal(t, 5.0, v.Position.X)
	assert.Equal(t, 95.0, v.Position.Y)
}

func TestOversizedUploadKeepsImage(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.MaxUploadBytes = 4096 })
	id := ts.newSession(t)

	small := pngOf(t, 10, 10, false)
	require.Less(t, len(small), 4096)
	require.Equal(t, http.StatusOK, ts.upload(t, id, small).Code)

	big := pngOf(t, 40, 40, true)
	require.Greater(t, len(big), 4096)
	w := ts.upload(t, id, big)
	require.Equal(t, http.StatusBadRequest, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "validation", e.Error)
	assert.Equal(t, "error", e.Notice.Level)
	assert.Equal(t, "Image too large! Please choose image under 5MB", e.Notice.Message)

	v := ts.view(t, id)
	assert.True(t, v.HasImage)
	assert.Equal(t, 10, v.ImageWidth)
}

func TestUploadZeroLimitUsesDefault(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.MaxUploadBytes = 0 })
	id := ts.newSession(t)
	w := ts.upload(t, id, pngOf(t, 40, 40, true))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 40, ts.view(t, id).ImageWidth)
}

func TestUploadRejectsNonImage(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.newSession(t)
	w := ts.upload(t, id, []byte("just some text, definitely not pixels"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, ts.view(t, id).HasImage)
}

func TestActionsWithoutImage(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.newSession(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/export"},
		{http.MethodPost, "/share"},
		{http.MethodPost, "/caption/generate"},
	} {
		w := ts.do(t, tc.method, "/api/sessions/"+id+tc.path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.path)
		assert.Equal(t, "Please select an image first!", decodeError(t, w).Notice.Message)
	}

	w := ts.do(t, http.MethodGet, "/api/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSelectTemplateResetsState(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.newSession(t)
	require.Equal(t, http.StatusOK, ts.upload(t, id, pngOf(t, 50, 50, false)).Code)
	ts.do(t, http.MethodPut, "/api/sessions/"+id+"/caption", gin.H{"caption": "old news"})
	ts.do(t, http.MethodPut, "/api/sessions/"+id+"/style", gin.H{"font_size_px": 70, "stroke_color": "#FF0000"})
	ts.do(t, http.MethodPut, "/api/sessions/"+id+"/position", gin.H{"x": 10, "y": 10})

	w := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/template", gin.H{"id": "drake"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Selected Drake template!")

	v := ts.view(t, id)
	assert.Equal(t, "", v.Caption)
	assert.Equal(t, 36, v.Style.FontSizePx)
	assert.Equal(t, "#000000", v.Style.Stroke.String())
	assert.Equal(t, 50.0, v.Position.X)
	assert.Equal(t, 85.0, v.Position.Y)
	assert.Equal(t, 95, v.ViralScore)
	assert.Equal(t, "template", v.ImageOrigin)
	assert.Equal(t, 640, v.ImageWidth)

	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/template", gin.H{"id": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/template", gin.H{"id": "doge"})
	assert.Equal(t, http.StatusNotFound, w.Code, "image file missing")
	assert.Equal(t, "drake", ts.view(t, id).ImageRef)
}

func TestShareNativeAndShared(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.newSession(t)
	require.Equal(t, http.StatusOK, ts.upload(t, id, pngOf(t, 30, 20, false)).Code)

	w := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/share", gin.H{"title": "my title", "text": "my text"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Method string `json:"method"`
		URL    string `json:"url"`
		QRURL  string `json:"qr_url"`
		Title  string `json:"title"`
		Text   string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "share", resp.Method)
	assert.Equal(t, share.DefaultTitle, resp.Title, "title is fixed")
	assert.Equal(t, share.DefaultText, resp.Text, "text is fixed")
	require.True(t, strings.HasPrefix(resp.URL, "https://memes.example/api/shared/"))

	path := strings.TrimPrefix(resp.URL, "https://memes.example")
	w = ts.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = ts.do(t, http.MethodGet, path+"/qr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	assert.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/shared/unknown", nil).Code)
}

func TestShareFallsBackToClipboard(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.newSession(t)
	require.Equal(t, http.StatusOK, ts.upload(t, id, pngOf(t, 30, 20, false)).Code)

	w := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/share", gin.H{"native": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"method":"clipboard"`)
	assert.Contains(t, w.Body.String(), `"data_uri":"data:image/png;base64,`)

	noLinks := newTestServer(t, func(c *config.Config) { c.PublicURL = "" })
	id = noLinks.newSession(t)
	require.Equal(t, http.StatusOK, noLinks.upload(t, id, pngOf(t, 30, 20, false)).Code)
	w = noLinks.do(t, http.MethodPost, "/api/sessions/"+id+"/share", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"method":"clipboard"`)
}

func TestCaptionStream(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.newSession(t)
	require.Equal(t, http.StatusOK, ts.upload(t, id, pngOf(t, 30, 20, false)).Code)
	ts.do(t, http.MethodPut, "/api/sessions/"+id+"/caption", gin.H{"caption": "abc"})

	w := ts.do(t, http.MethodGet, "/api/sessions/"+id+"/caption/stream", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.True(t, strings.HasPrefix(body, "event:notice\n"), body)
	assert.Contains(t, body, `"level":"loading"`)
	assert.Equal(t, 3, strings.Count(body, "event:caption"))
	assert.Contains(t, body, "data:ab\n")
	assert.Contains(t, body, "event:done")
}

func TestAdSlots(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.newSession(t)

	var sn ads.Snippet
	w := ts.do(t, http.MethodGet, "/api/sessions/"+id+"/ads/header-ad", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sn))
	assert.NotEmpty(t, sn.Script)

	var again ads.Snippet
	w = ts.do(t, http.MethodGet, "/api/sessions/"+id+"/ads/header-ad", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	assert.Empty(t, again.Script, "script injected once per slot per session")
	assert.NotEmpty(t, again.Markup)

	w = ts.do(t, http.MethodGet, "/api/sessions/"+id+"/ads/sidebar", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportRateLimited(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) {
		c.ExportRate = 0.001
		c.ExportBurst = 1
	})
	id := ts.newSession(t)
	require.Equal(t, http.StatusOK, ts.upload(t, id, pngOf(t, 30, 20, false)).Code)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/sessions/"+id+"/export", nil).Code)
	w := ts.do(t, http.MethodGet, "/api/sessions/"+id+"/export", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", decodeError(t, w).Error)
}

func TestQR(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(t, http.MethodGet, "/api/qr?text=hello&size=128", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/qr", nil).Code)
}

func TestPalette(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(t, http.MethodGet, "/api/palette", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Colors  []imagepkg.Color      `json:"colors"`
		Default imagepkg.CaptionStyle `json:"default"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, imagepkg.Palette, resp.Colors)
	assert.Equal(t, 36, resp.Default.FontSizePx)
}
