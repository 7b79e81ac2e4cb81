package share

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const DefaultLinkTTL = 15 * time.Minute

var ErrLinkNotFound = errors.New("shared meme not found or expired")

// LinkSharer publishes a payload under a short-lived URL. Without a public
// base URL there is nothing to link to, which is reported as unsupported.
type LinkSharer struct {
	baseURL string
	c       *cache.Cache
}

func NewLinkSharer(baseURL string, ttl time.Duration) *LinkSharer {
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	return &LinkSharer{
		baseURL: strings.TrimRight(baseURL, "/"),
		c:       cache.New(ttl, 2*ttl),
	}
}

func (l *LinkSharer) Share(ctx context.Context, p Payload) (Result, error) {
	if l.baseURL == "" {
		return Result{}, ErrShareUnsupported
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(p.Data) == 0 {
		return Result{}, errors.New("empty payload")
	}
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return Result{}, err
	}
	token := hex.EncodeToString(b[:])
	l.c.SetDefault(token, p)
	return Result{Token: token, URL: l.URL(token)}, nil
}

func (l *LinkSharer) URL(token string) string {
	return l.baseURL + "/api/shared/" + token
}

func (l *LinkSharer) Get(token string) (Payload, error) {
	v, ok := l.c.Get(token)
	if !ok {
		return Payload{}, ErrLinkNotFound
	}
	return v.(Payload), nil
}

// InlineClipboard hands the bytes back to the caller, which writes them to
// the user's clipboard on the client side.
type InlineClipboard struct {
	ContentType string
	Data        []byte
}

func (c *InlineClipboard) Write(_ context.Context, contentType string, data []byte) error {
	if len(data) == 0 {
		return errors.New("nothing to copy")
	}
	c.ContentType = contentType
	c.Data = data
	return nil
}

func (c *InlineClipboard) DataURI() string {
	if len(c.Data) == 0 {
		return ""
	}
	return "data:" + c.ContentType + ";base64," + base64.StdEncoding.EncodeToString(c.Data)
}
