package imagepkg

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/youruser/memeapp/internal/placement"
)

const DefaultMaxWidth = 1200

// RenderOptions controls the output raster and its encoding.
type RenderOptions struct {
	MaxWidth int
	Format   Format
	Quality  int
	// Now stamps the filename; time.Now when nil.
	Now func() time.Time
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.Format == "" {
		o.Format = FormatPNG
	}
	if o.Quality <= 0 {
		o.Quality = DefaultQuality
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Artifact is an encoded export, ready to be downloaded or shared.
type Artifact struct {
	Data     []byte
	Format   Format
	Width    int
	Height   int
	Filename string
}

func (a *Artifact) ContentType() string { return a.Format.ContentType() }

// OutputSize returns the export dimensions for a w x h source: scaled down to
// fit maxWidth, never scaled up.
func OutputSize(w, h, maxWidth int) (ow, oh int, scale float64) {
	scale = math.Min(float64(maxWidth)/float64(w), 1)
	ow = max(int(math.Round(float64(w)*scale)), 1)
	oh = max(int(math.Round(float64(h)*scale)), 1)
	return ow, oh, scale
}

// Render composes caption over src and encodes the result.
func Render(ctx context.Context, src image.Image, caption string, style CaptionStyle, pos placement.Position, opts RenderOptions) (*Artifact, error) {
	if src == nil {
		return nil, ErrNoImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	out, err := Compose(src, caption, style, pos, opts.MaxWidth)
	if err != nil {
		return nil, err
	}
	data, err := EncodeBytes(out, opts.Format, opts.Quality)
	if err != nil {
		return nil, err
	}
	b := out.Bounds()
	return &Artifact{
		Data:     data,
		Format:   opts.Format,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Filename: fmt.Sprintf("ai-meme-%d.%s", opts.Now().UnixMilli(), opts.Format.Ext()),
	}, nil
}

// Compose draws src scaled to the output size and paints the caption with a
// stroke pass under a fill pass. An empty caption yields the scaled image.
func Compose(src image.Image, caption string, style CaptionStyle, pos placement.Position, maxWidth int) (image.Image, error) {
	if src == nil {
		return nil, ErrNoImage
	}
	sb := src.Bounds()
	if sb.Dx() <= 0 || sb.Dy() <= 0 {
		return nil, ErrNoImage
	}
	w, h, scale := OutputSize(sb.Dx(), sb.Dy(), maxWidth)

	var base *image.NRGBA
	if w == sb.Dx() && h == sb.Dy() {
		base = imaging.Clone(src)
	} else {
		base = imaging.Resize(src, w, h, imaging.Lanczos)
	}
	if caption == "" {
		return base, nil
	}

	f, err := loadCaptionFont()
	if err != nil {
		return nil, fmt.Errorf("loading caption font: %w", err)
	}
	text, err := layoutText(f, caption, float64(style.FontSizePx)*scale)
	if err != nil {
		return nil, fmt.Errorf("laying out caption: %w", err)
	}

	pos = pos.Clamped()
	ax := pos.X / 100 * float64(w)
	ay := pos.Y / 100 * float64(h)

	dc := gg.NewContextForImage(base)
	text.appendPath(dc, ax-text.advance/2, ay)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.SetLineWidth(math.Max(3*scale, 2))
	dc.SetColor(style.Stroke)
	dc.StrokePreserve()
	dc.SetColor(style.Fill)
	dc.Fill()

	return dc.Image(), nil
}
