package session

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/h2non/filetype"

	imagepkg "github.com/youruser/memeapp/internal/image"
	"github.com/youruser/memeapp/internal/placement"
)

const DefaultMaxUploadBytes = 5 << 20

// MaxUploadPixels bounds width*height of an upload before it is decoded.
const MaxUploadPixels = 50_000_000

// SourceImage is a fully decoded image plus where it came from.
type SourceImage struct {
	Image  image.Image
	Origin string
	Ref    string
}

// DecodeUpload validates and decodes an uploaded file. It runs before the
// session is touched, so a rejected upload leaves the current image in place.
func DecodeUpload(name string, data []byte, maxBytes int64) (*SourceImage, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if int64(len(data)) > maxBytes {
		return nil, &ValidationError{Field: "file", Reason: ReasonTooLarge,
			Err: fmt.Errorf("%d bytes exceeds %d", len(data), maxBytes)}
	}
	if !filetype.IsImage(data) {
		return nil, &ValidationError{Field: "file", Reason: ReasonNotImage}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &ValidationError{Field: "file", Reason: ReasonUndecodable, Err: err}
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > MaxUploadPixels {
		return nil, &ValidationError{Field: "file", Reason: ReasonTooLarge,
			Err: fmt.Errorf("%dx%d exceeds %d pixels", cfg.Width, cfg.Height, MaxUploadPixels)}
	}
	img, err := imagepkg.Decode(data)
	if err != nil {
		return nil, &ValidationError{Field: "file", Reason: ReasonUndecodable, Err: err}
	}
	return &SourceImage{Image: img, Origin: "upload", Ref: name}, nil
}

// Session is the editing state of one user. Callers go through Store.With,
// which holds mu for the duration of a mutation.
type Session struct {
	mu sync.Mutex

	ID         string
	Source     *SourceImage
	Caption    string
	Style      imagepkg.CaptionStyle
	Placement  *placement.Controller
	ViralScore int
	// Generation increments whenever the image is replaced.
	Generation uint64
	adsServed  map[string]bool
}

func newSession(id string) *Session {
	return &Session{
		ID:        id,
		Style:     imagepkg.DefaultStyle(),
		Placement: placement.NewController(),
		adsServed: make(map[string]bool),
	}
}

// ReplaceImage swaps the source and resets everything derived from the old one.
func (s *Session) ReplaceImage(src *SourceImage, viralScore int) {
	s.Source = src
	s.Caption = ""
	s.Style = imagepkg.DefaultStyle()
	s.Placement.Reset()
	s.ViralScore = viralScore
	s.Generation++
}

// RequireImage fails when no image has been chosen yet.
func (s *Session) RequireImage() error {
	if s.Source == nil || s.Source.Image == nil {
		return &ValidationError{Field: "image", Reason: ReasonMissing}
	}
	return nil
}

func (s *Session) SetStyle(style imagepkg.CaptionStyle) error {
	if err := style.Validate(); err != nil {
		return &ValidationError{Field: "style", Reason: ReasonOutOfRange, Err: err}
	}
	s.Style = style
	return nil
}

// ApplyCaption stores a generated caption unless the image changed since gen.
func (s *Session) ApplyCaption(caption string, gen uint64) error {
	if s.Generation != gen {
		return ErrSuperseded
	}
	s.Caption = caption
	return nil
}

// MarkAd records that slot's script was served and reports whether this was
// the first time.
func (s *Session) MarkAd(slot string) bool {
	if s.adsServed[slot] {
		return false
	}
	s.adsServed[slot] = true
	return true
}

// View is the JSON shape of a session.
type View struct {
	ID          string                `json:"id"`
	HasImage    bool                  `json:"has_image"`
	ImageOrigin string                `json:"image_origin,omitempty"`
	ImageRef    string                `json:"image_ref,omitempty"`
	ImageWidth  int                   `json:"image_width,omitempty"`
	ImageHeight int                   `json:"image_height,omitempty"`
	Caption     string                `json:"caption"`
	Style       imagepkg.CaptionStyle `json:"style"`
	Position    placement.Position    `json:"position"`
	Dragging    bool                  `json:"dragging"`
	ViralScore  int                   `json:"viral_score"`
	Generation  uint64                `json:"generation"`
}

func (s *Session) View() View {
	v := View{
		ID:         s.ID,
		Caption:    s.Caption,
		Style:      s.Style,
		Position:   s.Placement.Position(),
		Dragging:   s.Placement.Dragging(),
		ViralScore: s.ViralScore,
		Generation: s.Generation,
	}
	if s.Source != nil && s.Source.Image != nil {
		b := s.Source.Image.Bounds()
		v.HasImage = true
		v.ImageOrigin = s.Source.Origin
		v.ImageRef = s.Source.Ref
		v.ImageWidth = b.Dx()
		v.ImageHeight = b.Dy()
	}
	return v
}
