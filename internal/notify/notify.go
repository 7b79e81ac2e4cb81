package notify

import (
	"context"
	"errors"

	"github.com/youruser/memeapp/internal/ads"
	imagepkg "github.com/youruser/memeapp/internal/image"
	"github.com/youruser/memeapp/internal/session"
	"github.com/youruser/memeapp/internal/share"
	"github.com/youruser/memeapp/internal/templates"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelLoading Level = "loading"
)

// Notice is a transient, non-blocking message for the user.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func Success(msg string) Notice { return Notice{Level: LevelSuccess, Message: msg} }
func Error(msg string) Notice   { return Notice{Level: LevelError, Message: msg} }
func Loading(msg string) Notice { return Notice{Level: LevelLoading, Message: msg} }

var (
	ImageLoaded     = Success("Image loaded! Ready for AI magic! ✨")
	CaptionBrewing  = Loading("AI is brewing some comedy... ☕")
	CaptionReady    = Success("AI comedy delivered! 🎭")
	ViralDetected   = Success("🔥 Viral potential detected! This could blow up!")
	Downloaded      = Success("Meme downloaded! Share it far and wide! 🚀")
	Shared          = Success("Shared successfully! 🎉")
	CopiedClipboard = Success("Meme copied to clipboard! 📋")
)

func TemplateSelected(name string) Notice {
	return Success("Selected " + name + " template!")
}

// Kind classifies err for API responses.
func Kind(err error) string {
	var (
		verr *session.ValidationError
		eerr *imagepkg.EncodingError
		serr *share.ShareFailedError
		cerr *share.ClipboardError
	)
	switch {
	case errors.As(err, &verr):
		return "validation"
	case errors.Is(err, imagepkg.ErrNoImage):
		return "validation"
	case errors.As(err, &eerr):
		return "encoding"
	case errors.As(err, &serr):
		return "share_failed"
	case errors.As(err, &cerr):
		return "clipboard_failed"
	case errors.Is(err, session.ErrNotFound), errors.Is(err, templates.ErrNotFound),
		errors.Is(err, ads.ErrUnknownSlot), errors.Is(err, share.ErrLinkNotFound):
		return "not_found"
	case errors.Is(err, session.ErrSuperseded):
		return "superseded"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "internal"
}

// FromError turns a failure into the notice shown to the user.
func FromError(err error) Notice {
	var verr *session.ValidationError
	if errors.As(err, &verr) {
		switch {
		case verr.Field == "file" && verr.Reason == session.ReasonTooLarge:
			return Error("Image too large! Please choose image under 5MB")
		case verr.Field == "file":
			return Error("That file doesn't look like an image. Try a PNG or JPEG!")
		case verr.Field == "image":
			return Error("Please select an image first!")
		case verr.Field == "style" && verr.Reason == session.ReasonOutOfRange:
			return Error("Font size must be between 16 and 72px.")
		case verr.Field == "color":
			return Error("Colors must look like #RRGGBB.")
		}
		return Error("Invalid " + verr.Field + ".")
	}
	switch Kind(err) {
	case "validation":
		return Error("No meme to download!")
	case "encoding":
		return Error("Failed to download meme. Try again!")
	case "share_failed", "clipboard_failed":
		return Error("Sharing failed. Try downloading instead!")
	case "not_found":
		return Error("That doesn't exist (anymore). Start a new meme!")
	case "superseded":
		return Error("Image changed before the caption was ready. Generate again!")
	case "cancelled":
		return Error("AI is taking a coffee break ☕ Try again!")
	}
	return Error("Something went wrong. Try again!")
}
