// Package share hands an exported meme to a native share target, falling back
// to a clipboard write only when no share target exists.
package share

import (
	"context"
	"errors"
	"fmt"
)

const (
	DefaultTitle = "Check out this AI-generated meme!"
	DefaultText  = "I created this hilarious meme using AI Meme Factory! 🤖"
)

// ErrShareUnsupported means the platform has no native share target.
var ErrShareUnsupported = errors.New("native share unavailable")

// ShareFailedError means a share target exists but the invocation failed.
// The clipboard is not tried in that case.
type ShareFailedError struct{ Err error }

func (e *ShareFailedError) Error() string { return "share failed: " + e.Err.Error() }
func (e *ShareFailedError) Unwrap() error { return e.Err }

// ClipboardError means the clipboard fallback itself failed.
type ClipboardError struct{ Err error }

func (e *ClipboardError) Error() string { return "clipboard write failed: " + e.Err.Error() }
func (e *ClipboardError) Unwrap() error { return e.Err }

type Payload struct {
	Data        []byte
	Filename    string
	ContentType string
	Title       string
	Text        string
}

// Result is what the share target returned, if anything.
type Result struct {
	URL   string `json:"url,omitempty"`
	Token string `json:"token,omitempty"`
}

type Sharer interface {
	Share(ctx context.Context, p Payload) (Result, error)
}

type Clipboard interface {
	Write(ctx context.Context, contentType string, data []byte) error
}

type Method string

const (
	MethodNative    Method = "share"
	MethodClipboard Method = "clipboard"
)

type Outcome struct {
	Method Method `json:"method"`
	Result Result `json:"result"`
}

// Service picks between the native target and the clipboard.
// Either may be nil.
type Service struct {
	Native    Sharer
	Clipboard Clipboard
}

func (s *Service) Share(ctx context.Context, p Payload) (Outcome, error) {
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if p.Text == "" {
		p.Text = DefaultText
	}
	if s.Native != nil {
		res, err := s.Native.Share(ctx, p)
		switch {
		case err == nil:
			return Outcome{Method: MethodNative, Result: res}, nil
		case !errors.Is(err, ErrShareUnsupported):
			return Outcome{}, &ShareFailedError{Err: err}
		}
	}
	if s.Clipboard == nil {
		return Outcome{}, &ClipboardError{Err: fmt.Errorf("no clipboard: %w", ErrShareUnsupported)}
	}
	if err := s.Clipboard.Write(ctx, p.ContentType, p.Data); err != nil {
		return Outcome{}, &ClipboardError{Err: err}
	}
	return Outcome{Method: MethodClipboard}, nil
}
