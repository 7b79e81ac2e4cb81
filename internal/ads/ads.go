// Package ads produces the markup for third-party ad slots. Rendering is the
// ad network's business; this package only decides what to emit.
package ads

import (
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

const (
	DefaultClient    = "ca-pub-YOUR_PUBLISHER_ID"
	DefaultScriptURL = "https://pagead2.googlesyndication.com/pagead/js/adsbygoogle.js"
)

var ErrUnknownSlot = errors.New("unknown ad slot")

type Slot struct {
	ID     string `json:"id"`
	AdUnit string `json:"ad_unit"`
}

var DefaultSlots = []Slot{
	{ID: "header-ad", AdUnit: "HEADER_AD_UNIT_ID"},
	{ID: "below-meme-ad", AdUnit: "BELOW_MEME_AD_UNIT_ID"},
	{ID: "footer-ad", AdUnit: "FOOTER_AD_UNIT_ID"},
}

// Snippet is what the client drops into a slot's container.
type Snippet struct {
	Slot   string        `json:"slot"`
	Script template.HTML `json:"script,omitempty"`
	Markup template.HTML `json:"markup"`
}

type Injector struct {
	client    string
	scriptURL string
	slots     map[string]Slot
}

func NewInjector(client string, slots []Slot) *Injector {
	if client == "" {
		client = DefaultClient
	}
	in := &Injector{client: client, scriptURL: DefaultScriptURL, slots: map[string]Slot{}}
	for _, s := range slots {
		in.slots[s.ID] = s
	}
	return in
}

var (
	scriptTmpl = template.Must(template.New("script").Parse(
		`<script async src="{{.}}" crossorigin="anonymous"></script>`))
	markupTmpl = template.Must(template.New("markup").Parse(
		`<ins class="adsbygoogle" style="display:block" data-ad-client="{{.Client}}" data-ad-slot="{{.AdUnit}}" data-ad-format="auto" data-full-width-responsive="true"></ins>` +
			`<script>(window.adsbygoogle = window.adsbygoogle || []).push({});</script>`))
)

// Snippet renders slotID. firstForSession decides whether the loader script
// is included; callers pass true at most once per slot per session.
func (in *Injector) Snippet(slotID string, firstForSession bool) (Snippet, error) {
	s, ok := in.slots[slotID]
	if !ok {
		return Snippet{}, fmt.Errorf("%w: %q", ErrUnknownSlot, slotID)
	}
	out := Snippet{Slot: s.ID}
	var b strings.Builder
	if firstForSession {
		u := in.scriptURL + "?client=" + url.QueryEscape(in.client)
		if err := scriptTmpl.Execute(&b, u); err != nil {
			return Snippet{}, err
		}
		out.Script = template.HTML(b.String())
		b.Reset()
	}
	if err := markupTmpl.Execute(&b, struct{ Client, AdUnit string }{in.client, s.AdUnit}); err != nil {
		return Snippet{}, err
	}
	out.Markup = template.HTML(b.String())
	return out, nil
}

func (in *Injector) Has(slotID string) bool {
	_, ok := in.slots[slotID]
	return ok
}
