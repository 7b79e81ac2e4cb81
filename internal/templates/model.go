package templates

import "errors"

var ErrNotFound = errors.New("template not found")

type Template struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	ViralScore int    `json:"viral_score"`
}

// Builtin is the catalog shipped with the app. URLs are relative to the data dir.
var Builtin = []Template{
	{ID: "drake", Name: "Drake", URL: "/templates/drake.jpg", ViralScore: 95},
	{ID: "doge", Name: "Doge", URL: "/templates/doge.jpg", ViralScore: 88},
	{ID: "distracted", Name: "Distracted BF", URL: "/templates/distracted.jpg", ViralScore: 92},
	{ID: "button", Name: "Button Meme", URL: "/templates/button.jpg", ViralScore: 85},
	{ID: "patrick", Name: "Patrick Star", URL: "/templates/patrick.jpg", ViralScore: 78},
	{ID: "spongebob", Name: "Spongebob", URL: "/templates/spongebob.jpg", ViralScore: 82},
}

// Catalog is a read-only list of templates.
type Catalog struct {
	list []Template
	byID map[string]Template
}

func NewCatalog(list []Template) *Catalog {
	c := &Catalog{byID: make(map[string]Template, len(list))}
	for _, t := range list {
		if _, dup := c.byID[t.ID]; dup {
			continue
		}
		c.byID[t.ID] = t
		c.list = append(c.list, t)
	}
	return c
}

func (c *Catalog) All() []Template {
	out := make([]Template, len(c.list))
	copy(out, c.list)
	return out
}

func (c *Catalog) Get(id string) (Template, error) {
	t, ok := c.byID[id]
	if !ok {
		return Template{}, ErrNotFound
	}
	return t, nil
}
