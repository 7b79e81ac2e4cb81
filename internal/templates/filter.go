package templates

import "strings"

type FilterOptions struct {
	FreeWords     string
	MinViralScore int
	Limit         int
}

// Filter keeps templates whose id or name contains every word, case-insensitive.
func Filter(list []Template, opt FilterOptions) []Template {
	kw := strings.Fields(strings.ToLower(opt.FreeWords))
	out := []Template{}
	for _, t := range list {
		if t.ViralScore < opt.MinViralScore {
			continue
		}
		ok := true
		for _, k := range kw {
			if !strings.Contains(strings.ToLower(t.Name), k) &&
				!strings.Contains(strings.ToLower(t.ID), k) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		out = append(out, t)
		if opt.Limit > 0 && len(out) == opt.Limit {
			break
		}
	}
	return out
}
