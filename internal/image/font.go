package imagepkg

import (
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

var (
	captionFontOnce sync.Once
	captionFont     *sfnt.Font
	captionFontErr  error
)

// loadCaptionFont parses the embedded bold face once. sfnt.Font is safe for
// concurrent use as long as every caller brings its own sfnt.Buffer.
func loadCaptionFont() (*sfnt.Font, error) {
	captionFontOnce.Do(func() {
		captionFont, captionFontErr = sfnt.Parse(gobold.TTF)
	})
	return captionFont, captionFontErr
}

type point struct{ X, Y float64 }

type pathOp struct {
	op  sfnt.SegmentOp
	pts [3]point
}

// textOutline is a laid-out line of glyph contours with its origin on the
// left end of the alphabetic baseline, y growing downwards.
type textOutline struct {
	ops     []pathOp
	advance float64
}

// layoutText converts s into glyph outlines at sizePx pixels per em.
// Runes the face has no glyph for are skipped.
func layoutText(f *sfnt.Font, s string, sizePx float64) (*textOutline, error) {
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(sizePx * 64)
	out := &textOutline{}

	var pen fixed.Int26_6
	var prev sfnt.GlyphIndex
	for _, r := range s {
		gi, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return nil, err
		}
		if gi == 0 {
			continue
		}
		if prev != 0 {
			if k, err := f.Kern(&buf, prev, gi, ppem, font.HintingNone); err == nil {
				pen += k
			}
		}
		segs, err := f.LoadGlyph(&buf, gi, ppem, nil)
		if err != nil {
			return nil, err
		}
		x0 := fixedToFloat(pen)
		for _, seg := range segs {
			op := pathOp{op: seg.Op}
			for i := 0; i < segmentArgs(seg.Op); i++ {
				op.pts[i] = point{X: x0 + fixedToFloat(seg.Args[i].X), Y: fixedToFloat(seg.Args[i].Y)}
			}
			out.ops = append(out.ops, op)
		}
		adv, err := f.GlyphAdvance(&buf, gi, ppem, font.HintingNone)
		if err != nil {
			return nil, err
		}
		pen += adv
		prev = gi
	}
	out.advance = fixedToFloat(pen)
	return out, nil
}

func segmentArgs(op sfnt.SegmentOp) int {
	switch op {
	case sfnt.SegmentOpQuadTo:
		return 2
	case sfnt.SegmentOpCubeTo:
		return 3
	}
	return 1
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// appendPath adds the outline to dc's current path, translated by (dx, dy).
func (t *textOutline) appendPath(dc *gg.Context, dx, dy float64) {
	started := false
	for _, op := range t.ops {
		p := op.pts
		switch op.op {
		case sfnt.SegmentOpMoveTo:
			if started {
				dc.ClosePath()
			}
			dc.MoveTo(p[0].X+dx, p[0].Y+dy)
			started = true
		case sfnt.SegmentOpLineTo:
			dc.LineTo(p[0].X+dx, p[0].Y+dy)
		case sfnt.SegmentOpQuadTo:
			dc.QuadraticTo(p[0].X+dx, p[0].Y+dy, p[1].X+dx, p[1].Y+dy)
		case sfnt.SegmentOpCubeTo:
			dc.CubicTo(p[0].X+dx, p[0].Y+dy, p[1].X+dx, p[1].Y+dy, p[2].X+dx, p[2].Y+dy)
		}
	}
	if started {
		dc.ClosePath()
	}
}
