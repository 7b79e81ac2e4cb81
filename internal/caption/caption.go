// Package caption picks meme captions. There is no model behind it: a caption
// is a uniform pick from a fixed list, returned after an artificial delay.
package caption

import (
	"context"
	mrand "math/rand/v2"
	"sync"
	"time"
)

const (
	DefaultDelay    = 1500 * time.Millisecond
	DefaultInterval = 50 * time.Millisecond
)

var Captions = []string{
	"When you finally understand the assignment at 11:58 PM 🕛",
	"My brain trying to remember why I walked into this room 🧠",
	"Me vs. Me trying to be productive on a Monday 😴",
	"When the WiFi connects automatically at your crush's house 📶",
	"My bank account after I get paid vs. 2 days later 💸",
	"Trying to explain memes to my parents be like 👴",
	"When you hear someone opening chips in the other room 🏃",
	"My confidence level: 100% in shower, 0% in real life 🚿",
	"When the teacher says 'find a partner' and you make eye contact with nobody 👀",
	"My sleep schedule during weekends vs weekdays 🛌",
	"When you're the last one to know the gossip 😶",
	"My phone at 1% vs me looking for charger 📱",
	"When you try to be cool in front of your crush 😎",
	"My diet starts tomorrow... probably 🍕",
	"When someone says 'I don't like memes' 😱",
}

type Generator struct {
	mu       sync.Mutex
	rng      *mrand.Rand
	delay    time.Duration
	captions []string
}

// New returns a generator. A zero seed draws one from the clock.
func New(seed uint64, delay time.Duration) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		rng:      mrand.New(mrand.NewPCG(seed, seed>>1|1)),
		delay:    delay,
		captions: Captions,
	}
}

// Generate waits out the delay, then returns a random caption.
// Concurrent calls are not coalesced.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	if g.delay > 0 {
		t := time.NewTimer(g.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}
	return g.Pick(), nil
}

func (g *Generator) Pick() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.captions[g.rng.IntN(len(g.captions))]
}

// Typewriter returns s revealed one rune at a time.
func Typewriter(s string) []string {
	var out []string
	for i := range s {
		if i > 0 {
			out = append(out, s[:i])
		}
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}
