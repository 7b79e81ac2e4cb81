package stats

import "sync"

const (
	SeedMemesCreated = 12478
	SeedViralScore   = 76
	// CelebrateAbove is the viral score past which a new caption is celebrated.
	CelebrateAbove = 85
	ActiveCreators = "2.4K"
)

type Snapshot struct {
	MemesCreated   int64  `json:"memes_created"`
	ViralScore     int    `json:"viral_score"`
	ActiveCreators string `json:"active_creators"`
}

// Counter tracks the headline numbers shown above the editor.
type Counter struct {
	mu      sync.Mutex
	created int64
	score   int
}

func NewCounter() *Counter {
	return &Counter{created: SeedMemesCreated, score: SeedViralScore}
}

// CaptionDelivered counts one more meme and reports whether score warrants
// a celebration.
func (c *Counter) CaptionDelivered(score int) bool {
	c.mu.Lock()
	c.created++
	c.mu.Unlock()
	return Celebrate(score)
}

// ObserveScore records the most recent viral score.
func (c *Counter) ObserveScore(score int) {
	c.mu.Lock()
	c.score = score
	c.mu.Unlock()
}

func (c *Counter) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{MemesCreated: c.created, ViralScore: c.score, ActiveCreators: ActiveCreators}
}

func Celebrate(score int) bool { return score > CelebrateAbove }
