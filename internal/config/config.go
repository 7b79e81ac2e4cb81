package config

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/shouni/go-utils/envutil"
)

const (
	DefaultPort               = "8080"
	DefaultDataDir            = "data"
	DefaultMaxUploadBytes     = 5 << 20
	DefaultMaxOutputWidth     = 1200
	DefaultExportQuality      = 90
	DefaultCaptionDelay       = 1500 * time.Millisecond
	DefaultTypewriterInterval = 50 * time.Millisecond
	DefaultSessionTTL         = time.Hour
	DefaultShareTTL           = 15 * time.Minute
	DefaultExportRate         = 10.0
	DefaultExportBurst        = 20
	DefaultAdClient           = "ca-pub-YOUR_PUBLISHER_ID"
)

type Config struct {
	Port               string
	GinMode            string
	DataDir            string
	PublicURL          string
	MaxUploadBytes     int64
	MaxOutputWidth     int
	ExportQuality      int
	CaptionDelay       time.Duration
	TypewriterInterval time.Duration
	CaptionSeed        uint64
	SessionTTL         time.Duration
	ShareTTL           time.Duration
	ExportRate         float64
	ExportBurst        int
	AdClient           string
	WarmTemplates      bool
}

// Load reads the environment. Malformed numbers fall back to defaults with a
// warning rather than aborting startup.
func Load() Config {
	port := env("PORT", DefaultPort)
	return Config{
		Port:               port,
		GinMode:            env("GIN_MODE", "debug"),
		DataDir:            env("DATA_DIR", DefaultDataDir),
		PublicURL:          env("PUBLIC_URL", "http://localhost:"+port),
		MaxUploadBytes:     getInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes, 1),
		MaxOutputWidth:     int(getInt64("MAX_OUTPUT_WIDTH", DefaultMaxOutputWidth, 1)),
		ExportQuality:      int(getInt64("EXPORT_QUALITY", DefaultExportQuality, 1)),
		CaptionDelay:       getDuration("CAPTION_DELAY", DefaultCaptionDelay),
		TypewriterInterval: getDuration("TYPEWRITER_INTERVAL", DefaultTypewriterInterval),
		CaptionSeed:        uint64(getInt64("CAPTION_SEED", 0, 0)),
		SessionTTL:         getDuration("SESSION_TTL", DefaultSessionTTL),
		ShareTTL:           getDuration("SHARE_TTL", DefaultShareTTL),
		ExportRate:         getFloat("EXPORT_RATE", DefaultExportRate),
		ExportBurst:        int(getInt64("EXPORT_BURST", DefaultExportBurst, 1)),
		AdClient:           env("AD_CLIENT", DefaultAdClient),
		WarmTemplates:      getBool("WARM_TEMPLATES", true),
	}
}

// env treats a set-but-empty variable the same as an unset one.
func env(key, def string) string {
	if v := envutil.GetEnv(key, def); v != "" {
		return v
	}
	return def
}

// getInt64 falls back to def for values below floor.
func getInt64(key string, def, floor int64) int64 {
	s := env(key, "")
	if s == "" {
		return def
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < floor {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", s)
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	s := env(key, "")
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		slog.Warn("ignoring invalid number setting", "key", key, "value", s)
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	s := env(key, "")
	if s == "" {
		return def
	}
	v, err := time.ParseDuration(s)
	if err != nil || v < 0 {
		slog.Warn("ignoring invalid duration setting", "key", key, "value", s)
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	s := env(key, "")
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		slog.Warn("ignoring invalid boolean setting", "key", key, "value", s)
		return def
	}
	return v
}
