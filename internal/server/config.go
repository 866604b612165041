package server

import (
	"time"

	"github.com/victornm/tutormate/internal/attempt"
	"github.com/victornm/tutormate/internal/llm"
	"github.com/victornm/tutormate/internal/storage"
	"github.com/victornm/tutormate/internal/telemetry"
	"github.com/victornm/tutormate/internal/tutor"
	"github.com/victornm/tutormate/internal/window"
)

type Config struct {
	HTTP struct {
		Port        int32
		CORSOrigins []string
	}

	GRPC struct {
		Port int32
	}

	Log     telemetry.LogConfig
	Tracing telemetry.TracingConfig

	Game struct {
		Window   time.Duration
		Cooldown time.Duration
	}

	Storage storage.Config

	Redis struct {
		Leaderboard RedisConfig
		Pubsub      RedisConfig
		Tutor       RedisConfig
	}

	// LLM.Provider "none" runs the tutor on its fallbacks only.
	LLM llm.Config

	Tutor struct {
		SessionTTL          time.Duration
		QuestionsPerConcept int
	}

	Admin struct {
		Token string
	}
}

type RedisConfig struct {
	Addrs  []string
	Pass   string
	Prefix string
}

// DefaultConfig is merged under the config file; the file and the
// environment override it.
func DefaultConfig() Config {
	var c Config

	c.HTTP.Port = 8080
	c.HTTP.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	c.GRPC.Port = 8081

	c.Log = telemetry.LogConfig{Level: "info", Format: "text"}
	c.Tracing = telemetry.TracingConfig{SampleRatio: 1, ServiceName: "tutormate"}

	c.Game.Window = window.DefaultDuration
	c.Game.Cooldown = attempt.DefaultCooldown

	c.Storage.Driver = storage.DriverSQLite
	c.Storage.Timeout = storage.DefaultTimeout
	c.Storage.SQLite.Path = "tutormate.db"

	local := RedisConfig{Addrs: []string{"localhost:6379"}}
	c.Redis.Leaderboard, c.Redis.Pubsub, c.Redis.Tutor = local, local, local
	c.Redis.Leaderboard.Prefix = "local:leaderboard"
	c.Redis.Pubsub.Prefix = "local:pubsub"
	c.Redis.Tutor.Prefix = "local:tutor"

	c.LLM = llm.DefaultConfig()

	c.Tutor.SessionTTL = tutor.DefaultSessionTTL
	c.Tutor.QuestionsPerConcept = tutor.DefaultQuestionsPerConcept

	return c
}
