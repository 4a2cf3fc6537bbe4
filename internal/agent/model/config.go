package model

import "time"

// ================ Config ================
type TierConfig struct {
	GuestModel       string  `envconfig:"TIER_GUEST_MODEL" default:"gemini-2.5-flash-lite"`
	GuestShortTokens int     `envconfig:"TIER_GUEST_SHORT_TOKENS" default:"400"`
	GuestLongTokens  int     `envconfig:"TIER_GUEST_LONG_TOKENS" default:"1200"`
	GuestTemperature float32 `envconfig:"TIER_GUEST_TEMPERATURE" default:"0.5"`

	UserModel       string  `envconfig:"TIER_USER_MODEL" default:"gemini-2.5-flash"`
	UserShortTokens int     `envconfig:"TIER_USER_SHORT_TOKENS" default:"600"`
	UserLongTokens  int     `envconfig:"TIER_USER_LONG_TOKENS" default:"2000"`
	UserTemperature float32 `envconfig:"TIER_USER_TEMPERATURE" default:"0.6"`

	PremiumModel       string  `envconfig:"TIER_PREMIUM_MODEL" default:"gemini-2.5-pro"`
	PremiumShortTokens int     `envconfig:"TIER_PREMIUM_SHORT_TOKENS" default:"1000"`
	PremiumLongTokens  int     `envconfig:"TIER_PREMIUM_LONG_TOKENS" default:"4000"`
	PremiumTemperature float32 `envconfig:"TIER_PREMIUM_TEMPERATURE" default:"0.7"`
}

type BreakerConfig struct {
	Threshold int           `envconfig:"BREAKER_THRESHOLD" default:"5"`
	Cooldown  time.Duration `envconfig:"BREAKER_COOLDOWN" default:"60s"`
}

type ProviderConfig struct {
	// Name selects the LM backend: "gemini" or "openai".
	Name          string        `envconfig:"LM_PROVIDER" default:"gemini"`
	GeminiAPIKey  string        `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string        `envconfig:"GEMINI_BASE_URL"`
	OpenAIAPIKey  string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `envconfig:"OPENAI_BASE_URL"`
	Timeout       time.Duration `envconfig:"LM_TIMEOUT" default:"30s"`
}

type RetrievalConfig struct {
	DefaultCount       int           `envconfig:"RETRIEVAL_DEFAULT_COUNT" default:"5"`
	MaxCount           int           `envconfig:"RETRIEVAL_MAX_COUNT" default:"10"`
	FallbackEscalation bool          `envconfig:"FALLBACK_ESCALATION" default:"false"`
	CatalogTimeout     time.Duration `envconfig:"CATALOG_TIMEOUT" default:"5s"`
	CatalogDSN         string        `envconfig:"CATALOG_DSN"`
	RotationWindow     int           `envconfig:"ROTATION_WINDOW" default:"5"`
	// RotationTTL is zero by default: cursors live until Redis evicts them.
	RotationTTL        time.Duration `envconfig:"ROTATION_TTL" default:"0s"`
}

type SynthesisConfig struct {
	MaxContinuations   int     `envconfig:"SYNTHESIS_MAX_CONTINUATIONS" default:"2"`
	ExperimentVariant  string  `envconfig:"PROMPT_EXPERIMENT_VARIANT"`
	AmbiguityThreshold float64 `envconfig:"AMBIGUITY_THRESHOLD" default:"0.7"`
	SectionBodyLines   int     `envconfig:"SECTION_BODY_LINES" default:"4"`
	ServiceName        string  `envconfig:"PROMPT_SERVICE_NAME" default:"툴스카우트"`
}

type GateConfig struct {
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"30"`
	RateLimitBurst     int           `envconfig:"RATE_LIMIT_BURST" default:"10"`
	BlockedTerms       []string      `envconfig:"MODERATION_BLOCKED_TERMS"`
	AlertWebhookURL    string        `envconfig:"ALERT_WEBHOOK_URL"`
	AlertTimeout       time.Duration `envconfig:"ALERT_TIMEOUT" default:"2s"`
	SessionTTL         time.Duration `envconfig:"SESSION_TTL" default:"24h"`
}

type ServerConfig struct {
	Addr            string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	SessionCookie   string        `envconfig:"SESSION_COOKIE" default:"sid"`
}
