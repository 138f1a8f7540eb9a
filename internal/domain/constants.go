package domain

const (
	DefaultAPIBaseURL = "https://slack.com/api"

	DefaultAPITimeoutSeconds      = 30
	DefaultRefreshMarginSeconds   = 60
	DefaultRateLimitMaxAttempts   = 3
	DefaultRefreshTimeoutSeconds  = 15
	DefaultObservabilityListen    = "127.0.0.1:9472"
	DefaultObservabilityMetrics   = true
	DefaultObservabilityHealthz   = true
	DefaultConfigReloadDebounceMS = 200
)
