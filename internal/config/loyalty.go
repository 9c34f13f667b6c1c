package config

import (
	"os"
	"strconv"
	"time"
)

type LoyaltyConfig struct {
	TxRetryAttempts    int
	TxRetryBackoff     time.Duration
	ReferralCodeLength int
	MaxCodeGenPerUser  int
	RateLimitWindow    time.Duration
	SweepBatchSize     int
	SweepCronSpec      string
	RedemptionQueue    string
}

func LoadLoyaltyConfig() *LoyaltyConfig {
	return &LoyaltyConfig{
		TxRetryAttempts:    getEnvAsInt("LOYALTY_TX_RETRY_ATTEMPTS", 3),
		TxRetryBackoff:     getEnvAsDuration("LOYALTY_TX_RETRY_BACKOFF", 50*time.Millisecond),
		ReferralCodeLength: getEnvAsInt("LOYALTY_REFERRAL_CODE_LENGTH", 8),
		MaxCodeGenPerUser:  getEnvAsInt("LOYALTY_MAX_CODE_GEN_PER_USER", 10),
		RateLimitWindow:    getEnvAsDuration("LOYALTY_RATE_LIMIT_WINDOW", 1*time.Hour),
		SweepBatchSize:     getEnvAsInt("LOYALTY_SWEEP_BATCH_SIZE", 500),
		SweepCronSpec:      getEnv("LOYALTY_SWEEP_CRON", "0 3 * * *"),
		RedemptionQueue:    getEnv("LOYALTY_REDEMPTION_QUEUE", "redemption_events"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
