// Package config loads gateway configuration from environment variables,
// following the same getEnv/getEnvInt-with-defaults shape and godotenv
// bootstrap the teacher's facilitator service uses.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every recognized gateway option from §6's configuration map.
type Config struct {
	Port        int
	Environment string

	ChainID         int64
	EntryPointV06   string
	EntryPointV07   string
	EntryPointV08   string

	RedisURL string

	RateLimitMaxOpsPerSender int
	RateLimitWindow          time.Duration

	GasMaxCallGasLimit         uint64
	GasMaxVerificationGasLimit uint64
	GasMaxInitCodeSize         int
	GasMaxCalldataSize         int

	BLSMaxSignaturesPerAggregation int
	BLSMaxAggregationDelayMs       int
	BLSPerformanceThresholdMs      int64
	BLSBlacklistExpirySeconds      int

	ContractSecurityMaxRiskScore   int
	ContractSecurityCacheExpirySec int
	ContractSecurityMaxCacheEntries int

	KMSProvider              string
	KMSPrimaryKeyID          string
	KMSSigningTimeoutSeconds int
	KMSAuditLoggingEnabled   bool

	PolicyFilePath         string
	PolicyReloadInterval   time.Duration

	PipelineDefaultTimeout time.Duration
}

// Load loads configuration from environment variables, applying the
// documented defaults for anything unset.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		ChainID:       getEnvInt64("CHAIN_ID", 1),
		EntryPointV06: getEnv("ENTRY_POINT_V06", "0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789"),
		EntryPointV07: getEnv("ENTRY_POINT_V07", "0x0000000071727De22E5E9d8BAf0edAc6f37da032"),
		EntryPointV08: getEnv("ENTRY_POINT_V08", ""),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		RateLimitMaxOpsPerSender: getEnvInt("RATE_LIMIT_MAX_OPS_PER_SENDER", 60),
		RateLimitWindow:          time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,

		GasMaxCallGasLimit:         uint64(getEnvInt("GAS_MAX_CALL_GAS_LIMIT", 10_000_000)),
		GasMaxVerificationGasLimit: uint64(getEnvInt("GAS_MAX_VERIFICATION_GAS_LIMIT", 10_000_000)),
		GasMaxInitCodeSize:         getEnvInt("GAS_MAX_INIT_CODE_SIZE", 49152),
		GasMaxCalldataSize:         getEnvInt("GAS_MAX_CALLDATA_SIZE", 131072),

		BLSMaxSignaturesPerAggregation: getEnvInt("BLS_MAX_SIGNATURES_PER_AGGREGATION", 256),
		BLSMaxAggregationDelayMs:       getEnvInt("BLS_MAX_AGGREGATION_DELAY_MS", 2000),
		BLSPerformanceThresholdMs:      int64(getEnvInt("BLS_PERFORMANCE_THRESHOLD_MS", 2000)),
		BLSBlacklistExpirySeconds:      getEnvInt("BLS_BLACKLIST_EXPIRY_SECONDS", 86400),

		ContractSecurityMaxRiskScore:    getEnvInt("CONTRACT_SECURITY_MAX_RISK_SCORE", 80),
		ContractSecurityCacheExpirySec:  getEnvInt("CONTRACT_SECURITY_CACHE_EXPIRY_SECONDS", 300),
		ContractSecurityMaxCacheEntries: getEnvInt("CONTRACT_SECURITY_MAX_CACHE_ENTRIES", 10000),

		KMSProvider:              getEnv("KMS_PROVIDER", "software"),
		KMSPrimaryKeyID:          getEnv("KMS_PRIMARY_KEY_ID", ""),
		KMSSigningTimeoutSeconds: getEnvInt("KMS_SIGNING_TIMEOUT_SECONDS", 10),
		KMSAuditLoggingEnabled:   getEnvBool("KMS_AUDIT_LOGGING_ENABLED", true),

		PolicyFilePath:       getEnv("POLICY_FILE_PATH", "policy.toml"),
		PolicyReloadInterval: time.Duration(getEnvInt("POLICY_RELOAD_INTERVAL_SECONDS", 30)) * time.Second,

		PipelineDefaultTimeout: time.Duration(getEnvInt("PIPELINE_DEFAULT_TIMEOUT_MS", 5000)) * time.Millisecond,
	}
}

func (c *Config) IsDevelopment() bool { return c.Environment == "development" }
func (c *Config) IsProduction() bool  { return c.Environment == "production" }

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}
