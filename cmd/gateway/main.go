package main

import (
	"context"
	"log"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aastar-community/relay-gateway/internal/authorization"
	"github.com/aastar-community/relay-gateway/internal/blsprotection"
	"github.com/aastar-community/relay-gateway/internal/config"
	"github.com/aastar-community/relay-gateway/internal/gateway"
	"github.com/aastar-community/relay-gateway/internal/kms"
	"github.com/aastar-community/relay-gateway/internal/policy"
	"github.com/aastar-community/relay-gateway/internal/pool"
	"github.com/aastar-community/relay-gateway/internal/provider"
	"github.com/aastar-community/relay-gateway/internal/riskanalysis"
	"github.com/aastar-community/relay-gateway/internal/simulator"
	"github.com/aastar-community/relay-gateway/internal/useroperation"
	"github.com/aastar-community/relay-gateway/internal/validation"
	"github.com/aastar-community/relay-gateway/internal/verification"
	"github.com/aastar-community/relay-gateway/internal/versionselector"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting gateway",
		zap.String("environment", cfg.Environment),
		zap.Int("port", cfg.Port),
		zap.Int64("chain_id", cfg.ChainID),
	)

	kmsManager := setupKMS(cfg, logger)

	blsProtector := setupBLSProtector(cfg)
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go blsProtector.RunCleanupLoop(cleanupCtx, blsprotection.CleanupInterval)

	deps := gateway.Dependencies{
		Config:           cfg,
		Logger:           logger,
		Selector:         setupSelector(cfg),
		ValidationLimits: defaultValidationLimits(cfg),
		AuthConfig:       setupAuthConfig(cfg, logger),
		RiskConfig:       riskanalysis.NewDefaultConfig(),
		BLSProtector:     blsProtector,
		PolicyManager:    policy.NewManager(cfg.PolicyFilePath, cfg.PolicyReloadInterval, cfg.RateLimitWindow),
		Pool:             pool.NewInMemoryPool(),
		Simulator:        simulator.NewFixedSimulator(),
		Provider:         provider.NewInMemoryProvider(big.NewInt(cfg.ChainID)),
		KMSManager:       kmsManager,
		RulesOracle:      verification.NewInMemoryRulesOracle(),
	}

	srv := gateway.New(deps)
	srv.Start()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func setupSelector(cfg *config.Config) *versionselector.Selector {
	selector := versionselector.NewSelector()
	if cfg.EntryPointV08 != "" {
		selector.WithEntryPoint(useroperation.V08, common.HexToAddress(cfg.EntryPointV08))
	}
	return selector
}

func defaultValidationLimits(cfg *config.Config) validation.Limits {
	return validation.Limits{
		MinGasLimit:             big.NewInt(21000),
		MaxGasLimit:             new(big.Int).SetUint64(cfg.GasMaxCallGasLimit),
		MaxVerificationGasLimit: new(big.Int).SetUint64(cfg.GasMaxVerificationGasLimit),
		MaxCallDataSize:         cfg.GasMaxCalldataSize,
		MaxInitCodeSize:         cfg.GasMaxInitCodeSize,
		StrictSignature:         cfg.IsProduction(),
	}
}

// setupAuthConfig wires the authorization chain's collaborators. The rate
// limiter prefers Redis, the teacher's production cache backend, but the
// gateway still starts with rate limiting disabled if Redis is unreachable
// rather than refusing to boot.
func setupAuthConfig(cfg *config.Config, logger *zap.Logger) authorization.Config {
	return authorization.Config{
		RateLimiter: setupRateLimiter(cfg, logger),
	}
}

func setupRateLimiter(cfg *config.Config, logger *zap.Logger) authorization.RateLimiter {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("invalid REDIS_URL, continuing without rate limiting", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, continuing without rate limiting", zap.Error(err))
		return nil
	}

	logger.Info("connected to redis for rate limiting", zap.String("addr", opts.Addr))
	return authorization.NewRedisRateLimiter(client, cfg.RateLimitMaxOpsPerSender, cfg.RateLimitWindow)
}

func setupBLSProtector(cfg *config.Config) *blsprotection.Protector {
	protectorCfg := blsprotection.DefaultConfig()
	if cfg.BLSMaxSignaturesPerAggregation > 0 {
		protectorCfg.MaxSignaturesPerRequest = cfg.BLSMaxSignaturesPerAggregation
	}
	if cfg.BLSPerformanceThresholdMs > 0 {
		protectorCfg.LatencyThresholdMs = float64(cfg.BLSPerformanceThresholdMs)
	}
	return blsprotection.NewProtector(protectorCfg)
}

// setupKMS wires the signing key manager. Production deployments register a
// real cloud/HSM provider via KMS_PROVIDER; development falls back to an
// ephemeral in-process software key so the gateway can start without any
// external dependency.
func setupKMS(cfg *config.Config, logger *zap.Logger) *kms.Manager {
	mgr := kms.NewManager()
	provider := kms.NewSoftwareProvider()
	mgr.RegisterProvider(kms.KeyTypeSoftware, provider)

	devKeyHex := os.Getenv("KMS_DEV_PRIVATE_KEY_HEX")
	if devKeyHex == "" {
		logger.Warn("KMS_DEV_PRIVATE_KEY_HEX not set, gateway will start without a usable signing key")
		return mgr
	}

	addr, err := provider.ImportHexKey(cfg.KMSPrimaryKeyID, devKeyHex)
	if err != nil {
		logger.Fatal("failed to import development signing key", zap.Error(err))
	}
	mgr.RegisterKey(kms.KeyHandle{ID: cfg.KMSPrimaryKeyID, Type: kms.KeyTypeSoftware, Address: addr.Hex(), Enabled: true})
	logger.Info("registered development signing key", zap.String("address", addr.Hex()))
	return mgr
}
