package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process-level configuration for the gateway.
//
// The card registry and pending-request store are process-local and
// non-persistent, so there is no database configuration here. Everything the
// gateway talks to lives behind HTTP (chain gateway, Pinata).
type Server struct {
	Addr string

	// Device authentication. Either the plaintext key (compared in constant
	// time) or a bcrypt hash of it may be configured; the hash wins if both
	// are set.
	DeviceAPIKey     string
	DeviceAPIKeyHash string

	// AdminToken protects card deactivation and the debug surface.
	AdminToken string

	// Chain gateway (the service holding the bank key and the contract binding).
	LedgerBaseURL string
	LedgerAPIKey  string
	LedgerTimeout time.Duration

	// Pending point-of-sale request lifetime and background sweep cadence.
	PendingTTL    time.Duration
	SweepInterval time.Duration

	// Pinata pinning relay.
	PinataJWT       string
	PinataBaseURL   string
	PinataGateway   string
	FallbackGateway string

	AllowedOrigins []string
}

// Defaults mirrored by keygen and tests.
const (
	DefaultPendingTTL = 60 * time.Second
	DevAdminToken     = "dev-admin-token"
)

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file is loaded first when present (development convenience, never
// required).
func FromEnv() Server {
	_ = godotenv.Load()

	cfg := Server{
		Addr:             envOr("TAPBANK_ADDR", ":5000"),
		DeviceAPIKey:     os.Getenv("IOT_DEVICE_API_KEY"),
		DeviceAPIKeyHash: os.Getenv("IOT_DEVICE_API_KEY_HASH"),
		AdminToken:       envOr("ADMIN_TOKEN", DevAdminToken),
		LedgerBaseURL:    envOr("LEDGER_GATEWAY_URL", "http://127.0.0.1:7545"),
		LedgerAPIKey:     os.Getenv("LEDGER_GATEWAY_API_KEY"),
		LedgerTimeout:    durationOr("LEDGER_TIMEOUT", 15*time.Second),
		PendingTTL:       durationOr("PENDING_TX_TTL", DefaultPendingTTL),
		SweepInterval:    durationOr("PENDING_SWEEP_INTERVAL", 30*time.Second),
		PinataJWT:        os.Getenv("PINATA_JWT"),
		PinataBaseURL:    envOr("PINATA_API_URL", "https://api.pinata.cloud"),
		PinataGateway:    envOr("PINATA_GATEWAY", "https://gateway.pinata.cloud"),
		FallbackGateway:  envOr("IPFS_FALLBACK_GATEWAY", "https://ipfs.io"),
		AllowedOrigins:   splitOrigins(envOr("ALLOWED_ORIGINS", "http://localhost:3001,http://localhost:3002")),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
