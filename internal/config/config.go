package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress       string
	DatabaseURI      string
	DirectoryAddress string
	ChainRPCAddress  string
	ChainPrivateKey  string
	JWTSecret        string

	PaymentContractAddress string
	StableTokenAddress     string
	FallbackTokenAddress   string

	ConfirmationDepth   uint64
	ConfirmPollInterval time.Duration
	WorkerPoolSize      int
	MaxAttemptsBatch    int
	ShutdownTimeout     time.Duration
}

const (
	defaultRunAddress          = ":8080"
	defaultJWTSecret           = "change-me-in-production"
	defaultConfirmationDepth   = 2
	defaultConfirmPollInterval = 3 * time.Second
	defaultWorkerPoolSize      = 4
	defaultMaxAttemptsBatch    = 32
	defaultShutdownTimeout     = 10 * time.Second

	defaultPaymentContract = "0x00c8c529ad8c6Dc36934927252c69df1C003F797"
	defaultStableToken     = "0x35435120c2cf51f7f122f2b37bda3bbc686831de"
	defaultFallbackToken   = "0x8ec7d893f57b6a7c837bc93cfb4c01b80f58ba6b"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:             getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:            getString(lookup, "DATABASE_URI", ""),
		DirectoryAddress:       getString(lookup, "DIRECTORY_ADDRESS", ""),
		ChainRPCAddress:        getString(lookup, "CHAIN_RPC_ADDRESS", ""),
		ChainPrivateKey:        getString(lookup, "CHAIN_PRIVATE_KEY", ""),
		JWTSecret:              getString(lookup, "JWT_SECRET", defaultJWTSecret),
		PaymentContractAddress: getString(lookup, "PAYMENT_CONTRACT_ADDRESS", defaultPaymentContract),
		StableTokenAddress:     getString(lookup, "STABLE_TOKEN_ADDRESS", defaultStableToken),
		FallbackTokenAddress:   getString(lookup, "FALLBACK_TOKEN_ADDRESS", defaultFallbackToken),
		ConfirmationDepth:      getUint(lookup, "CONFIRMATION_DEPTH", defaultConfirmationDepth),
		ConfirmPollInterval:    getDuration(lookup, "CONFIRM_POLL_INTERVAL", defaultConfirmPollInterval),
		WorkerPoolSize:         getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		MaxAttemptsBatch:       getInt(lookup, "POLL_BATCH_SIZE", defaultMaxAttemptsBatch),
		ShutdownTimeout:        getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.ConfirmPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		confirmDepth       = int(cfg.ConfirmationDepth)
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.DirectoryAddress, "r", cfg.DirectoryAddress, "Invoice directory base URL")
	fs.StringVar(&cfg.ChainRPCAddress, "rpc", cfg.ChainRPCAddress, "EVM JSON-RPC endpoint")
	fs.StringVar(&cfg.ChainPrivateKey, "key", cfg.ChainPrivateKey, "Hex private key of the gateway account")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.PaymentContractAddress, "payment-contract", cfg.PaymentContractAddress, "Payment contract address (approve spender)")
	fs.StringVar(&cfg.StableTokenAddress, "stable-token", cfg.StableTokenAddress, "Invoice token (mUSD) contract address")
	fs.StringVar(&cfg.FallbackTokenAddress, "fallback-token", cfg.FallbackTokenAddress, "Fallback token (BAZE) contract address")
	fs.IntVar(&confirmDepth, "confirmations", confirmDepth, "Confirmation depth before settlement")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between confirmation polls")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent confirmation workers")
	fs.IntVar(&cfg.MaxAttemptsBatch, "poll-batch", cfg.MaxAttemptsBatch, "Maximum attempts per polling batch")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ConfirmPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = string(content)
	}

	if keyFile, ok := lookup("CHAIN_PRIVATE_KEY_FILE"); ok && keyFile != "" {
		content, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("read chain key file: %w", err)
		}
		cfg.ChainPrivateKey = string(content)
	}

	if confirmDepth <= 0 {
		confirmDepth = defaultConfirmationDepth
	}
	cfg.ConfirmationDepth = uint64(confirmDepth)

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.MaxAttemptsBatch <= 0 {
		cfg.MaxAttemptsBatch = defaultMaxAttemptsBatch
	}

	if cfg.ConfirmPollInterval <= 0 {
		cfg.ConfirmPollInterval = defaultConfirmPollInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.DirectoryAddress == "" {
		return nil, fmt.Errorf("invoice directory address must be provided")
	}

	if cfg.ChainRPCAddress == "" {
		return nil, fmt.Errorf("chain RPC address must be provided")
	}

	if cfg.ChainPrivateKey == "" {
		return nil, fmt.Errorf("chain private key must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getUint(lookup envLookup, key string, def uint64) uint64 {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
