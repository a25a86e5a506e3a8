package directory

import (
	"io"
	"log/slog"
	"testing"

	"github.com/payneu/gateway/internal/config"
)

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{DirectoryAddress: "http://example.com"}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	client, err := newClient(clientParams{Config: cfg, Logger: logger})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected client instance")
	}
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	cfg := &config.Config{DirectoryAddress: "/relative"}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if _, err := newClient(clientParams{Config: cfg, Logger: logger}); err == nil {
		t.Fatal("expected error for relative url")
	}
}
