package mongo

import (
	"context"
	"testing"
	"time"
)

func TestConfig_ClientOptions(t *testing.T) {
	opts := Config{URI: "mongodb://db:27017", Database: "anka"}.clientOptions()
	if opts.AppName == nil || *opts.AppName != defaultAppName {
		t.Fatalf("expected app name %q, got %v", defaultAppName, opts.AppName)
	}
	if opts.ConnectTimeout == nil || *opts.ConnectTimeout != defaultTimeout {
		t.Fatalf("expected default connect timeout, got %v", opts.ConnectTimeout)
	}

	opts = Config{URI: "mongodb://db:27017", AppName: "ankaadmin-cli", Timeout: 2 * time.Second}.clientOptions()
	if *opts.AppName != "ankaadmin-cli" || *opts.ServerSelectionTimeout != 2*time.Second {
		t.Fatalf("overrides not applied: app=%v selection=%v", *opts.AppName, *opts.ServerSelectionTimeout)
	}
}

func TestConnect_RequiresDatabase(t *testing.T) {
	if _, _, err := Connect(context.Background(), Config{URI: "mongodb://db:27017"}); err == nil {
		t.Fatal("expected error for empty database name")
	}
}
