package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRegistryPublisherFor(t *testing.T) {
	reg := NewRegistry(map[string]Builder{
		"custom": func(_ context.Context, cfg PublisherConfig, _ Logger) (Publisher, error) {
			return &recordingPublisher{id: cfg.ID, typ: "custom"}, nil
		},
	})

	pub, err := reg.PublisherFor(context.Background(), PublisherConfig{ID: "p1", Type: "custom"}, nil)
	if err != nil {
		t.Fatalf("PublisherFor: %v", err)
	}
	if pub.ID() != "p1" || pub.Type() != "custom" {
		t.Fatalf("unexpected publisher %s/%s", pub.ID(), pub.Type())
	}

	if _, err := reg.PublisherFor(context.Background(), PublisherConfig{ID: "p2", Type: "unknown"}, nil); err == nil {
		t.Fatal("expected error for unregistered type")
	}
	if _, err := reg.PublisherFor(context.Background(), PublisherConfig{ID: "p3"}, nil); err == nil {
		t.Fatal("expected error for missing type")
	}
}

func TestRegistryRegisterNormalizesType(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register("  Custom  ", func(_ context.Context, cfg PublisherConfig, _ Logger) (Publisher, error) {
		return &recordingPublisher{id: cfg.ID, typ: "custom"}, nil
	})

	if _, err := reg.PublisherFor(context.Background(), PublisherConfig{ID: "p", Type: "custom"}, nil); err != nil {
		t.Fatalf("type registration must be case- and space-insensitive: %v", err)
	}
}

func TestDefaultRegistryKnowsAllTypes(t *testing.T) {
	reg := DefaultRegistry()

	// The HTTP builder is the only one constructible without cloud access.
	pub, err := reg.PublisherFor(context.Background(), sanitizePublisherConfig(PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: "https://example.com/events"},
	}), nil)
	if err != nil {
		t.Fatalf("PublisherFor http: %v", err)
	}
	if pub.Type() != TypeHTTP {
		t.Fatalf("unexpected type %s", pub.Type())
	}

	for _, typ := range []string{TypeSQS, TypeSNS, TypeGCP} {
		_, err := reg.PublisherFor(context.Background(), PublisherConfig{ID: "p", Type: typ}, nil)
		if err == nil || !strings.Contains(err.Error(), "missing") {
			t.Fatalf("builder for %s must reject missing config, got %v", typ, err)
		}
	}
}

func TestBuildAllStopsOnFirstFailure(t *testing.T) {
	buildErr := errors.New("bad config")
	reg := NewRegistry(map[string]Builder{
		"ok": func(_ context.Context, cfg PublisherConfig, _ Logger) (Publisher, error) {
			return &recordingPublisher{id: cfg.ID, typ: "ok"}, nil
		},
		"bad": func(context.Context, PublisherConfig, Logger) (Publisher, error) {
			return nil, buildErr
		},
	})

	pubs, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "a", Type: "ok"},
		{ID: "b", Type: "bad"},
	}, nil)
	if !errors.Is(err, buildErr) {
		t.Fatalf("expected build error, got %v", err)
	}
	if pubs != nil {
		t.Fatalf("failed builds must not return partial sets, got %v", pubs)
	}

	pubs, err = BuildAll(context.Background(), reg, []PublisherConfig{{ID: "a", Type: "ok"}}, nil)
	if err != nil || len(pubs) != 1 {
		t.Fatalf("expected one publisher, got %v %v", pubs, err)
	}
}
