package publishers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePublishersFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}
	return path
}

const samplePublishersYAML = `
publishers:
  - id: events-queue
    type: sqs
    sqs:
      uri: https://sqs.us-east-1.amazonaws.com/123456789012/source-events
      region: us-east-1
  - id: events-topic
    type: sns
    enabled: false
    sns:
      topic_arn: arn:aws:sns:us-east-1:123456789012:source-events
      region: us-east-1
  - id: events-webhook
    type: http
    http:
      url: https://hooks.example.com/source-events
      headers:
        Authorization: "  Bearer token  "
        Empty: ""
  - id: events-pubsub
    type: gcppubsub
    gcppubsub:
      project_id: trendbeat
      topic: source-events
`

func TestLoadRegistryFromYAML(t *testing.T) {
	path := writePublishersFile(t, "publishers.yaml", samplePublishersYAML)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	if got := len(reg.All()); got != 4 {
		t.Fatalf("expected 4 publishers, got %d", got)
	}

	queue, ok := reg.ByID("events-queue")
	if !ok || queue.Type != TypeSQS || queue.SQS.Region != "us-east-1" {
		t.Fatalf("unexpected sqs config %+v ok=%v", queue, ok)
	}
	if !queue.EnabledValue() {
		t.Fatal("enabled must default to true")
	}

	webhook, _ := reg.ByID("events-webhook")
	if webhook.HTTP.Method != "POST" {
		t.Fatalf("method must default to POST, got %q", webhook.HTTP.Method)
	}
	if webhook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("timeout must default, got %d", webhook.HTTP.TimeoutSeconds)
	}
	if got := webhook.HTTP.Headers["Authorization"]; got != "Bearer token" {
		t.Fatalf("headers must be trimmed, got %q", got)
	}
	if _, ok := webhook.HTTP.Headers["Empty"]; ok {
		t.Fatal("empty headers must be dropped")
	}
}

func TestEnabledFiltersDisabledPublishers(t *testing.T) {
	path := writePublishersFile(t, "publishers.yaml", samplePublishersYAML)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	enabled := reg.Enabled()
	if len(enabled) != 3 {
		t.Fatalf("expected 3 enabled publishers, got %d", len(enabled))
	}
	for _, cfg := range enabled {
		if cfg.ID == "events-topic" {
			t.Fatal("disabled publisher must be filtered out")
		}
	}
}

func TestLoadRegistryValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantSub string
	}{
		{
			name: "missing id",
			content: `
publishers:
  - type: http
    http:
      url: https://example.com
`,
			wantSub: "id is required",
		},
		{
			name: "missing type",
			content: `
publishers:
  - id: p1
`,
			wantSub: "type is required",
		},
		{
			name: "sqs without uri",
			content: `
publishers:
  - id: p1
    type: sqs
    sqs:
      region: us-east-1
`,
			wantSub: "sqs.uri is required",
		},
		{
			name: "sns without region",
			content: `
publishers:
  - id: p1
    type: sns
    sns:
      topic_arn: arn:aws:sns:us-east-1:1:t
`,
			wantSub: "sns.region is required",
		},
		{
			name: "gcppubsub without topic",
			content: `
publishers:
  - id: p1
    type: gcppubsub
    gcppubsub:
      project_id: proj
`,
			wantSub: "gcppubsub.topic is required",
		},
		{
			name: "http without url",
			content: `
publishers:
  - id: p1
    type: http
    http:
      method: POST
`,
			wantSub: "http.url is required",
		},
		{
			name: "duplicate ids",
			content: `
publishers:
  - id: dup
    type: http
    http:
      url: https://example.com/a
  - id: dup
    type: http
    http:
      url: https://example.com/b
`,
			wantSub: "duplicate publisher id",
		},
		{
			name:    "empty file",
			content: "publishers: []\n",
			wantSub: "no publishers entries",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writePublishersFile(t, "publishers.yaml", tc.content)
			_, err := LoadRegistry(path)
			if err == nil || !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("expected error containing %q, got %v", tc.wantSub, err)
			}
		})
	}
}

func TestLoadRegistryFromJSON(t *testing.T) {
	path := writePublishersFile(t, "publishers.json", `{
  "publishers": [
    {"id": "hook", "type": "http", "http": {"url": "https://example.com/events"}}
  ]
}`)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if _, ok := reg.ByID("hook"); !ok {
		t.Fatal("expected hook publisher")
	}
}
