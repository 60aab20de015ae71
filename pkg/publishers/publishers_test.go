package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSinksFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func sinkByID(reg *ConfigRegistry, id string) (PublisherConfig, bool) {
	for _, cfg := range reg.sinks {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return PublisherConfig{}, false
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeSinksFile(t, "sinks.yaml", `
sinks:
  - id: hook
    type: HTTP
    enabled: false
    http:
      url: " https://example.com/hook "
  - id: queue
    type: sqs
    sqs:
      uri: https://sqs.ap-south-1.amazonaws.com/123/profiles
      region: ap-south-1
      endpoint: http://localhost:4566
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:ap-south-1:123:profiles
      region: ap-south-1
  - id: gcp
    type: gcp_pubsub
    pubsub:
      project_id: demo
      topic: profiles
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	enabled := reg.Enabled()
	if len(enabled) != 3 {
		t.Fatalf("expected 3 enabled sinks, got %#v", enabled)
	}

	hook, ok := sinkByID(reg, "hook")
	if !ok {
		t.Fatalf("expected hook sink")
	}
	if hook.Type != TypeHTTP || hook.HTTP.URL != "https://example.com/hook" {
		t.Fatalf("hook not sanitized: %#v", hook.HTTP)
	}
	if hook.HTTP.Method != "POST" || hook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("hook defaults not applied: %#v", hook.HTTP)
	}

	queue, _ := sinkByID(reg, "queue")
	if queue.SQS.Region != "ap-south-1" || queue.SQS.Endpoint != "http://localhost:4566" {
		t.Fatalf("inline aws config not decoded: %#v", queue.SQS)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeSinksFile(t, "sinks.json", `{"sinks":[{"id":"q","type":"sqs","sqs":{"uri":"https://q","region":"us-east-1","access_key_id":"AK"}}]}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	q, ok := sinkByID(reg, "q")
	if !ok || q.SQS.Region != "us-east-1" || q.SQS.AccessKeyID != "AK" {
		t.Fatalf("unexpected sink %#v", q.SQS)
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	path := writeSinksFile(t, "sinks.yaml", `
sinks:
  - id: dup
    type: http
    http: {url: https://a.example}
  - id: dup
    type: http
    http: {url: https://b.example}
`)
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate sink error")
	}
}

func TestLoadRegistryUnknownExtension(t *testing.T) {
	path := writeSinksFile(t, "sinks.toml", `sinks = []`)
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := []PublisherConfig{
		{Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://x"}},
		{ID: "h", Type: TypeHTTP},
		{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q"}},
		{ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{AWSConfig: AWSConfig{Region: "us-east-1"}}},
		{ID: "g", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "p"}},
		{ID: "k", Type: "kafka"},
	}
	for _, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}
