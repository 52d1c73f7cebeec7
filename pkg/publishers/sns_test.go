package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/domain"
)

// fakeSNSClient captures Publish inputs.
type fakeSNSClient struct {
	inputs     []*sns.PublishInput
	publishErr error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	return &sns.PublishOutput{}, nil
}

func TestSNSPublisherSendsEvent(t *testing.T) {
	client := &fakeSNSClient{}
	pub := &snsPublisher{
		id:       "events-topic",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:us-east-1:123456789012:source-events",
		client:   client,
		log:      noopLogger{},
	}

	evt := NewEvent("github-trending", []domain.Item{{ID: "golang/go"}}, time.Now())
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(client.inputs) != 1 {
		t.Fatalf("expected one publish, got %d", len(client.inputs))
	}
	input := client.inputs[0]
	if *input.TopicArn != pub.topicARN {
		t.Fatalf("unexpected topic arn %s", *input.TopicArn)
	}
	if got := *input.MessageAttributes["source_id"].StringValue; got != "github-trending" {
		t.Fatalf("expected source_id attribute, got %q", got)
	}
	if got := *input.MessageAttributes["event_type"].StringValue; got != EventTypeSourceData {
		t.Fatalf("expected event_type attribute, got %q", got)
	}

	var decoded Event
	if err := json.Unmarshal([]byte(*input.Message), &decoded); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if decoded.SourceID != "github-trending" || len(decoded.Items) != 1 {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}

func TestSNSPublisherWrapsPublishErrors(t *testing.T) {
	pubErr := errors.New("topic gone")
	pub := &snsPublisher{
		id:       "events-topic",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:us-east-1:1:t",
		client:   &fakeSNSClient{publishErr: pubErr},
		log:      noopLogger{},
	}

	err := pub.Publish(context.Background(), NewEvent("s", nil, time.Now()))
	if !errors.Is(err, pubErr) {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
}

func TestNewSNSPublisherRequiresConfig(t *testing.T) {
	if _, err := newSNSPublisher(context.Background(), PublisherConfig{ID: "t", Type: TypeSNS}, nil); err == nil {
		t.Fatal("expected error for missing sns configuration")
	}
}
