package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/domain"
)

// fakeSQSClient captures SendMessage inputs.
type fakeSQSClient struct {
	inputs  []*sqs.SendMessageInput
	sendErr error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &sqs.SendMessageOutput{}, nil
}

func TestSQSPublisherSendsEvent(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "events-queue",
		typ:      TypeSQS,
		queueURL: "https://sqs.us-east-1.amazonaws.com/123456789012/source-events",
		client:   client,
		log:      noopLogger{},
	}

	evt := NewEvent("solidot", []domain.Item{{ID: "1", Title: "Story"}}, time.Now())
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(client.inputs) != 1 {
		t.Fatalf("expected one send, got %d", len(client.inputs))
	}
	input := client.inputs[0]
	if *input.QueueUrl != pub.queueURL {
		t.Fatalf("unexpected queue url %s", *input.QueueUrl)
	}

	if got := *input.MessageAttributes["source_id"].StringValue; got != "solidot" {
		t.Fatalf("expected source_id attribute, got %q", got)
	}
	if got := *input.MessageAttributes["event_type"].StringValue; got != EventTypeSourceData {
		t.Fatalf("expected event_type attribute, got %q", got)
	}

	var decoded Event
	if err := json.Unmarshal([]byte(*input.MessageBody), &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.SourceID != "solidot" || len(decoded.Items) != 1 || decoded.Timestamp == 0 {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}

func TestSQSPublisherWrapsSendErrors(t *testing.T) {
	sendErr := errors.New("queue unreachable")
	pub := &sqsPublisher{
		id:       "events-queue",
		typ:      TypeSQS,
		queueURL: "https://sqs.example.com/q",
		client:   &fakeSQSClient{sendErr: sendErr},
		log:      noopLogger{},
	}

	err := pub.Publish(context.Background(), NewEvent("s", nil, time.Now()))
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestNewSQSPublisherRequiresConfig(t *testing.T) {
	if _, err := newSQSPublisher(context.Background(), PublisherConfig{ID: "q", Type: TypeSQS}, nil); err == nil {
		t.Fatal("expected error for missing sqs configuration")
	}
}
