package publishers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/domain"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func newEmulatorTopic(t *testing.T) (*pstest.Server, *pubsub.Topic) {
	t.Helper()
	ctx := context.Background()

	srv := pstest.NewServer()
	t.Cleanup(func() { srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial emulator: %v", err)
	}

	client, err := pubsub.NewClient(ctx, "trendbeat", option.WithGRPCConn(conn))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	topic, err := client.CreateTopic(ctx, "source-events")
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	t.Cleanup(topic.Stop)
	return srv, topic
}

func TestGCPPubSubPublisherSendsEvent(t *testing.T) {
	srv, topic := newEmulatorTopic(t)

	pub := &gcpPubSubPublisher{
		id:    "events-pubsub",
		typ:   TypeGCP,
		topic: topic,
		log:   noopLogger{},
	}

	evt := NewEvent("hackernews", []domain.Item{{ID: "1", Title: "Post"}}, time.Now())
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs := srv.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected one message on the topic, got %d", len(msgs))
	}
	msg := msgs[0]
	if msg.Attributes["source_id"] != "hackernews" {
		t.Fatalf("expected source_id attribute, got %v", msg.Attributes)
	}
	if msg.Attributes["event_type"] != EventTypeSourceData {
		t.Fatalf("expected event_type attribute, got %v", msg.Attributes)
	}

	var decoded Event
	if err := json.Unmarshal(msg.Data, &decoded); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if decoded.SourceID != "hackernews" || len(decoded.Items) != 1 {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}

func TestNewGCPPubSubPublisherRequiresConfig(t *testing.T) {
	if _, err := newGCPPubSubPublisher(context.Background(), PublisherConfig{ID: "p", Type: TypeGCP}, nil); err == nil {
		t.Fatal("expected error for missing gcppubsub configuration")
	}
}
