package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/groblegark/gymwall/internal/model"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func recvMessage(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

// A subscriber on the comment wildcard sees the full lifecycle of a comment:
// a provisional creation followed by the server confirmation, distinguishable
// by subject and carrying the id reconciliation details in the payload.
func TestNATSSubscriber_CommentLifecycle(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("wall.comment.>")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	ctx := context.Background()
	provisional := &model.Comment{
		ID:     model.ProvisionalID("temp_1700000000000_7_abc1234"),
		PostID: 7,
		Text:   "great session",
	}
	if err := pub.Publish(ctx, TopicCommentCreated, CommentCreated{Comment: provisional}); err != nil {
		t.Fatalf("publishing created: %v", err)
	}
	confirmed := &model.Comment{ID: model.DurableID(501), PostID: 7, Text: "great session"}
	if err := pub.Publish(ctx, TopicCommentConfirmed, CommentConfirmed{
		Comment:       confirmed,
		ProvisionalID: "temp_1700000000000_7_abc1234",
	}); err != nil {
		t.Fatalf("publishing confirmed: %v", err)
	}
	pub.conn.Flush()

	first := recvMessage(t, ch)
	if first.Topic != TopicCommentCreated {
		t.Fatalf("first topic = %q, want %q", first.Topic, TopicCommentCreated)
	}
	var created CommentCreated
	if err := json.Unmarshal(first.Data, &created); err != nil {
		t.Fatalf("unmarshal created: %v", err)
	}
	if !created.Comment.ID.IsProvisional() {
		t.Errorf("created comment id %v, want provisional", created.Comment.ID)
	}

	second := recvMessage(t, ch)
	if second.Topic != TopicCommentConfirmed {
		t.Fatalf("second topic = %q, want %q", second.Topic, TopicCommentConfirmed)
	}
	var conf CommentConfirmed
	if err := json.Unmarshal(second.Data, &conf); err != nil {
		t.Fatalf("unmarshal confirmed: %v", err)
	}
	if !conf.Comment.ID.Equal(model.DurableID(501)) {
		t.Errorf("confirmed comment id %v, want 501", conf.Comment.ID)
	}
	if conf.ProvisionalID != "temp_1700000000000_7_abc1234" {
		t.Errorf("provisional id %q not carried through", conf.ProvisionalID)
	}
	if conf.Unconfirmed {
		t.Error("confirmation with a durable id must not be marked unconfirmed")
	}
}

// A confirmation whose server response omitted the id keeps the provisional
// id and is flagged unconfirmed on the wire.
func TestNATSSubscriber_UnconfirmedCommentOnWire(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicCommentConfirmed)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	kept := &model.Comment{
		ID:     model.ProvisionalID("temp_1700000000000_7_xyz9876"),
		PostID: 7,
		Text:   "still local",
	}
	err = pub.Publish(context.Background(), TopicCommentConfirmed, CommentConfirmed{
		Comment:       kept,
		ProvisionalID: kept.ID.String(),
		Unconfirmed:   true,
	})
	if err != nil {
		t.Fatalf("publishing: %v", err)
	}
	pub.conn.Flush()

	msg := recvMessage(t, ch)
	var conf CommentConfirmed
	if err := json.Unmarshal(msg.Data, &conf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !conf.Unconfirmed {
		t.Fatal("expected unconfirmed flag on the wire")
	}
	if !conf.Comment.ID.IsProvisional() {
		t.Errorf("comment id %v, want provisional", conf.Comment.ID)
	}
}

// The "wall.>" wildcard covers both post and comment events; the subject on
// each Message tells them apart.
func TestNATSSubscriber_WildcardSubjects(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("wall.>")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	ctx := context.Background()
	published := []string{TopicPostDeleted, TopicCommentRemoved, TopicPostCreated}
	for _, topic := range published {
		var event any
		switch topic {
		case TopicPostDeleted:
			event = PostDeleted{PostID: 3}
		case TopicCommentRemoved:
			event = CommentRemoved{PostID: 3, CommentID: "42"}
		case TopicPostCreated:
			event = PostCreated{Post: &model.Post{ID: 4, Text: "New PR"}}
		}
		if err := pub.Publish(ctx, topic, event); err != nil {
			t.Fatalf("publishing to %s: %v", topic, err)
		}
	}
	pub.conn.Flush()

	for _, want := range published {
		msg := recvMessage(t, ch)
		if msg.Topic != want {
			t.Fatalf("topic = %q, want %q", msg.Topic, want)
		}
	}
}

func TestNATSSubscriber_Cancel(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("wall.>")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	// Double cancel must not panic, and the channel ends up closed.
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after cancel")
	}
}

func TestNATSSubscriber_CancelDuringMessages(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("wall.>")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	// Publish a burst of comment confirmations concurrently with cancel.
	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = pub.Publish(ctx, TopicCommentConfirmed, CommentConfirmed{
				Comment: &model.Comment{ID: model.DurableID(int64(i)), PostID: 7},
			})
		}
		pub.conn.Flush()
	}()

	// Cancel while messages are being sent -- must not panic.
	cancel()
	<-done

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after cancel")
	}
}

func TestNATSSubscriber_ImplementsSubscriber(t *testing.T) {
	var _ Subscriber = (*NATSSubscriber)(nil)
}

func TestNATSSubscriber_ReconnectHandler(t *testing.T) {
	url := startTestNATS(t)

	reconnected := make(chan struct{}, 1)
	sub, err := NewNATSSubscriber(url,
		nats.ReconnectHandler(func(_ *nats.Conn) {
			select {
			case reconnected <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	// Verify the handler option was accepted (connection is alive).
	if !sub.conn.IsConnected() {
		t.Fatal("expected subscriber to be connected")
	}
}
