package messages

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/Veraticus/rupee-flow/internal/service"
)

// BaseTime is the received time of the first built message.
var BaseTime = time.Date(2025, 4, 28, 7, 40, 39, 0, time.UTC)

// DefaultUser owns built messages unless ForUser says otherwise.
const DefaultUser = "test-user"

// Builder provides a fluent interface for constructing test messages.
type Builder interface {
	// ForUser assigns subsequently added messages to userID.
	ForUser(userID string) Builder

	// WithSample adds one catalog message.
	WithSample(s Sample) Builder

	// WithSamples adds several catalog messages in order.
	WithSamples(samples ...Sample) Builder

	// WithBody adds a message with arbitrary text.
	WithBody(sender, body string) Builder

	// WithFixture adds every sample of a fixture.
	WithFixture(f Fixture) Builder

	// Messages returns the built messages without storing them.
	Messages() Messages

	// Build stores the messages and returns them.
	Build(ctx context.Context, storage service.Storage) (Messages, error)
}

type builder struct {
	t        *testing.T
	user     string
	messages Messages
}

// NewBuilder creates a builder.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &builder{t: t, user: DefaultUser}
}

func (b *builder) ForUser(userID string) Builder {
	b.user = userID
	return b
}

func (b *builder) WithSample(s Sample) Builder {
	b.t.Helper()
	entry, ok := catalog[s]
	if !ok {
		b.t.Fatalf("unknown sample %q", s)
	}
	return b.WithBody(entry.sender, entry.body)
}

func (b *builder) WithSamples(samples ...Sample) Builder {
	b.t.Helper()
	for _, s := range samples {
		b.WithSample(s)
	}
	return b
}

func (b *builder) WithBody(sender, body string) Builder {
	n := len(b.messages)
	b.messages = append(b.messages, model.Message{
		ID:         fmt.Sprintf("%s-%d", b.user, n+1),
		UserID:     b.user,
		Sender:     sender,
		Body:       body,
		ReceivedAt: BaseTime.Add(time.Duration(n) * time.Minute),
	})
	return b
}

func (b *builder) WithFixture(f Fixture) Builder {
	b.t.Helper()
	return b.WithSamples(f.Samples()...)
}

func (b *builder) Messages() Messages {
	out := make(Messages, len(b.messages))
	copy(out, b.messages)
	return out
}

func (b *builder) Build(ctx context.Context, storage service.Storage) (Messages, error) {
	msgs := b.Messages()
	if err := storage.SaveMessages(ctx, msgs); err != nil {
		return nil, fmt.Errorf("failed to seed messages: %w", err)
	}
	return msgs, nil
}

// Messages is a collection of built test messages.
type Messages []model.Message

// Find returns the message with id, or nil.
func (m Messages) Find(id string) *model.Message {
	for i := range m {
		if m[i].ID == id {
			return &m[i]
		}
	}
	return nil
}

// MustFind returns the message with id or fails the test.
func (m Messages) MustFind(t *testing.T, id string) model.Message {
	t.Helper()
	msg := m.Find(id)
	if msg == nil {
		t.Fatalf("message %q not found in test data", id)
	}
	return *msg
}

// IDs returns every message id in order.
func (m Messages) IDs() []string {
	ids := make([]string, len(m))
	for i, msg := range m {
		ids[i] = msg.ID
	}
	return ids
}
