package messages

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Messages(t *testing.T) {
	msgs := NewBuilder(t).
		WithSample(SampleBOBCredit).
		ForUser("alice").
		WithFixture(FixtureDuplicateAlerts).
		WithBody("AX-TEST", "hello").
		Messages()

	require.Len(t, msgs, 4)
	assert.Equal(t, []string{"test-user-1", "alice-2", "alice-3", "alice-4"}, msgs.IDs())
	assert.Equal(t, DefaultUser, msgs[0].UserID)
	assert.Equal(t, "alice", msgs[3].UserID)
	assert.Equal(t, Body(SampleBOBCredit), msgs[1].Body)
	assert.Equal(t, Sender(SampleBOBCredit), msgs[1].Sender)
	assert.Equal(t, BaseTime.Add(3*time.Minute), msgs[3].ReceivedAt)

	assert.Equal(t, "hello", msgs.MustFind(t, "alice-4").Body)
	assert.Nil(t, msgs.Find("missing"))
}

func TestCatalogIsComplete(t *testing.T) {
	for _, f := range []Fixture{FixtureBankOnly, FixtureMixedInbox, FixtureDuplicateAlerts} {
		t.Run(f.Name(), func(t *testing.T) {
			assert.NotEmpty(t, f.Description())
			for _, s := range f.Samples() {
				assert.NotEmpty(t, Body(s), s.String())
				assert.NotEmpty(t, Sender(s), s.String())
			}
		})
	}
}
