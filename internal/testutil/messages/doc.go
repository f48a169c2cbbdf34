// Package messages provides test infrastructure for seeding SMS messages.
// It offers a fluent builder over a catalog of real-world sample texts and
// predefined fixtures, so tests never hand-roll bank message bodies.
//
// # Basic Usage
//
//	func TestMyFeature(t *testing.T) {
//		db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
//			return b.WithSamples(messages.SampleBOBCredit, messages.SampleJioData)
//		})
//
//		// Use db.Storage for your test...
//	}
//
// # Using Fixtures
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
//		return b.WithFixture(messages.FixtureMixedInbox)
//	})
//
// Each built message gets a deterministic id of the form "<user>-<n>" and a
// received time one minute after the previous message, starting at BaseTime.
package messages
