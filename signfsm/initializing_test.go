package signfsm

import (
	"testing"
	"time"

	clock "github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/driftcommittee/node/feed"
)

// TestInitializingFakeClockAdvance grounds the collection-window timeout on
// a fake clock instead of a real sleep: the WaitingDone sentinel must not
// appear until the fake clock is advanced past sleepTime, and must appear
// immediately once it is.
func TestInitializingFakeClockAdvance(t *testing.T) {
	dsss, _, _ := buildDsss(t, 1, []byte("attest this"))

	feedback := make(chan feed.MessageWrapper[Message], 4)
	fake := clock.NewFakeClock()

	s, err := NewInitializing(dsss[0], "fake-clock-session", feedback, 30*time.Second)
	require.NoError(t, err)
	s.SetClock(fake)

	s.Initialize()
	fake.BlockUntil(1)

	select {
	case <-feedback:
		t.Fatal("waiting-done fired before the fake clock advanced")
	default:
	}

	fake.Advance(30 * time.Second)

	select {
	case wrapped := <-feedback:
		require.Equal(t, "fake-clock-session", wrapped.SessionID)
		require.Equal(t, MsgWaitingDone, wrapped.Message.Kind)
	case <-time.After(time.Second):
		t.Fatal("waiting-done never fired after advancing the fake clock")
	}
}
