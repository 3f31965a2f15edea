package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/db/dbfake"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
)

func sweepFixture(t *testing.T) (*Sweeper, *Relay, *Hub, *dbfake.Store, model.Store) {
	t.Helper()
	fake := dbfake.New()
	h := NewHub()
	relay := NewRelay(h, fake, nil, "test-secret")
	st := pairStore(t, fake, "acme")
	require.NoError(t, fake.UpdateStoreHeartbeat(st.ID, nil, nil))
	return NewSweeper(fake, relay), relay, h, fake, st
}

func TestSweeper_FlipsStaleStoreOffline(t *testing.T) {
	sw, _, h, fake, st := sweepFixture(t)
	dash := testClient(h, ClientDashboard, 0, st.OrganizationID)

	sw.SweepOnce(time.Now().Add(10 * time.Minute))

	got, err := fake.GetStoreByID(st.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOnline)

	logs, err := fake.ListPlaybackLogs(st.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.EventDeviceOffline, logs[0].EventType)
	assert.Equal(t, "heartbeat_timeout", logs[0].Metadata["reason"])

	msgs := drain(dash)
	require.Len(t, msgs, 1)
	assert.Equal(t, EventStoreOffline, msgs[0].Event)
}

func TestSweeper_FailsOpenWithinThreshold(t *testing.T) {
	sw, _, _, fake, st := sweepFixture(t)

	// two missed beats is still inside the grace window
	sw.SweepOnce(time.Now().Add(2 * HeartbeatPeriod))

	got, err := fake.GetStoreByID(st.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOnline)

	logs, err := fake.ListPlaybackLogs(st.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestSweeper_SkipsStoreWithLiveSocket(t *testing.T) {
	sw, _, h, fake, st := sweepFixture(t)
	testClient(h, ClientPlayer, st.ID, st.OrganizationID)

	sw.SweepOnce(time.Now().Add(10 * time.Minute))

	got, err := fake.GetStoreByID(st.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOnline) // socket beats timestamp
}

func TestSweeper_IgnoresStoresAlreadyOffline(t *testing.T) {
	sw, _, _, fake, st := sweepFixture(t)
	require.NoError(t, fake.SetStoreOnline(st.ID, false))

	sw.SweepOnce(time.Now().Add(10 * time.Minute))

	logs, err := fake.ListPlaybackLogs(st.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, logs) // no duplicate offline event
}
