package leads

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avramidis/dealscout/internal/events"
	testdb "github.com/avramidis/dealscout/internal/testing"
)

type recordingCache struct {
	invalidated []string
}

func (c *recordingCache) Invalidate(leadID string) error {
	c.invalidated = append(c.invalidated, leadID)
	return nil
}

func newTestService(t *testing.T) (*Service, *events.Bus, *recordingCache) {
	db, cleanup := testdb.NewTestDB(t, "leads")
	t.Cleanup(cleanup)

	bus := events.NewBus(zerolog.Nop())
	manager := events.NewManager(bus, zerolog.Nop())
	cache := &recordingCache{}

	repo := NewRepository(db.Conn(), zerolog.Nop())
	svc := NewService(repo, manager, cache, zerolog.Nop())
	require.NoError(t, svc.LoadState())
	return svc, bus, cache
}

func TestServiceCreateUpdatesQueue(t *testing.T) {
	svc, bus, _ := newTestService(t)

	var got []*events.Event
	bus.SubscribeAll(func(e *events.Event) { got = append(got, e) })

	created, err := svc.Create(sampleLead())
	require.NoError(t, err)

	queue := svc.Queue()
	require.Len(t, queue, 1)
	assert.Equal(t, created.ID, queue[0].Lead.ID)
	assert.Equal(t, 1, svc.Counts()[StatusNew])

	var leadData *events.LeadChangedData
	var queueData *events.QueueChangedData
	for _, e := range got {
		switch data := e.TypedData.(type) {
		case *events.LeadChangedData:
			leadData = data
		case *events.QueueChangedData:
			queueData = data
		}
	}

	require.NotNil(t, leadData)
	assert.Equal(t, events.LeadCreated, leadData.EventType())
	assert.Equal(t, created.ID, leadData.LeadID)
	assert.Equal(t, created.Address, leadData.Address)

	require.NotNil(t, queueData)
	assert.Equal(t, 1, queueData.ActiveLeads)
}

func TestServiceConcurrentCreates(t *testing.T) {
	svc, _, _ := newTestService(t)

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(sampleLead())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// every create must land in the queue, none lost to a stale snapshot
	assert.Len(t, svc.Queue(), n)
	assert.Equal(t, n, svc.Counts()[StatusNew])
}

func TestServiceConcurrentDeleteDuringStatusChange(t *testing.T) {
	svc, _, _ := newTestService(t)

	// ChangeStatus racing Delete must never panic; either order is fine
	for i := 0; i < 20; i++ {
		created, err := svc.Create(sampleLead())
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.ChangeStatus(created.ID, StatusDead)
		}()
		go func() {
			defer wg.Done()
			_ = svc.Delete(created.ID)
		}()
		wg.Wait()
	}

	assert.Empty(t, svc.Queue())
}

func TestServiceUpdateInvalidatesCacheAndKeepsStatus(t *testing.T) {
	svc, _, cache := newTestService(t)

	created, err := svc.Create(sampleLead())
	require.NoError(t, err)

	// updates cannot smuggle in a stage change
	created.Status = StatusDead
	created.PotentialRent = 2800
	updated, err := svc.Update(*created)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, StatusNew, updated.Status)
	assert.Equal(t, 2800.0, updated.PotentialRent)

	assert.Contains(t, cache.invalidated, created.ID)
}

func TestServiceChangeStatus(t *testing.T) {
	svc, bus, _ := newTestService(t)

	var statusEvents []*events.Event
	bus.Subscribe(events.LeadStatusChanged, func(e *events.Event) { statusEvents = append(statusEvents, e) })

	created, err := svc.Create(sampleLead())
	require.NoError(t, err)

	updated, err := svc.ChangeStatus(created.ID, StatusDead)
	require.NoError(t, err)
	assert.Equal(t, StatusDead, updated.Status)

	assert.Empty(t, svc.Queue(), "dead leads leave the queue")
	assert.Equal(t, 1, svc.Counts()[StatusDead])

	require.Len(t, statusEvents, 1)
	data, ok := statusEvents[0].TypedData.(*events.LeadStatusChangedData)
	require.True(t, ok)
	assert.Equal(t, "new", data.PreviousStatus)
	assert.Equal(t, "dead", data.NewStatus)

	// a no-op transition emits nothing
	_, err = svc.ChangeStatus(created.ID, StatusDead)
	require.NoError(t, err)
	assert.Len(t, statusEvents, 1)
}

func TestServiceChangeStatusNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	updated, err := svc.ChangeStatus("nope", StatusDead)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestServiceDelete(t *testing.T) {
	svc, bus, cache := newTestService(t)

	var got []events.EventType
	bus.SubscribeAll(func(e *events.Event) { got = append(got, e.Type) })

	created, err := svc.Create(sampleLead())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(created.ID))

	assert.Empty(t, svc.Queue())
	assert.Equal(t, 0, svc.Counts()[StatusNew])
	assert.Contains(t, got, events.LeadDeleted)
	assert.Contains(t, cache.invalidated, created.ID)

	assert.Error(t, svc.Delete(created.ID))
}

func TestServiceLoadStateRebuildsFromDB(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(sampleLead())
	require.NoError(t, err)
	closed, err := svc.Create(sampleLead())
	require.NoError(t, err)
	_, err = svc.ChangeStatus(closed.ID, StatusClosed)
	require.NoError(t, err)

	require.NoError(t, svc.LoadState())

	assert.Len(t, svc.Queue(), 1)
	assert.Equal(t, 1, svc.Counts()[StatusNew])
	assert.Equal(t, 1, svc.Counts()[StatusClosed])
}
