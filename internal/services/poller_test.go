package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPollerBroadcastsToWatchedAgencies(t *testing.T) {
	hub := &fakeHub{agencies: []string{"A1"}}
	p := NewPoller(newTestService(&fakeSource{}), hub, nil, nil, time.Minute, nil)

	p.Tick(context.Background())

	require.Len(t, hub.broadcasts, 1)
	assert.Equal(t, "A1", hub.broadcasts[0].agencyID)

	msg, ok := hub.broadcasts[0].data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, MessageLiveMapSnapshot, msg["type"])
	snap, ok := msg["data"].(*Snapshot)
	require.True(t, ok)
	assert.Equal(t, "2026-10-15", snap.Date)
}

func TestPollerAlertsEachViolationOnce(t *testing.T) {
	hub := &fakeHub{}
	alerts := &fakeAlerter{}
	p := NewPoller(newTestService(&fakeSource{}), hub, fakeAgencies{ids: []string{"A1"}}, alerts, time.Minute, nil)

	p.Tick(context.Background())
	p.Tick(context.Background())

	assert.Empty(t, hub.broadcasts, "nobody is watching A1")
	require.Len(t, alerts.sent, 1)
	assert.Equal(t, "A1", alerts.sent[0].agencyID)
	assert.Equal(t, "T1", alerts.sent[0].n.TimesheetID)
}

func TestPollerRetriesFailedAlerts(t *testing.T) {
	alerts := &fakeAlerter{err: errors.New("fcm unavailable")}
	p := NewPoller(newTestService(&fakeSource{}), &fakeHub{}, fakeAgencies{ids: []string{"A1"}}, alerts, time.Minute, nil)

	p.Tick(context.Background())
	assert.Empty(t, alerts.sent)

	alerts.err = nil
	p.Tick(context.Background())
	assert.Len(t, alerts.sent, 1)
}

func TestPollerNoAlertsForAllAgenciesView(t *testing.T) {
	hub := &fakeHub{agencies: []string{""}}
	alerts := &fakeAlerter{}
	p := NewPoller(newTestService(&fakeSource{}), hub, fakeAgencies{}, alerts, time.Minute, nil)

	p.Tick(context.Background())

	assert.Len(t, hub.broadcasts, 1)
	assert.Empty(t, alerts.sent)
}

func TestPollerForgetsAlertsOnNewDay(t *testing.T) {
	alerts := &fakeAlerter{}
	svc := newTestService(&fakeSource{})
	p := NewPoller(svc, &fakeHub{}, fakeAgencies{ids: []string{"A1"}}, alerts, time.Minute, nil)

	p.Tick(context.Background())
	svc.now = func() time.Time { return testDay.Add(24 * time.Hour) }
	p.Tick(context.Background())

	assert.Len(t, alerts.sent, 2)
}

func TestPollerListingFailureStillServesWatchers(t *testing.T) {
	hub := &fakeHub{agencies: []string{"A1"}}
	alerts := &fakeAlerter{}
	p := NewPoller(newTestService(&fakeSource{}), hub, fakeAgencies{err: errors.New("db down")}, alerts, time.Minute, nil)

	p.Tick(context.Background())

	assert.Len(t, hub.broadcasts, 1)
	assert.Len(t, alerts.sent, 1)
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := &fakeHub{agencies: []string{"A1"}}
	p := NewPoller(newTestService(&fakeSource{}), hub, nil, nil, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.broadcasts) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
