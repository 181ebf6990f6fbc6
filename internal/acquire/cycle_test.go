package acquire

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/yardops-cli/internal/config"
	"github.com/sells-group/yardops-cli/internal/portal"
	"github.com/sells-group/yardops-cli/internal/snapshot"
)

type stubPortal struct {
	openErr   error
	switchErr error
	stateErr  error

	// states are returned in order, one per YardState call; the last one
	// repeats once exhausted.
	states []snapshot.Node

	openCalls   int
	switchCalls int
	stateCalls  int
	sites       []string
}

func (s *stubPortal) OpenSession(context.Context) (*portal.Session, error) {
	s.openCalls++
	if s.openErr != nil {
		return nil, s.openErr
	}
	return &portal.Session{}, nil
}

func (s *stubPortal) SwitchYard(_ context.Context, _ *portal.Session, site string) error {
	s.switchCalls++
	s.sites = append(s.sites, site)
	return s.switchErr
}

func (s *stubPortal) YardState(context.Context, *portal.Session) (snapshot.Node, error) {
	s.stateCalls++
	if s.stateErr != nil {
		return nil, s.stateErr
	}
	if len(s.states) == 0 {
		return nil, errors.New("no states configured")
	}
	idx := s.stateCalls - 1
	if idx >= len(s.states) {
		idx = len(s.states) - 1
	}
	return s.states[idx], nil
}

func fastConfig(attempts int) config.AcquireConfig {
	return config.AcquireConfig{MaxAttempts: attempts, CooldownSecs: 0, SwitchSettleSecs: 0}
}

func validSnapshot(site string) snapshot.Node {
	return snapshot.Obj("locationsSummaries", snapshot.Array{
		snapshot.Obj("yardName", site, "locations", snapshot.Array{}),
	})
}

func TestRun_SucceedsFirstAttempt(t *testing.T) {
	stub := &stubPortal{states: []snapshot.Node{validSnapshot("DTM1")}}
	cycle := New(stub, fastConfig(3))

	node, err := cycle.Run(context.Background(), "DTM1")
	require.NoError(t, err)
	assert.NotNil(t, node)
	assert.Equal(t, 1, stub.openCalls)
	assert.Equal(t, []string{"DTM1"}, stub.sites)
}

func TestRun_RetriesUntilValid(t *testing.T) {
	// First snapshot belongs to the wrong yard, second one validates.
	stub := &stubPortal{states: []snapshot.Node{
		validSnapshot("WRO5"),
		validSnapshot("DTM1"),
	}}
	cycle := New(stub, fastConfig(3))

	node, err := cycle.Run(context.Background(), "DTM1")
	require.NoError(t, err)
	assert.NotNil(t, node)
	assert.Equal(t, 2, stub.openCalls)
	assert.Equal(t, 2, stub.stateCalls)
}

func TestRun_ExhaustsAttempts(t *testing.T) {
	stub := &stubPortal{states: []snapshot.Node{validSnapshot("WRO5")}}
	cycle := New(stub, fastConfig(3))

	node, err := cycle.Run(context.Background(), "DTM1")
	assert.Nil(t, node)

	var exhausted *CycleExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "DTM1", exhausted.Site)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, 3, stub.openCalls)
}

func TestRun_SessionErrorConsumesAttempt(t *testing.T) {
	stub := &stubPortal{openErr: errors.New("landing page unreachable")}
	cycle := New(stub, fastConfig(2))

	_, err := cycle.Run(context.Background(), "DTM1")

	var exhausted *CycleExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2, stub.openCalls)
	// A failed session never reaches the later states.
	assert.Zero(t, stub.switchCalls)
	assert.Zero(t, stub.stateCalls)
}

func TestRun_SwitchFailureIsNotFatal(t *testing.T) {
	stub := &stubPortal{
		switchErr: errors.New("switch rejected"),
		states:    []snapshot.Node{validSnapshot("DTM1")},
	}
	cycle := New(stub, fastConfig(3))

	node, err := cycle.Run(context.Background(), "DTM1")
	require.NoError(t, err)
	assert.NotNil(t, node)
	assert.Equal(t, 1, stub.stateCalls)
}

func TestRun_RetrieveErrorRetries(t *testing.T) {
	stub := &stubPortal{stateErr: errors.New("gateway timeout")}
	cycle := New(stub, fastConfig(2))

	_, err := cycle.Run(context.Background(), "DTM1")

	var exhausted *CycleExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2, stub.stateCalls)
}

func TestRun_ContextCancelStopsCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubPortal{openErr: errors.New("unreachable")}
	cycle := New(stub, fastConfig(5))

	_, err := cycle.Run(ctx, "DTM1")
	assert.ErrorIs(t, err, context.Canceled)
	// The canceled context ends the loop after the first attempt.
	assert.Equal(t, 1, stub.openCalls)
}

func TestNew_Defaults(t *testing.T) {
	cycle := New(&stubPortal{}, config.AcquireConfig{})
	assert.Equal(t, 7, cycle.cfg.MaxAttempts)

	cycle = New(&stubPortal{}, config.AcquireConfig{MaxAttempts: 2, CooldownSecs: -1})
	assert.Equal(t, 2, cycle.cfg.MaxAttempts)
	assert.Equal(t, 15, cycle.cfg.CooldownSecs)
}

func TestCycleExhaustedError_Message(t *testing.T) {
	err := &CycleExhaustedError{Site: "HAJ1", Attempts: 7}
	assert.Equal(t, "acquire: failed after 7 attempts for site HAJ1", err.Error())
}
