// Package acquire runs the bounded acquisition cycle that turns a site
// code into a validated yard-state snapshot.
package acquire

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/yardops-cli/internal/config"
	"github.com/sells-group/yardops-cli/internal/portal"
	"github.com/sells-group/yardops-cli/internal/snapshot"
)

// Portal is the subset of portal operations the cycle drives.
type Portal interface {
	OpenSession(ctx context.Context) (*portal.Session, error)
	SwitchYard(ctx context.Context, s *portal.Session, site string) error
	YardState(ctx context.Context, s *portal.Session) (snapshot.Node, error)
}

// state names one step of the acquisition cycle. Every failure mode maps
// to a transition here, so the attempt-count contract is enforced in one
// place instead of scattered early-continues.
type state int

const (
	stateStart state = iota
	stateTokenFetch
	stateSwitch
	stateRetrieve
	stateValidate
	stateSuccess
	stateRetry
)

func (s state) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateTokenFetch:
		return "token_fetch"
	case stateSwitch:
		return "switch"
	case stateRetrieve:
		return "retrieve"
	case stateValidate:
		return "validate"
	case stateSuccess:
		return "success"
	case stateRetry:
		return "retry"
	}
	return "unknown"
}

// CycleExhaustedError is the terminal failure after every attempt was
// consumed. It is not an empty report: callers must treat it as "no data
// available this cycle".
type CycleExhaustedError struct {
	Site     string
	Attempts int
}

func (e *CycleExhaustedError) Error() string {
	return fmt.Sprintf("acquire: failed after %d attempts for site %s", e.Attempts, e.Site)
}

// Cycle acquires validated snapshots with a bounded retry budget.
type Cycle struct {
	portal Portal
	cfg    config.AcquireConfig
}

// New creates a Cycle. Zero config values fall back to the defaults
// (7 attempts, 15s cooldown).
func New(p Portal, cfg config.AcquireConfig) *Cycle {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 7
	}
	if cfg.CooldownSecs < 0 {
		cfg.CooldownSecs = 15
	}
	return &Cycle{portal: p, cfg: cfg}
}

// Run produces a validated snapshot for the site or a CycleExhaustedError.
// Attempts are strictly sequential; each one fully completes or fails
// before the next begins.
func (c *Cycle) Run(ctx context.Context, site string) (snapshot.Node, error) {
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		zap.L().Info("acquire: cycle attempt",
			zap.String("site", site),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.cfg.MaxAttempts),
		)

		node, final := c.attempt(ctx, site)
		if final == stateSuccess {
			zap.L().Info("acquire: yard state validated", zap.String("site", site))
			return node, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < c.cfg.MaxAttempts {
			c.wait(ctx, time.Duration(c.cfg.CooldownSecs)*time.Second)
		}
	}
	return nil, &CycleExhaustedError{Site: site, Attempts: c.cfg.MaxAttempts}
}

// attempt walks one pass of the state machine and reports the terminal
// state for this attempt: stateSuccess or stateRetry.
func (c *Cycle) attempt(ctx context.Context, site string) (snapshot.Node, state) {
	var (
		sess *portal.Session
		node snapshot.Node
	)

	st := stateStart
	for {
		switch st {
		case stateStart:
			st = stateTokenFetch

		case stateTokenFetch:
			s, err := c.portal.OpenSession(ctx)
			if err != nil {
				return nil, c.retry(site, st, err)
			}
			sess = s
			st = stateSwitch

		case stateSwitch:
			// Best-effort: a failed switch is caught downstream when the
			// snapshot fails validation for the expected site.
			if err := c.portal.SwitchYard(ctx, sess, site); err != nil {
				zap.L().Warn("acquire: switch yard failed",
					zap.String("site", site),
					zap.Error(err),
				)
			}
			// Give the portal time to apply the account switch.
			c.wait(ctx, time.Duration(c.cfg.SwitchSettleSecs)*time.Second)
			st = stateRetrieve

		case stateRetrieve:
			n, err := c.portal.YardState(ctx, sess)
			if err != nil {
				return nil, c.retry(site, st, err)
			}
			node = n
			st = stateValidate

		case stateValidate:
			if !snapshot.Validate(node, site) {
				return nil, c.retry(site, st, nil)
			}
			return node, stateSuccess
		}
	}
}

func (c *Cycle) retry(site string, from state, err error) state {
	zap.L().Error("acquire: attempt failed",
		zap.String("site", site),
		zap.String("state", from.String()),
		zap.Error(err),
	)
	return stateRetry
}

func (c *Cycle) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
