package poll

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/loadwatch/loadwatch/internal/config"
	"github.com/loadwatch/loadwatch/internal/errors"
	"github.com/loadwatch/loadwatch/internal/logger"
)

// Poller drives one collection run: each roster entry is executed,
// extracted, and recorded. One host failing never stops the rest.
type Poller struct {
	cfg  *config.Config
	exec Executor
	log  logger.Logger
}

// New creates a Poller. A nil executor gets the production dispatcher;
// a nil logger gets the env-gated default.
func New(cfg *config.Config, exec Executor, log logger.Logger) *Poller {
	if exec == nil {
		exec = NewDispatcher(cfg)
	}
	if log == nil {
		log = logger.NewEnvLogger("[poll]")
	}
	return &Poller{cfg: cfg, exec: exec, log: log}
}

// Poll attempts every roster entry exactly once and returns the
// completed snapshot. Hosts are polled sequentially unless the config
// enables parallel mode, in which case all per-host goroutines are
// joined before the snapshot is finalized. The snapshot always has one
// result per roster entry, in roster order.
func (p *Poller) Poll(ctx context.Context) *Snapshot {
	results := make([]Result, len(p.cfg.Hosts))

	if p.cfg.Parallel {
		var wg sync.WaitGroup
		for i, host := range p.cfg.Hosts {
			wg.Add(1)
			go func(i int, host string) {
				defer wg.Done()
				results[i] = p.pollHost(ctx, host)
			}(i, host)
		}
		wg.Wait()
	} else {
		for i, host := range p.cfg.Hosts {
			results[i] = p.pollHost(ctx, host)
		}
	}

	return &Snapshot{
		Taken:   time.Now(),
		Results: results,
	}
}

// pollHost resolves one roster entry to a success value or a failure.
func (p *Poller) pollHost(ctx context.Context, host string) Result {
	hostCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	output, err := p.exec.Run(hostCtx, host)
	if err != nil {
		p.log.Warn("%s: %v", host, err)
		return Result{Host: host, Err: err}
	}

	value, ok := ExtractLoadAverage(string(output))
	if !ok {
		err := errors.New(errors.ErrExec,
			fmt.Sprintf("No load average in output from '%s'", host),
			"The status command ran but its output had no load-average label.")
		p.log.Warn("%s: %v", host, err)
		return Result{Host: host, Err: err}
	}

	p.log.Debug("%s: %s", host, value)
	return Result{Host: host, Value: value}
}
