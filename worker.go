package orbit

import (
	"context"
	"sync"

	"github.com/go-kit/kit/log"
)

// Request asks the pool for a background propagation.
type Request struct {
	Satellite       SatelliteState
	Periods         float64
	PointsPerPeriod int
	Flags           Flags
}

// Result carries a finished background propagation. Seq is the per-satellite
// sequence number of the originating request.
type Result struct {
	SatelliteID int
	Seq         uint64
	Points      []TrajectoryPoint
	Err         error
}

type poolJob struct {
	req Request
	seq uint64
	out chan Result
}

// Pool offloads long running propagations to background workers so the
// interactive loop is never blocked. Every request gets a monotonically
// increasing sequence number per satellite; a consumer must discard any
// result older than the last one it accepted (see Accept). Cancellation is
// cooperative: superseded requests still run, their results are simply
// dropped on arrival.
type Pool struct {
	prop   *Propagator
	logger log.Logger
	jobs   chan poolJob
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	nextSeq      map[int]uint64
	lastAccepted map[int]uint64
}

// NewPool starts a pool with the given number of workers. A nil logger
// disables logging.
func NewPool(prop *Propagator, workers int, logger log.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		prop:         prop,
		logger:       logger,
		jobs:         make(chan poolJob, workers*2),
		cancel:       cancel,
		nextSeq:      make(map[int]uint64),
		lastAccepted: make(map[int]uint64),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	return p
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, open := <-p.jobs:
			if !open {
				return
			}
			points, err := p.prop.PropagatePeriods(job.req.Satellite, job.req.Periods, job.req.PointsPerPeriod, job.req.Flags)
			if err != nil {
				p.logger.Log("subsys", "pool", "satellite", job.req.Satellite.ID, "seq", job.seq, "err", err)
			}
			res := Result{SatelliteID: job.req.Satellite.ID, Seq: job.seq, Points: points, Err: err}
			select {
			case job.out <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Submit enqueues a request and returns the future result channel, which is
// buffered and receives exactly one Result. The request owns a deep copy of
// the satellite state for the duration of the task.
func (p *Pool) Submit(req Request) <-chan Result {
	req.Satellite = req.Satellite.Clone()
	p.mu.Lock()
	seq := p.nextSeq[req.Satellite.ID]
	p.nextSeq[req.Satellite.ID] = seq + 1
	p.mu.Unlock()

	out := make(chan Result, 1)
	p.jobs <- poolJob{req, seq, out}
	return out
}

// Accept applies the at-most-the-latest-result rule: it returns false, and
// the result must be discarded, when a newer result for the same satellite
// was already accepted.
func (p *Pool) Accept(res Result) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	last, seen := p.lastAccepted[res.SatelliteID]
	if seen && res.Seq < last {
		return false
	}
	p.lastAccepted[res.SatelliteID] = res.Seq
	return true
}

// Close stops the workers. Pending results are dropped.
func (p *Pool) Close() {
	p.cancel()
	p.wg.Wait()
}
