// Package parallel runs independent batch jobs on a bounded set of workers.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Job is one unit of work, usually one input file.
type Job func() error

// Stats counts finished jobs.
type Stats struct {
	Done   int64
	Failed int64
}

type Pool struct {
	wg    sync.WaitGroup
	work  chan Job
	close func()

	done   atomic.Int64
	failed atomic.Int64
}

// Start spawns numWorkers workers, or GOMAXPROCS when numWorkers < 1. A
// single worker runs jobs inline in Do.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{close: func() {}}
	if numWorkers > 1 {
		pool.work = make(chan Job, numWorkers)
		for range numWorkers {
			pool.wg.Go(func() {
				for job := range pool.work {
					pool.run(job)
				}
			})
		}
		pool.close = sync.OnceFunc(func() { close(pool.work) })
	}

	return pool
}

func (p *Pool) run(job Job) {
	if err := job(); err != nil {
		p.failed.Add(1)
	}
	p.done.Add(1)
}

// Do queues job, blocking while every worker is busy.
func (p *Pool) Do(job Job) {
	if p.work == nil {
		p.run(job)
		return
	}
	p.work <- job
}

// Wait stops accepting jobs and returns once every queued job finished.
func (p *Pool) Wait() Stats {
	p.close()
	p.wg.Wait()
	return Stats{Done: p.done.Load(), Failed: p.failed.Load()}
}
