package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type testJob struct {
	id      int
	err     error
	counter *int64
}

type testResult struct {
	id  int
	err error
}

func (r *testResult) GetError() error { return r.err }

func (j *testJob) Execute(ctx context.Context) Result {
	if j.counter != nil {
		atomic.AddInt64(j.counter, 1)
	}
	return &testResult{id: j.id, err: j.err}
}

func TestPoolExecutesAllJobs(t *testing.T) {
	var executed int64
	pool := NewPool(4)
	pool.Start()

	const jobs = 50
	for i := 0; i < jobs; i++ {
		pool.Submit(&testJob{id: i, counter: &executed})
	}

	results := pool.Wait()
	if len(results) != jobs {
		t.Errorf("expected %d results, got %d", jobs, len(results))
	}
	if n := atomic.LoadInt64(&executed); n != jobs {
		t.Errorf("expected %d executions, got %d", jobs, n)
	}

	seen := make(map[int]bool)
	for _, r := range results {
		res := r.(*testResult)
		if seen[res.id] {
			t.Errorf("job %d executed twice", res.id)
		}
		seen[res.id] = true
	}
}

func TestPoolCarriesJobErrors(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	wantErr := errors.New("lookup failed")
	pool.Submit(&testJob{id: 1})
	pool.Submit(&testJob{id: 2, err: wantErr})

	var failures int
	for _, r := range pool.Wait() {
		if r.GetError() != nil {
			failures++
			if !errors.Is(r.GetError(), wantErr) {
				t.Errorf("unexpected error: %v", r.GetError())
			}
		}
	}
	if failures != 1 {
		t.Errorf("expected 1 failed job, got %d", failures)
	}
}

// Submitting far more jobs than the internal buffers hold must not
// block: results are drained while submission is still in progress.
func TestPoolManyJobsSingleWorker(t *testing.T) {
	var executed int64
	pool := NewPool(1)
	pool.Start()

	const jobs = 200
	for i := 0; i < jobs; i++ {
		pool.Submit(&testJob{id: i, counter: &executed})
	}

	results := pool.Wait()
	if len(results) != jobs {
		t.Errorf("expected %d results, got %d", jobs, len(results))
	}
	if n := atomic.LoadInt64(&executed); n != jobs {
		t.Errorf("expected %d executions, got %d", jobs, n)
	}
}

func TestPoolNoJobs(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	if results := pool.Wait(); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestPoolDefaultsToOneWorker(t *testing.T) {
	var executed int64
	pool := NewPool(0)
	pool.Start()
	pool.Submit(&testJob{id: 1, counter: &executed})
	pool.Wait()
	if executed != 1 {
		t.Errorf("expected the job to run with the fallback worker, got %d", executed)
	}
}

func TestPoolShutdown(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Shutdown()

	// Submitting after shutdown must not block or panic.
	pool.Submit(&testJob{id: 1})
}
