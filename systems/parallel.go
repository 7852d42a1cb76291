package systems

import (
	"runtime"
	"sync"
)

// workChunk represents a range of entities for a worker to process.
type workChunk struct {
	start, end int
	fn         func(start, end int)
}

// workerPool runs index ranges on persistent goroutines.
type workerPool struct {
	numWorkers int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

func newWorkerPool(numWorkers int) *workerPool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{numWorkers: numWorkers}
}

// start launches the worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// run splits [0,n) into chunks, dispatches them and blocks until all finish.
func (p *workerPool) run(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	p.start()

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	chunks := 0
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		p.workChan <- workChunk{start: start, end: end, fn: fn}
		chunks++
	}

	for i := 0; i < chunks; i++ {
		<-p.doneChan
	}
}
