package density

import (
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// workChunk is a contiguous vertex range for one worker.
type workChunk struct {
	start, end int
	slot       int // index into the per-chunk min/max slots
}

// frameInputs is the read-only data shared by all workers for one frame.
type frameInputs struct {
	eval      *Evaluator
	particles ParticleSet
	vertices  []r3.Vec
	dst       DensityField
}

// workerPool runs the raw-sum pass over disjoint vertex ranges.
// Workers only read the frame inputs and write their own dst range and
// min/max slot, so nothing is locked.
type workerPool struct {
	numWorkers int
	frame      frameInputs
	mins       []float64
	maxes      []float64

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newWorkerPool(numWorkers int) *workerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{
		numWorkers: numWorkers,
		mins:       make([]float64, numWorkers),
		maxes:      make([]float64, numWorkers),
	}
}

// start launches persistent worker goroutines.
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

// worker processes chunks until stopped.
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
			f := &p.frame
			p.mins[chunk.slot], p.maxes[chunk.slot] = f.eval.computeChunk(f.particles, f.vertices, f.dst, chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// run splits the vertex range across workers, waits for all chunks, and
// returns the overall raw min and max.
func (p *workerPool) run(e *Evaluator, particles ParticleSet, vertices []r3.Vec, dst DensityField) (lo, hi float64) {
	if !p.running {
		p.start()
	}

	// Published to workers by the channel sends below
	p.frame = frameInputs{eval: e, particles: particles, vertices: vertices, dst: dst}

	n := len(vertices)
	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end, slot: dispatched}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}

	lo = math.Inf(1)
	for i := 0; i < dispatched; i++ {
		lo = math.Min(lo, p.mins[i])
		hi = math.Max(hi, p.maxes[i])
	}

	p.frame = frameInputs{}
	return lo, hi
}
