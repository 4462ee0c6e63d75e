package world

import (
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"voxelite/internal/perf"
)

// drainPerFrame is the maximum number of completed chunks the manager will
// publish from the background pool to the main thread in a single drain.
const drainPerFrame = 4

// numWorkers is the fixed size of the background generation/IO pool.
const numWorkers = 2

// evictionOvershoot pads the number of chunks removed beyond max_loaded,
// reducing churn from rapid load/evict cycles right at the boundary.
const evictionOvershoot = 10

// minSearchRadius is the floor on the residency search radius, independent
// of how small max_loaded is configured.
const minSearchRadius = 10

type chunkJob struct {
	coord      ChunkCoord
	pregenOnly bool
}

// ChunkManager owns all Chunk objects for a world: it decides residency,
// drives the background generation/IO pool, deserializes and evicts, and
// publishes completed chunks to the main thread via a bounded drain.
//
// The main thread owns every map mutation the renderer observes except the
// atomic insertion of a placeholder. Workers receive a reference to an
// already-inserted placeholder Chunk, populate it, and enqueue it onto
// pending; they never touch loaded or accessTime. A worker removes its own
// coordinate from loading only when its job ends without publishing to
// pending (pregeneration, a fatal header mismatch, an evicted placeholder,
// or a panic).
type ChunkManager struct {
	SessionID uuid.UUID

	serializer *ChunkSerializer
	generator  ChunkGenerator
	policy     ChunkLoadPolicy
	defaultBT  BlockType

	mu         sync.RWMutex
	loaded     map[ChunkCoord]*Chunk
	accessTime map[ChunkCoord]int64

	loadingMu sync.Mutex
	loading   map[ChunkCoord]struct{}

	pending chan *Chunk
	jobs    chan chunkJob

	lastPlayerChunk   *ChunkCoord
	chunksChangedFlag bool
	chunksChangedMu   sync.Mutex

	wg     sync.WaitGroup
	stop   chan struct{}
	tick   int64
	tickMu sync.Mutex
}

// NewChunkManager builds a manager over a save path, a caller-supplied
// generator, and a caller-supplied residency policy.
func NewChunkManager(serializer *ChunkSerializer, generator ChunkGenerator, policy ChunkLoadPolicy, defaultBlockType BlockType) *ChunkManager {
	m := &ChunkManager{
		SessionID:  uuid.New(),
		serializer: serializer,
		generator:  generator,
		policy:     policy,
		defaultBT:  defaultBlockType,
		loaded:     make(map[ChunkCoord]*Chunk),
		accessTime: make(map[ChunkCoord]int64),
		loading:    make(map[ChunkCoord]struct{}),
		pending:    make(chan *Chunk, 4096),
		jobs:       make(chan chunkJob, 4096),
		stop:       make(chan struct{}),
	}
	return m
}

// Start launches the fixed-size background worker pool.
func (m *ChunkManager) Start() {
	for i := 0; i < numWorkers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
}

// Shutdown closes the stop channel, after which workers take no new job
// from the queue once they see it, and waits up to 5s for every worker to
// return. Jobs still waiting in the queue are not guaranteed to run. After
// 5s it logs and returns; a worker still inside its current job is not
// interrupted and finishes that job in the background.
func (m *ChunkManager) Shutdown() {
	close(m.stop)
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Printf("[chunk manager %s] shutdown timed out after 5s, returning while a worker is still busy", m.SessionID)
	}
}

func (m *ChunkManager) worker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stop:
			return
		case job, ok := <-m.jobs:
			if !ok {
				return
			}
			m.runJob(job)
		}
	}
}

func (m *ChunkManager) runJob(job chunkJob) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[chunk manager %s] worker panic on %s: %v", m.SessionID, job.coord, r)
			m.loadingMu.Lock()
			delete(m.loading, job.coord)
			m.loadingMu.Unlock()
		}
	}()

	if job.pregenOnly {
		m.pregenerate(job.coord)
		m.loadingMu.Lock()
		delete(m.loading, job.coord)
		m.loadingMu.Unlock()
		return
	}

	c, ok := m.GetChunk(job.coord)
	if !ok {
		// The placeholder was evicted before this job ran; drop the job so
		// a later boundary crossing requests the chunk again.
		m.loadingMu.Lock()
		delete(m.loading, job.coord)
		m.loadingMu.Unlock()
		return
	}
	if m.serializer.Exists(job.coord) {
		if err := m.serializer.LoadInto(c, job.coord); err != nil {
			var chunkErr *ChunkError
			if errors.As(err, &chunkErr) && chunkErr.Fatal {
				log.Printf("[chunk manager %s] %v; dropping chunk, will retry on next boundary crossing", m.SessionID, err)
				c.SetState(ChunkEmpty)
				m.loadingMu.Lock()
				delete(m.loading, job.coord)
				m.loadingMu.Unlock()
				return
			}
			log.Printf("[chunk manager %s] %v; regenerating", m.SessionID, err)
			m.generator.Generate(c, m.defaultBT)
		}
	} else {
		m.generator.Generate(c, m.defaultBT)
	}

	select {
	case m.pending <- c:
	case <-m.stop:
	}
}

// pregenerate writes a chunk to disk without ever loading it into the
// resident map, used for the pregeneration-only ring around the player.
func (m *ChunkManager) pregenerate(coord ChunkCoord) {
	c := NewChunk(coord)
	m.generator.Generate(c, m.defaultBT)
	if err := m.serializer.Save(c); err != nil {
		log.Printf("[chunk manager %s] pregenerate save failed: %v", m.SessionID, err)
	}
}

func (m *ChunkManager) getOrInsertPlaceholder(coord ChunkCoord) *Chunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.loaded[coord]; ok {
		return c
	}
	c := NewChunk(coord)
	m.loaded[coord] = c
	return c
}

// GetChunk returns a resident chunk by coordinate.
func (m *ChunkManager) GetChunk(coord ChunkCoord) (*Chunk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.loaded[coord]
	return c, ok
}

// HasChunk reports residency without returning the chunk itself.
func (m *ChunkManager) HasChunk(coord ChunkCoord) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.loaded[coord]
	return ok
}

// LoadedCount reports how many chunks are currently resident.
func (m *ChunkManager) LoadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.loaded)
}

// ConsumeChunksChanged returns whether any chunk was loaded or evicted
// since the last call, and clears the flag.
func (m *ChunkManager) ConsumeChunksChanged() bool {
	m.chunksChangedMu.Lock()
	defer m.chunksChangedMu.Unlock()
	v := m.chunksChangedFlag
	m.chunksChangedFlag = false
	return v
}

func (m *ChunkManager) setChunksChanged() {
	m.chunksChangedMu.Lock()
	m.chunksChangedFlag = true
	m.chunksChangedMu.Unlock()
}

// requestLoadOrGenerate submits an async load-or-generate job, inserting a
// placeholder first so the object identity is stable before the worker
// ever sees it, and guarding against duplicate submissions via loading.
func (m *ChunkManager) requestLoadOrGenerate(coord ChunkCoord) {
	m.loadingMu.Lock()
	if _, inFlight := m.loading[coord]; inFlight {
		m.loadingMu.Unlock()
		return
	}
	m.loading[coord] = struct{}{}
	m.loadingMu.Unlock()

	m.getOrInsertPlaceholder(coord)

	select {
	case m.jobs <- chunkJob{coord: coord}:
	default:
		// Queue saturated: drop the guard so a later boundary crossing retries.
		m.loadingMu.Lock()
		delete(m.loading, coord)
		m.loadingMu.Unlock()
	}
}

func (m *ChunkManager) requestPregenerate(coord ChunkCoord) {
	m.loadingMu.Lock()
	if _, inFlight := m.loading[coord]; inFlight {
		m.loadingMu.Unlock()
		return
	}
	m.loading[coord] = struct{}{}
	m.loadingMu.Unlock()

	select {
	case m.jobs <- chunkJob{coord: coord, pregenOnly: true}:
	default:
		m.loadingMu.Lock()
		delete(m.loading, coord)
		m.loadingMu.Unlock()
	}
}

// UpdateResidency recomputes which chunks should be resident or
// pregenerated around a player position. On the first call for a new
// player chunk it walks the search ring; on repeat calls for the same
// player chunk it returns without doing anything, so two calls with the
// same (px,pz) never submit extra jobs. It never drains pending: that is
// done by ProcessPending, which also invalidates the meshes of newly
// arrived chunks' neighbors.
func (m *ChunkManager) UpdateResidency(playerX, playerZ float64) {
	done := perf.Track("chunk_residency_update")
	defer done()

	player := ChunkCoordFromWorld(playerX, playerZ)
	if m.lastPlayerChunk != nil && *m.lastPlayerChunk == player {
		return
	}
	m.lastPlayerChunk = &player

	maxLoaded := m.policy.MaxLoadedChunks()
	radius := int32(minSearchRadius)
	if r := int32(maxLoaded / 10); r > radius {
		radius = r
	}

	required := make(map[ChunkCoord]struct{})
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			d := ChunkCoord{X: player.X + dx, Z: player.Z + dz}
			if m.policy.ShouldLoadToMemory(d, player) {
				required[d] = struct{}{}
				if !m.HasChunk(d) {
					m.requestLoadOrGenerate(d)
				}
			} else if m.policy.ShouldPregenerate(d, player) {
				if !m.serializer.Exists(d) {
					m.requestPregenerate(d)
				}
			}
		}
	}

	if m.LoadedCount() > maxLoaded {
		m.evict(required)
	}

	perf.LoadedChunks.WithLabelValues(m.SessionID.String()).Set(float64(m.LoadedCount()))
}

// evict removes the least-recently-accessed chunks outside the required
// set until the resident count is back under the policy's max, persisting
// each one on a best-effort basis first.
func (m *ChunkManager) evict(required map[ChunkCoord]struct{}) {
	m.mu.RLock()
	type entry struct {
		coord ChunkCoord
		t     int64
	}
	entries := make([]entry, 0, len(m.loaded))
	for coord := range m.loaded {
		entries = append(entries, entry{coord, m.accessTime[coord]})
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].t < entries[j].t })

	maxLoaded := m.policy.MaxLoadedChunks()
	overshoot := maxLoaded - evictionOvershoot
	if overshoot < 0 {
		overshoot = 0
	}

	for _, e := range entries {
		if m.LoadedCount() <= overshoot {
			break
		}
		if _, ok := required[e.coord]; ok {
			continue
		}
		m.mu.RLock()
		c, ok := m.loaded[e.coord]
		m.mu.RUnlock()
		if !ok {
			continue
		}
		if err := m.serializer.Save(c); err != nil {
			log.Printf("[chunk manager %s] evict save failed: %v", m.SessionID, err)
		}
		m.mu.Lock()
		delete(m.loaded, e.coord)
		delete(m.accessTime, e.coord)
		m.mu.Unlock()
		m.setChunksChanged()
	}
}

// ProcessPending drains up to drainPerFrame completed chunks from the
// background pool onto the main thread, running the supplied
// adjacentInvalidate callback once per cardinal neighbor of each drained
// chunk. Returns the number drained.
func (m *ChunkManager) ProcessPending(adjacentInvalidate func(ChunkCoord)) int {
	drained := 0
	for drained < drainPerFrame {
		select {
		case c := <-m.pending:
			m.loadingMu.Lock()
			delete(m.loading, c.Coord)
			m.loadingMu.Unlock()

			m.mu.Lock()
			m.loaded[c.Coord] = c
			m.accessTime[c.Coord] = m.nextTick()
			m.mu.Unlock()

			m.setChunksChanged()

			if adjacentInvalidate != nil {
				adjacentInvalidate(c.Coord.Left())
				adjacentInvalidate(c.Coord.Right())
				adjacentInvalidate(c.Coord.Front())
				adjacentInvalidate(c.Coord.Back())
			}
			drained++
		default:
			perf.PendingQueueDepth.WithLabelValues(m.SessionID.String()).Set(float64(len(m.pending)))
			return drained
		}
	}
	perf.PendingQueueDepth.WithLabelValues(m.SessionID.String()).Set(float64(len(m.pending)))
	return drained
}

// Touch bumps a chunk's LRU access time, used by World whenever a block
// read/write targets it.
func (m *ChunkManager) Touch(coord ChunkCoord) {
	m.mu.Lock()
	if _, ok := m.loaded[coord]; ok {
		m.accessTime[coord] = m.nextTick()
	}
	m.mu.Unlock()
}

func (m *ChunkManager) nextTick() int64 {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	m.tick++
	return m.tick
}

// AllChunks returns a snapshot slice of every resident chunk.
func (m *ChunkManager) AllChunks() []*Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Chunk, 0, len(m.loaded))
	for _, c := range m.loaded {
		out = append(out, c)
	}
	return out
}

// GenerateInitialChunks synchronously bootstraps a world at spawn: it
// pregenerates a totalRadius ring to disk, then loads a smaller
// loadRadius ring into memory, returning the center chunk's column height
// (for spawning the player above ground) and whether any block was found.
//
// This runs before Start(), on the caller's goroutine: no background
// workers are involved, matching the original engine's two-phase spawn
// bootstrap (generate-to-file, then load-to-memory).
func (m *ChunkManager) GenerateInitialChunks(spawnX, spawnZ float64, totalRadius, loadRadius int32) (int32, bool) {
	center := ChunkCoordFromWorld(spawnX, spawnZ)

	for dx := -totalRadius; dx <= totalRadius; dx++ {
		for dz := -totalRadius; dz <= totalRadius; dz++ {
			coord := ChunkCoord{X: center.X + dx, Z: center.Z + dz}
			if m.serializer.Exists(coord) {
				continue
			}
			c := NewChunk(coord)
			m.generator.Generate(c, m.defaultBT)
			if err := m.serializer.Save(c); err != nil {
				log.Printf("[chunk manager %s] initial pregenerate save failed: %v", m.SessionID, err)
			}
		}
	}

	for dx := -loadRadius; dx <= loadRadius; dx++ {
		for dz := -loadRadius; dz <= loadRadius; dz++ {
			coord := ChunkCoord{X: center.X + dx, Z: center.Z + dz}
			c := NewChunk(coord)
			if m.serializer.Exists(coord) {
				if err := m.serializer.LoadInto(c, coord); err != nil {
					log.Printf("[chunk manager %s] %v; regenerating", m.SessionID, err)
					m.generator.Generate(c, m.defaultBT)
				}
			} else {
				m.generator.Generate(c, m.defaultBT)
			}
			m.mu.Lock()
			m.loaded[coord] = c
			m.accessTime[coord] = m.nextTick()
			m.mu.Unlock()
		}
	}
	m.setChunksChanged()

	if c, ok := m.GetChunk(center); ok {
		if h, found := c.CenterHeight(); found {
			return h, true
		}
	}
	return 0, false
}
