package services

import (
	"sync"
	"time"

	"github.com/lockedloop/tempus-fugit/internal/models"
	"github.com/lockedloop/tempus-fugit/internal/providers"
	"github.com/lockedloop/tempus-fugit/internal/storage"
	"github.com/lockedloop/tempus-fugit/internal/timecalc"
)

type ContainerServiceInterface interface {
	LoadContainers() error
	Containers() []*LiveContainer
	GetContainer(id string) (*LiveContainer, bool)
	AddNewContainer(draft models.Draft) (*LiveContainer, error)
	UpdateContainer(id string, patch models.ContainerPatch) error
	DeleteContainer(id string) error
	AdjustHeight(id string, delta int) error
	UpdateTodos(id string, mutate func(todos []models.TodoItem) []models.TodoItem) error
	ReorderContainers(orderedIds []string) error
	CommitReorder(order []string, moved string, column int) error
	SetColumnCount(n int) error
	Settings() models.Settings
	UpdateSettings(settings models.Settings) error
	SetFullscreen(id string, on bool)
	IsFullscreen(id string) bool
	Order() []string
	ColumnOf(id string) (int, bool)
	SetRenderSink(sink RenderSink)
	Tick(now time.Time)
	ContainerCount() int
	LastTick() time.Time
}

// ContainerService is the registry: the in-memory authoritative collection
// of live containers. Every mutation funnels through here so the live map
// and the store never drift apart.
type ContainerService struct {
	mu       sync.Mutex
	store    storage.StoreInterface
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	sink     RenderSink
	live     map[string]*LiveContainer
	order    []string
	settings models.Settings
	lastTick time.Time
}

func NewContainerService(store storage.StoreInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) ContainerServiceInterface {
	s := &ContainerService{
		store:    store,
		logger:   logger,
		metrics:  metrics,
		sink:     noopRenderSink{},
		live:     make(map[string]*LiveContainer),
		settings: models.DefaultSettings(),
	}
	metrics.RegisterContainersGauge(func() float64 {
		return float64(s.ContainerCount())
	})
	return s
}

func (s *ContainerService) SetRenderSink(sink RenderSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sink == nil {
		sink = noopRenderSink{}
	}
	s.sink = sink
}

// LoadContainers runs migration, reads the stored state and mounts one live
// container per record in stored order. A stored column index beyond the
// configured count is clamped in memory; the store copy is corrected by the
// next SetColumnCount.
func (s *ContainerService) LoadContainers() error {
	if err := s.store.Migrate(); err != nil {
		return err
	}

	state := s.store.Get()
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = state.Settings
	s.live = make(map[string]*LiveContainer, len(state.Containers))
	s.order = s.order[:0]
	for _, rec := range state.Containers {
		if rec.Column >= s.settings.Columns {
			rec.Column = s.settings.Columns - 1
		}
		s.mount(rec, now)
	}

	s.logger.Infof(providers.TypeApp, "Loaded %d container(s)", len(s.order))
	return nil
}

// mount instantiates a live container. Callers hold s.mu.
func (s *ContainerService) mount(rec models.Container, now time.Time) *LiveContainer {
	lc := &LiveContainer{Record: rec}
	behaviorFor(rec.Type).ComputeDerived(lc, now)
	s.live[rec.ID] = lc
	s.order = append(s.order, rec.ID)
	return lc
}

func (s *ContainerService) Containers() []*LiveContainer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*LiveContainer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.live[id])
	}
	return out
}

func (s *ContainerService) GetContainer(id string) (*LiveContainer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lc, ok := s.live[id]
	return lc, ok
}

// AddNewContainer validates, picks the least-populated column when the
// draft names none, persists and mounts.
func (s *ContainerService) AddNewContainer(draft models.Draft) (*LiveContainer, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if draft.Column == nil {
		col := s.leastPopulatedColumn()
		draft.Column = &col
	}
	s.mu.Unlock()

	rec, err := s.store.AddContainer(draft)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	lc := s.mount(rec, time.Now())
	s.mu.Unlock()

	s.sink.RenderContainer(lc)
	return lc, nil
}

// leastPopulatedColumn returns the column with the fewest live containers,
// lowest index on ties. Callers hold s.mu.
func (s *ContainerService) leastPopulatedColumn() int {
	counts := make([]int, s.settings.Columns)
	for _, lc := range s.live {
		if lc.Record.Column >= 0 && lc.Record.Column < len(counts) {
			counts[lc.Record.Column]++
		}
	}
	best := 0
	for col, n := range counts {
		if n < counts[best] {
			best = col
		}
	}
	return best
}

// UpdateContainer persists the patch, then forwards the stored record to the
// live instance and refreshes it. A stale id is a silent no-op so a delete
// racing an in-flight edit never crashes.
func (s *ContainerService) UpdateContainer(id string, patch models.ContainerPatch) error {
	rec, err := s.store.UpdateContainer(id, patch)
	if err != nil {
		return err
	}
	if rec == nil {
		s.logger.Debugf(providers.TypeApp, "Update of unknown container %q ignored", id)
		return nil
	}

	s.mu.Lock()
	lc, ok := s.live[id]
	if ok {
		lc.Record = *rec
		behaviorFor(lc.Record.Type).ComputeDerived(lc, time.Now())
	}
	s.mu.Unlock()

	if ok {
		s.sink.RenderContainer(lc)
	}
	return nil
}

// DeleteContainer unmounts before issuing the persistence delete, so the UI
// never shows a container the store no longer has. The unmount is not
// rolled back if the store delete fails.
func (s *ContainerService) DeleteContainer(id string) error {
	s.mu.Lock()
	if _, ok := s.live[id]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.live, id)
	s.order = removeID(s.order, id)
	s.mu.Unlock()

	_, err := s.store.DeleteContainer(id)
	return err
}

func removeID(order []string, id string) []string {
	out := order[:0]
	for _, v := range order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (s *ContainerService) AdjustHeight(id string, delta int) error {
	s.mu.Lock()
	lc, ok := s.live[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	height := models.ClampHeight(lc.Record.Height + delta)
	s.mu.Unlock()

	return s.UpdateContainer(id, models.ContainerPatch{Height: &height})
}

// UpdateTodos applies a todo-list mutation to a countdown container and
// round-trips the full record through the store immediately, no batching.
func (s *ContainerService) UpdateTodos(id string, mutate func(todos []models.TodoItem) []models.TodoItem) error {
	s.mu.Lock()
	lc, ok := s.live[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	data := lc.Record.Countdown()
	if data == nil {
		s.mu.Unlock()
		return nil
	}
	data.Todos = mutate(data.Todos)
	patch := models.ContainerPatch{Data: *data}
	s.mu.Unlock()

	return s.UpdateContainer(id, patch)
}

func (s *ContainerService) ReorderContainers(orderedIds []string) error {
	reordered, err := s.store.ReorderContainers(orderedIds)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	for _, rec := range reordered {
		if _, ok := s.live[rec.ID]; ok {
			s.order = append(s.order, rec.ID)
		}
	}
	return nil
}

// CommitReorder is the drop commit of a drag gesture: reassign the dragged
// container's column when it crossed one, then persist the complete order.
func (s *ContainerService) CommitReorder(order []string, moved string, column int) error {
	if moved != "" && column >= 0 {
		s.mu.Lock()
		cols := s.settings.Columns
		s.mu.Unlock()
		if column >= cols {
			column = cols - 1
		}
		if err := s.UpdateContainer(moved, models.ContainerPatch{Column: &column}); err != nil {
			return err
		}
	}
	return s.ReorderContainers(order)
}

// SetColumnCount reassigns every container whose column fell out of range
// to the last valid column, in memory and in the store, before the grid is
// rebuilt by the presentation layer.
func (s *ContainerService) SetColumnCount(n int) error {
	if n < 1 {
		n = 1
	}

	s.mu.Lock()
	s.settings.Columns = n
	settings := s.settings
	s.mu.Unlock()

	if err := s.store.SetSettings(settings); err != nil {
		return err
	}

	containers := s.store.Get().Containers
	changed := false
	for i := range containers {
		if containers[i].Column >= n {
			containers[i].Column = n - 1
			changed = true
		}
	}
	if changed {
		if err := s.store.SetContainers(containers); err != nil {
			return err
		}
	}

	s.mu.Lock()
	for _, lc := range s.live {
		if lc.Record.Column >= n {
			lc.Record.Column = n - 1
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *ContainerService) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings persists immediately, no debounce. A column-count change
// goes through SetColumnCount to keep placements in range.
func (s *ContainerService) UpdateSettings(settings models.Settings) error {
	if settings.Columns < 1 {
		settings.Columns = 1
	}

	s.mu.Lock()
	columnsChanged := settings.Columns != s.settings.Columns
	s.settings = settings
	s.mu.Unlock()

	if columnsChanged {
		return s.SetColumnCount(settings.Columns)
	}
	return s.store.SetSettings(settings)
}

func (s *ContainerService) SetFullscreen(id string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lc, ok := s.live[id]; ok {
		lc.Fullscreen = on
	}
}

func (s *ContainerService) IsFullscreen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	lc, ok := s.live[id]
	return ok && lc.Fullscreen
}

func (s *ContainerService) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *ContainerService) ColumnOf(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lc, ok := s.live[id]
	if !ok {
		return 0, false
	}
	return lc.Record.Column, true
}

// Tick refreshes every live container. Acting only when the wall-clock
// second changes coalesces sub-second wakeups and makes the tick robust to
// scheduling latency: a missed second delays display, never corrupts state.
func (s *ContainerService) Tick(now time.Time) {
	s.mu.Lock()
	if now.Unix() == s.lastTick.Unix() && !s.lastTick.IsZero() {
		s.mu.Unlock()
		return
	}
	s.lastTick = now
	ticked := make([]*LiveContainer, 0, len(s.order))
	for _, id := range s.order {
		lc := s.live[id]
		behaviorFor(lc.Record.Type).OnTick(lc, now)
		ticked = append(ticked, lc)
	}
	s.mu.Unlock()

	s.metrics.IncTicksTotal()
	s.logger.Debugf(providers.TypeTick, "Refreshed %d containers", len(ticked))
	for _, lc := range ticked {
		s.sink.RenderContainer(lc)
	}
	s.sink.RenderClock(timecalc.CurrentBreakdown(now))
}

func (s *ContainerService) ContainerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

func (s *ContainerService) LastTick() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTick
}
