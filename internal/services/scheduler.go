package services

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"github.com/lockedloop/tempus-fugit/internal/providers"
	"github.com/lockedloop/tempus-fugit/internal/storage"
	"github.com/lockedloop/tempus-fugit/internal/structures"
)

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
}

// Scheduler drives the per-second refresh tick and the periodic best-effort
// sync flush. Cooperative: a long tick delays the next one, and Stop only
// suppresses future runs.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	service ContainerServiceInterface
	store   storage.StoreInterface
	cron    *gron.Cron
	opsMu   sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	tickInterval := s.config.Dashboard.TickInterval
	flushInterval := s.config.Storage.SyncFlushInterval

	s.logger.Infof(providers.TypeTick, "Refresh tick scheduled every %ds", int(tickInterval))
	s.cron.AddFunc(gron.Every(tickInterval*time.Second), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		s.service.Tick(time.Now())
	})

	if s.store.HasSync() && flushInterval > 0 {
		s.cron.AddFunc(gron.Every(flushInterval*time.Second), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()

			s.store.FlushSync()
			s.logger.Debugf(providers.TypeStore, "Flushed state to sync tier")
		})
	}

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore runs schema migration and mounts the stored containers.
func (s *Scheduler) Restore() error {
	return s.service.LoadContainers()
}

// Persist pushes a final snapshot to the sync tier on shutdown. The durable
// tier is already up to date: every mutation writes through.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	if s.store.HasSync() {
		s.logger.Infof(providers.TypeStore, "Flushing state to sync tier...")
		s.store.FlushSync()
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service ContainerServiceInterface, store storage.StoreInterface) SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		service: service,
		store:   store,
	}
}
