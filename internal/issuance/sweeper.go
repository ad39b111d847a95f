package issuance

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SweeperConfig defines request store sweeper configuration
type SweeperConfig struct {
	Enabled     bool
	IntervalSec int
}

// Sweeper periodically purges expired certificate requests from the store.
// The store also evicts lazily on access; the sweeper keeps memory bounded
// for requests nobody ever asks about again.
type Sweeper struct {
	store       *Store
	config      SweeperConfig
	log         *logrus.Entry
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewSweeper creates a new store sweeper
func NewSweeper(store *Store, config SweeperConfig, logger *logrus.Logger) *Sweeper {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Sweeper{
		store:       store,
		config:      config,
		log:         logger.WithField("component", "sweeper"),
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Start starts the sweeper
func (s *Sweeper) Start() {
	if !s.config.Enabled {
		s.log.Info("Sweeper disabled, skipping")
		close(s.stoppedChan)
		return
	}

	s.log.Infof("Starting with interval=%ds", s.config.IntervalSec)
	go s.run()
}

// Stop stops the sweeper
func (s *Sweeper) Stop() {
	if !s.config.Enabled {
		return
	}

	close(s.stopChan)
	<-s.stoppedChan
	s.log.Info("Stopped")
}

// run is the main sweeper loop
func (s *Sweeper) run() {
	defer close(s.stoppedChan)

	ticker := time.NewTicker(time.Duration(s.config.IntervalSec) * time.Second)
	defer ticker.Stop()

	// Run immediately on start
	s.tick()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Sweeper) tick() {
	if purged := s.store.Sweep(); purged > 0 {
		s.log.Infof("Purged %d expired certificate requests", purged)
	}
}
