package services

import (
	"log"
	"time"
)

// CleanupService runs the periodic sweeps: pruning revocation ledger entries
// whose tokens have expired anyway, and deactivating timed-out sessions.
type CleanupService struct {
	ledger   *RevocationLedger
	sessions *SessionStore
	interval time.Duration
	stop     chan struct{}
}

// NewCleanupService creates a sweeper with the given interval
func NewCleanupService(ledger *RevocationLedger, sessions *SessionStore, interval time.Duration) *CleanupService {
	return &CleanupService{
		ledger:   ledger,
		sessions: sessions,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start launches the sweep loop in the background
func (cs *CleanupService) Start() {
	go cs.run()
	log.Printf("✅ Cleanup service started (interval: %v)", cs.interval)
}

// Stop terminates the sweep loop
func (cs *CleanupService) Stop() {
	close(cs.stop)
}

func (cs *CleanupService) run() {
	ticker := time.NewTicker(cs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cs.RunOnce()
		case <-cs.stop:
			return
		}
	}
}

// RunOnce executes a single sweep pass
func (cs *CleanupService) RunOnce() {
	pruned, err := cs.ledger.Prune()
	if err != nil {
		log.Printf("❌ Revocation ledger prune failed: %v", err)
	} else if pruned > 0 {
		log.Printf("🧹 Pruned %d expired revocation entries", pruned)
	}

	swept, err := cs.sessions.Sweep()
	if err != nil {
		log.Printf("❌ Session sweep failed: %v", err)
	} else if swept > 0 {
		log.Printf("🧹 Deactivated %d timed-out sessions", swept)
	}
}
