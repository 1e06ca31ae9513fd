package lifecycle

import (
	"sync"

	"github.com/circleous/cistatus/internal/status"
	"github.com/circleous/cistatus/pkg/ci"
)

// Stats counts what an Updater has done
type Stats struct {
	Checks    uint
	Passing   uint
	Failing   uint
	Cleared   uint
	Collapsed uint
}

type updaterStat struct {
	mu sync.Mutex
	s  Stats
}

func (us *updaterStat) record(rep status.Report) {
	us.mu.Lock()
	defer us.mu.Unlock()

	us.s.Checks++
	switch {
	case !rep.Shown:
		us.s.Cleared++
	case rep.Status == ci.StatusPassing:
		us.s.Passing++
	case rep.Status == ci.StatusFailing:
		us.s.Failing++
	}
}

func (us *updaterStat) increaseCollapsed() {
	us.mu.Lock()
	us.s.Collapsed++
	us.mu.Unlock()
}

func (us *updaterStat) snapshot() Stats {
	us.mu.Lock()
	defer us.mu.Unlock()
	return us.s
}
