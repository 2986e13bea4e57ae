// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"runtime"
	"time"
)

// Scheduler is the yield point of the read wait loops.
type Scheduler interface {
	Now() time.Time
	Sleep(d time.Duration)
	// Yield hands a time slice back so that pending I/O can progress.
	Yield()
}

// yieldBackoff keeps the blocking wait from spinning a core.
const yieldBackoff = 100 * time.Microsecond

type systemScheduler struct{}

func (systemScheduler) Now() time.Time        { return time.Now() }
func (systemScheduler) Sleep(d time.Duration) { time.Sleep(d) }

func (systemScheduler) Yield() {
	runtime.Gosched()
	time.Sleep(yieldBackoff)
}
