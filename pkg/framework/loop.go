package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the period of a Loop if Interval is not set.
const DefaultInterval = 100 * time.Millisecond

// Loop periodically runs controllers ordered by priority levels.
// It's the periodic task abstraction: every iteration runs all
// controllers to completion, then the loop sleeps until the next tick.
type Loop struct {
	TaskName string
	Interval time.Duration

	controllers [PriorityLevels][]Controller
	runners     []Runnable

	iteration uint64
	lock      sync.Mutex
	wakeUpCh  chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopIteration struct {
	loop          *Loop
	ctx           context.Context
	time          time.Time
	seq           uint64
	priorityLevel int
}

// NewLoop creates a Loop with the default interval.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval}
}

// NewPeriodicTask creates a Loop running controllers every period.
func NewPeriodicTask(name string, period time.Duration, ctls ...Controller) *Loop {
	l := &Loop{TaskName: name, Interval: period}
	return l.AddController(PrLvNormal, ctls...)
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers to the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.controllers[priorityLevel] = append(l.controllers[priorityLevel], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions started together with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Name implements Named.
func (l *Loop) Name() string {
	if l.TaskName != "" {
		return l.TaskName
	}
	return "loop"
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	l.lock.Lock()
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}
	l.lock.Unlock()

	if len(l.runners) > 0 {
		runner := NewRunnerWith(ctx)
		runner.Go(l.runners...)
		defer func() {
			if err := runner.Wait(); err != nil {
				glog.Errorf("%s: runner error: %v", l.Name(), err)
			}
		}()
	}

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	glog.V(4).Infof("%s: started, interval %v", l.Name(), interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Step(ctx)
		case <-l.wakeUpCh:
			l.Step(ctx)
		}
	}
}

// Step runs exactly one iteration synchronously.
func (l *Loop) Step(ctx context.Context) {
	l.lock.Lock()
	l.iteration++
	iter := &loopIteration{loop: l, ctx: ctx, time: time.Now(), seq: l.iteration}
	l.lock.Unlock()
	for i := 0; i < PriorityLevels; i++ {
		iter.priorityLevel = i
		for _, ctl := range l.controllers[i] {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("%s: controller error: %v", l.Name(), err)
			}
		}
	}
}

// Iterations returns the number of iterations executed.
func (l *Loop) Iterations() uint64 {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.iteration
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	l.lock.Lock()
	ch := l.wakeUpCh
	l.lock.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) PriorityLevel() int {
	return t.priorityLevel
}

func (t *loopIteration) Iteration() uint64 {
	return t.seq
}

func (t *loopIteration) TriggerNext() {
	t.loop.TriggerNext()
}
