package metrics

import (
	"sync"
	"time"
)

// testRecorder counts calls; used to check that NoopRecorder and custom
// recorders satisfy the interface.
type testRecorder struct {
	mu            sync.Mutex
	stages        map[Stage]int
	results       map[ResultLabel]int
	buildOutcomes map[BuildOutcomeLabel]int
	workers       int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stages:        map[Stage]int{},
		results:       map[ResultLabel]int{},
		buildOutcomes: map[BuildOutcomeLabel]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage Stage, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stages[stage]++
}

func (t *testRecorder) IncDocumentResult(result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results[result]++
}

func (t *testRecorder) ObserveBuildDuration(time.Duration) {}

func (t *testRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buildOutcomes[outcome]++
}

func (t *testRecorder) SetWorkers(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.workers = n
}

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
	_ Recorder = newTestRecorder()
)
