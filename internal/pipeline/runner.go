package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dyike/AdvisorGo/config"
	"github.com/dyike/AdvisorGo/internal/models"
	"github.com/dyike/AdvisorGo/internal/storage"
)

// ErrExhausted matches a RunError raised after every attempt and fallback
// model was used up.
var ErrExhausted = errors.New("attempts and fallback models exhausted")

// Pipeline is one executable advisor run bound to a model and recorder.
type Pipeline interface {
	Run(ctx context.Context, in *models.Inputs) (*models.RunResult, error)
}

// PipelineFactory builds a pipeline for the given model settings.
type PipelineFactory interface {
	New(ctx context.Context, llm config.LLMConfig, rec storage.Recorder) (Pipeline, error)
}

type FactoryFunc func(ctx context.Context, llm config.LLMConfig, rec storage.Recorder) (Pipeline, error)

func (f FactoryFunc) New(ctx context.Context, llm config.LLMConfig, rec storage.Recorder) (Pipeline, error) {
	return f(ctx, llm, rec)
}

// RunState is the retry bookkeeping of a single Run call.
type RunState struct {
	Attempt    int
	Candidates []string
	ModelIndex int
	ModelUsed  string
}

// RunError is the fatal outcome of a run.
type RunError struct {
	Kind      Kind
	Model     string
	Attempt   int
	Cause     error
	exhausted bool
}

func (e *RunError) Error() string {
	if e.exhausted {
		return fmt.Sprintf("pipeline run failed: %v (model %s, attempt %d): %v", ErrExhausted, e.Model, e.Attempt, e.Cause)
	}
	return fmt.Sprintf("pipeline run failed (model %s, attempt %d): %v", e.Model, e.Attempt, e.Cause)
}

func (e *RunError) Unwrap() error { return e.Cause }

func (e *RunError) Is(target error) bool {
	return e.exhausted && target == ErrExhausted
}

// Runner drives the model selection, retry and fallback policy around a
// pipeline run.
type Runner struct {
	llm         *config.LLMConfig
	maxAttempts int
	factory     PipelineFactory
	recorder    storage.Recorder
	onEvent     EventHandler
	sleep       func(ctx context.Context, d time.Duration) error
}

type Option func(*Runner)

func WithEventHandler(h EventHandler) Option {
	return func(r *Runner) { r.onEvent = h }
}

func WithRecorder(rec storage.Recorder) Option {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// NewRunner returns a runner that switches llm.Model between candidates for
// the duration of each Run.
func NewRunner(llm *config.LLMConfig, maxAttempts int, factory PipelineFactory, opts ...Option) *Runner {
	r := &Runner{
		llm:         llm,
		maxAttempts: max(1, maxAttempts),
		factory:     factory,
		recorder:    storage.Noop{},
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Run(ctx context.Context, in *models.Inputs) (*models.RunResult, error) {
	original := r.llm.Model
	defer func() { r.llm.Model = original }()

	state := &RunState{Attempt: 1, Candidates: r.llm.CandidateModels()}
	if len(state.Candidates) == 0 {
		state.Candidates = []string{original}
	}

	recorder := r.recorder
	storageSwapped := false
	pipelines := make(map[int]Pipeline, len(state.Candidates))

	for {
		model := state.Candidates[state.ModelIndex]
		r.llm.Model = model
		state.ModelUsed = model
		r.emit(Event{Type: EventAttempt, Attempt: state.Attempt, MaxAttempts: r.maxAttempts, Model: model})
		log.Printf("[Runner] attempt %d/%d with model %s", state.Attempt, r.maxAttempts, model)

		res, err := r.execute(ctx, pipelines, state.ModelIndex, recorder, in)
		if err == nil {
			if res.ModelUsed == "" {
				res.ModelUsed = model
			}
			r.emit(Event{Type: EventSucceeded, Attempt: state.Attempt, MaxAttempts: r.maxAttempts, Model: model})
			return res, nil
		}

		kind := Classify(err)
		last := state.ModelIndex >= len(state.Candidates)-1
		msg := CompactError(err.Error())

		switch {
		case kind == KindStorageUnavailable && !storageSwapped:
			log.Printf("[Runner] history store unavailable, continuing without it: %s", msg)
			storageSwapped = true
			recorder = storage.Noop{}
			clear(pipelines)
			r.emit(Event{Type: EventStorageNoop, Attempt: state.Attempt, MaxAttempts: r.maxAttempts, Model: model, Message: msg})
			continue

		case (kind == KindRateLimit || kind == KindPolicyBlock) && !last:
			next := state.Candidates[state.ModelIndex+1]
			typ := EventSwitchModel
			if kind == KindPolicyBlock {
				typ = EventPolicyBlocked
			}
			log.Printf("[Runner] %s on %s, switching to %s", kind, model, next)
			r.emit(Event{Type: typ, Attempt: state.Attempt, MaxAttempts: r.maxAttempts, Model: model, NextModel: next, Message: msg})
			state.ModelIndex++
			continue

		case kind == KindRateLimit && state.Attempt < r.maxAttempts:
			wait := BackoffDelay(state.Attempt)
			log.Printf("[Runner] rate limited on %s, retrying in %s", model, wait)
			r.emit(Event{Type: EventWaitRetry, Attempt: state.Attempt + 1, MaxAttempts: r.maxAttempts, Model: model, Wait: wait, Message: msg})
			if serr := r.sleep(ctx, wait); serr != nil {
				return nil, r.fail(state, KindUnclassified, serr, false)
			}
			state.Attempt++
			state.ModelIndex = 0
			continue

		case kind == KindRateLimit || kind == KindPolicyBlock:
			return nil, r.fail(state, kind, err, true)

		default:
			return nil, r.fail(state, kind, err, false)
		}
	}
}

// execute builds the pipeline for a candidate once and runs it.
func (r *Runner) execute(ctx context.Context, cache map[int]Pipeline, idx int, rec storage.Recorder, in *models.Inputs) (*models.RunResult, error) {
	p, ok := cache[idx]
	if !ok {
		var err error
		p, err = r.factory.New(ctx, *r.llm, rec)
		if err != nil {
			return nil, err
		}
		cache[idx] = p
	}
	res, err := p.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("pipeline produced no result")
	}
	return res, nil
}

func (r *Runner) fail(state *RunState, kind Kind, err error, exhausted bool) error {
	runErr := &RunError{Kind: kind, Model: state.ModelUsed, Attempt: state.Attempt, Cause: err, exhausted: exhausted}
	r.emit(Event{
		Type:        EventFailed,
		Attempt:     state.Attempt,
		MaxAttempts: r.maxAttempts,
		Model:       state.ModelUsed,
		Message:     CompactError(err.Error()),
	})
	log.Printf("[Runner] %v", runErr)
	return runErr
}

func (r *Runner) emit(ev Event) {
	if r.onEvent != nil {
		r.onEvent(ev)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
