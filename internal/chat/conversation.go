package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"iss-assistant-backend/internal/action"
	"iss-assistant-backend/internal/inventory"
	"iss-assistant-backend/internal/observability"
	"iss-assistant-backend/internal/stage"
	"iss-assistant-backend/internal/store"
)

// ErrEmptyMessage is returned for blank submissions; nothing is recorded.
var ErrEmptyMessage = errors.New("message is empty")

type Interpreter interface {
	InterpretResult(ctx context.Context, utterance string) stage.Result[action.Descriptor]
}

type Dispatcher interface {
	Dispatch(ctx context.Context, endpoint, method string, params, payload map[string]any) (any, error)
}

type Synthesizer interface {
	Synthesize(endpoint string, params map[string]any) any
}

type Summarizer interface {
	Summarize(ctx context.Context, query string, result any, endpoint string) (string, error)
}

type Responder interface {
	Respond(ctx context.Context, utterance string) string
}

// Pipeline is the set of stages a turn runs through.
type Pipeline struct {
	Interpreter Interpreter
	Dispatcher  Dispatcher
	Synthesizer Synthesizer
	Summarizer  Summarizer
	Responder   Responder
}

type Options struct {
	Policy Policy
	// MockFallback substitutes synthetic data when the backend call fails.
	MockFallback bool
	Greeting     string
	ErrorReply   string
}

// Reply is what a resolved turn produced.
type Reply struct {
	TurnID    string        `json:"turnId"`
	Text      string        `json:"reply"`
	Phases    []Phase       `json:"phases"`
	Synthetic bool          `json:"synthetic"`
	Outcome   stage.Outcome `json:"outcome"`
}

// TurnState is the phase of one in-flight turn.
type TurnState struct {
	TurnID string `json:"turnId"`
	Phase  Phase  `json:"phase"`
}

// Snapshot is a consistent view of the conversation.
type Snapshot struct {
	SessionID string          `json:"sessionId"`
	Messages  []store.Message `json:"messages"`
	IsLoading bool            `json:"isLoading"`
	Turns     []TurnState     `json:"turns"`
	Input     string          `json:"input"`
}

// Conversation owns one session's transcript, loading state and input
// buffer. All mutations go through mu so snapshots are coherent.
type Conversation struct {
	pipeline   Pipeline
	opts       Options
	transcript *store.Transcript
	sem        *semaphore.Weighted
	log        zerolog.Logger

	mu       sync.Mutex
	input    string
	inflight []TurnState
	subs     map[int]chan Snapshot
	nextSub  int
}

func NewConversation(tr *store.Transcript, p Pipeline, opts Options) *Conversation {
	c := &Conversation{
		pipeline:   p,
		opts:       opts,
		transcript: tr,
		subs:       make(map[int]chan Snapshot),
		log:        observability.Component("chat").With().Str("session_id", tr.SessionID()).Logger(),
	}
	if opts.Policy == PolicySerial {
		c.sem = semaphore.NewWeighted(1)
	}
	if opts.Greeting != "" && len(tr.Messages()) == 0 {
		tr.Append(store.NewMessage(store.RoleAssistant, opts.Greeting, ""))
	}
	return c
}

func (c *Conversation) SessionID() string { return c.transcript.SessionID() }

func (c *Conversation) SetInput(s string) {
	c.mu.Lock()
	c.input = s
	c.publishLocked()
	c.mu.Unlock()
}

func (c *Conversation) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SubmitInput submits the pending input buffer.
func (c *Conversation) SubmitInput(ctx context.Context) (Reply, error) {
	return c.Submit(ctx, c.Input())
}

func (c *Conversation) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight) > 0
}

func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe delivers a snapshot after every state change, starting with the
// current one. A slow reader only sees the latest snapshot. The returned
// func unsubscribes and closes the channel.
func (c *Conversation) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.snapshotLocked()
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			close(ch)
			c.mu.Unlock()
		})
	}
}

// Submit runs one turn to completion and returns its reply. Blank input is
// rejected with ErrEmptyMessage. Under the serial policy Submit waits for
// earlier turns; ctx bounds only that wait. Once admitted the turn always
// resolves.
func (c *Conversation) Submit(ctx context.Context, utterance string) (Reply, error) {
	if strings.TrimSpace(utterance) == "" {
		return Reply{}, ErrEmptyMessage
	}
	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return Reply{}, fmt.Errorf("waiting for previous turn: %w", err)
		}
		defer c.sem.Release(1)
	}

	t := &turn{id: uuid.NewString(), query: utterance, started: time.Now()}
	t.log = c.log.With().Str("turn_id", t.id).Logger()

	c.mu.Lock()
	c.input = ""
	c.transcript.Append(store.NewMessage(store.RoleUser, utterance, t.id))
	c.inflight = append(c.inflight, TurnState{TurnID: t.id, Phase: PhaseSubmitted})
	t.phases = append(t.phases, PhaseSubmitted)
	c.publishLocked()
	c.mu.Unlock()
	observability.TurnStarted()
	t.log.Info().Msg("turn submitted")

	text, outcome := c.run(context.WithoutCancel(ctx), t)
	return c.resolve(t, text, outcome), nil
}

type turn struct {
	id        string
	query     string
	started   time.Time
	phases    []Phase
	synthetic bool
	log       zerolog.Logger
}

// run executes the pipeline. Panics and fatal stage results become the
// fixed error reply.
func (c *Conversation) run(ctx context.Context, t *turn) (text string, outcome stage.Outcome) {
	outcome = stage.Ok
	defer func() {
		if r := recover(); r != nil {
			t.log.Error().Interface("panic", r).Msg("turn panicked")
			text, outcome = c.opts.ErrorReply, stage.Fatal
		}
	}()

	c.enter(t, PhaseUnderstanding, StatusUnderstanding)
	ir := c.pipeline.Interpreter.InterpretResult(ctx, t.query)
	outcome = record("interpret", outcome, ir.Outcome)
	if ir.IsFatal() {
		t.log.Error().Err(ir.Err).Msg("interpretation failed")
		return c.opts.ErrorReply, outcome
	}

	d := ir.Value
	if d.IsGeneralQuery {
		c.enter(t, PhaseGeneralAnswer, "")
		return c.pipeline.Responder.Respond(ctx, t.query), outcome
	}
	d = d.WithDefaults()

	c.enter(t, PhaseFetching, StatusRetrieving)
	fr := c.fetch(ctx, t, d)
	outcome = record("fetch", outcome, fr.Outcome)
	if fr.IsFatal() {
		t.log.Error().Err(fr.Err).Str("endpoint", d.Endpoint).Msg("fetch failed")
		return c.opts.ErrorReply, outcome
	}

	c.enter(t, PhaseSummarizing, StatusSummarizing)
	summary, err := c.pipeline.Summarizer.Summarize(ctx, t.query, fr.Value, d.Endpoint)
	if err != nil {
		outcome = record("summarize", outcome, stage.Fatal)
		t.log.Error().Err(err).Msg("summary failed")
		return c.opts.ErrorReply, outcome
	}
	outcome = record("summarize", outcome, stage.Ok)
	return summary, outcome
}

func (c *Conversation) fetch(ctx context.Context, t *turn, d action.Descriptor) stage.Result[any] {
	result, err := c.pipeline.Dispatcher.Dispatch(ctx, d.Endpoint, d.Method, d.Params, d.Payload)
	if err == nil {
		return stage.OK(result)
	}
	var de *inventory.DispatchError
	if !errors.As(err, &de) || !c.opts.MockFallback {
		return stage.Fail[any](err)
	}

	c.enter(t, PhaseFetchFailed, "")
	c.enter(t, PhaseSyntheticFetching, "")
	t.synthetic = true
	t.log.Warn().Err(err).Str("endpoint", d.Endpoint).Msg("backend unavailable, answering from synthetic data")
	return stage.Recover(c.pipeline.Synthesizer.Synthesize(d.Endpoint, d.Params), err)
}

// enter moves t to phase and, when label is set, appends a status message.
func (c *Conversation) enter(t *turn, phase Phase, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t.phases = append(t.phases, phase)
	for i := range c.inflight {
		if c.inflight[i].TurnID == t.id {
			c.inflight[i].Phase = phase
		}
	}
	if label != "" {
		c.transcript.AppendStatus(t.id, label)
	}
	c.publishLocked()
}

// resolve swaps the turn's status messages for the assistant message and
// clears its loading state in one step.
func (c *Conversation) resolve(t *turn, text string, outcome stage.Outcome) Reply {
	c.mu.Lock()
	t.phases = append(t.phases, PhaseResolved)
	c.transcript.Resolve(t.id, store.NewMessage(store.RoleAssistant, text, t.id))
	for i := range c.inflight {
		if c.inflight[i].TurnID == t.id {
			c.inflight = append(c.inflight[:i], c.inflight[i+1:]...)
			break
		}
	}
	c.publishLocked()
	c.mu.Unlock()

	observability.TurnResolved(string(outcome), t.started)
	t.log.Info().Str("outcome", string(outcome)).Bool("synthetic", t.synthetic).
		Dur("elapsed", time.Since(t.started)).Msg("turn resolved")

	return Reply{TurnID: t.id, Text: text, Phases: t.phases, Synthetic: t.synthetic, Outcome: outcome}
}

func (c *Conversation) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID: c.transcript.SessionID(),
		Messages:  c.transcript.Messages(),
		IsLoading: len(c.inflight) > 0,
		Turns:     append([]TurnState{}, c.inflight...),
		Input:     c.input,
	}
}

func (c *Conversation) publishLocked() {
	if len(c.subs) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// record counts a stage outcome and returns the worse of acc and o.
func record(name string, acc, o stage.Outcome) stage.Outcome {
	observability.RecordStage(name, string(o))
	if rank(o) > rank(acc) {
		return o
	}
	return acc
}

func rank(o stage.Outcome) int {
	switch o {
	case stage.Recovered:
		return 1
	case stage.Fatal:
		return 2
	default:
		return 0
	}
}
