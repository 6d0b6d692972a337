package app

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"reading-hero-service/internal/catalog"
	"reading-hero-service/internal/domain"
	"reading-hero-service/internal/quiz"
)

// GenerationFailedMessage is shown on the setup screen after a failed generation.
const GenerationFailedMessage = "אופס, הייתה בעיה ביצירת המבדק. נסה שוב, אולי עם נושא אחר?"

// Generator produces quiz documents and topic suggestions.
type Generator interface {
	Generate(ctx context.Context, settings domain.Settings) (domain.QuizDocument, error)
	SuggestTopic(ctx context.Context) (string, error)
}

// ProgressStore is the player's persisted record.
type ProgressStore interface {
	Snapshot() domain.ProgressRecord
	Apply(ctx context.Context, result domain.QuizResult) (domain.ProgressRecord, []string)
	Purchase(ctx context.Context, itemID string) (domain.ProgressRecord, error)
	Equip(ctx context.Context, kind domain.ItemKind, value string) (domain.ProgressRecord, error)
}

// Ticket identifies one generation request. A response is applied only while
// its ticket is still the controller's current one.
type Ticket struct {
	id       uint64
	settings domain.Settings
}

// Controller drives one player's screens: setup, generation, quiz, bonus,
// results and shop. It is safe for concurrent use; the generation call runs
// outside the lock.
type Controller struct {
	id        string
	generator Generator
	progress  ProgressStore

	mu          sync.Mutex
	state       State
	ticket      uint64
	inFlight    bool
	session     quiz.Session
	outcome     *outcome
	errMsg      string
	subscribers map[chan View]struct{}
}

type outcome struct {
	result  domain.QuizResult
	granted []string
}

func NewController(generator Generator, progress ProgressStore) *Controller {
	return &Controller{
		id:          uuid.NewString(),
		generator:   generator,
		progress:    progress,
		state:       StateSetup,
		subscribers: make(map[chan View]struct{}),
	}
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SuggestTopic never fails: a failed or empty suggestion becomes the fallback topic.
func (c *Controller) SuggestTopic(ctx context.Context) string {
	topic, err := c.generator.SuggestTopic(ctx)
	if err != nil {
		log.Printf("session %s: topic suggestion failed: %v", c.id, err)
		return catalog.FallbackTopic
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return catalog.FallbackTopic
	}
	return topic
}

// StartQuiz requests a quiz and blocks until it is generated or has failed.
func (c *Controller) StartQuiz(ctx context.Context, settings domain.Settings) error {
	t, err := c.Begin(settings)
	if err != nil {
		return err
	}
	return c.Generate(ctx, t)
}

// Begin moves Setup to Generating. Only one request may be outstanding, even
// across an Abandon: the next one can start once the previous has resolved.
func (c *Controller) Begin(settings domain.Settings) (Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight || c.state == StateGenerating {
		return Ticket{}, domain.ErrGenerationInFlight
	}
	to, err := nextState(c.state, eventStart)
	if err != nil {
		return Ticket{}, err
	}
	if err := settings.Validate(); err != nil {
		return Ticket{}, err
	}

	c.ticket++
	c.inFlight = true
	c.state = to
	c.errMsg = ""
	c.session = quiz.Session{}
	c.outcome = nil
	c.broadcastLocked()
	return Ticket{id: c.ticket, settings: settings}, nil
}

// Generate calls the generator for t and applies the response unless the
// player has moved on in the meantime. The generator error, if any, is returned.
func (c *Controller) Generate(ctx context.Context, t Ticket) error {
	doc, err := c.generator.Generate(ctx, t.settings)
	var session quiz.Session
	if err == nil {
		session, err = quiz.New(doc)
		if err != nil {
			err = &domain.GenerationError{Err: err}
		}
	}
	c.resolve(t, session, err)
	return err
}

func (c *Controller) resolve(t Ticket, session quiz.Session, genErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inFlight = false
	if c.state != StateGenerating || t.id != c.ticket {
		log.Printf("session %s: discarding stale generation response (ticket %d)", c.id, t.id)
		return
	}
	if genErr != nil {
		log.Printf("session %s: %v", c.id, genErr)
		c.state, _ = nextState(c.state, eventFailed)
		c.errMsg = GenerationFailedMessage
		c.broadcastLocked()
		return
	}
	c.state, _ = nextState(c.state, eventGenerated)
	c.session = session
	c.broadcastLocked()
}

// Select toggles or picks an option of the active question.
func (c *Controller) Select(optionID string) error {
	return c.onSession(func(s quiz.Session) quiz.Session { return s.Select(optionID) })
}

// Submit locks in the active answer.
func (c *Controller) Submit() error {
	return c.onSession(quiz.Session.Submit)
}

func (c *Controller) onSession(apply func(quiz.Session) quiz.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateQuiz {
		return domain.ErrInvalidTransition
	}
	c.session = apply(c.session)
	c.broadcastLocked()
	return nil
}

// Next advances to the following question. After the last one the session is
// finalized, its result committed to the progress store, and the controller
// moves to Bonus or Results.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateQuiz {
		return domain.ErrInvalidTransition
	}

	s, done, err := c.session.Advance()
	if err != nil {
		return err
	}
	if !done {
		c.session = s
		c.broadcastLocked()
		return nil
	}

	s, result, err := s.Finalize()
	if err != nil {
		return err
	}
	ev := eventFinalized
	if s.Document().HasBonus() {
		ev = eventFinalizedBonus
	}
	to, err := nextState(c.state, ev)
	if err != nil {
		return err
	}

	_, granted := c.progress.Apply(ctx, result)
	log.Printf("session %s: quiz finished score=%d points=%d new achievements=%v", c.id, result.ScorePercent, result.PointsEarned, granted)

	c.session = s
	c.outcome = &outcome{result: result, granted: granted}
	c.state = to
	c.broadcastLocked()
	return nil
}

// FinishBonus leaves the bonus section for the results.
func (c *Controller) FinishBonus() error { return c.fire(eventFinishBonus) }

// Home returns from the results to setup.
func (c *Controller) Home() error { return c.fire(eventHome) }

// OpenShop enters the shop from setup or results.
func (c *Controller) OpenShop() error { return c.fire(eventShop) }

// Back leaves the shop for setup.
func (c *Controller) Back() error { return c.fire(eventBack) }

func (c *Controller) fire(ev event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	to, err := nextState(c.state, ev)
	if err != nil {
		return err
	}
	c.state = to
	if to == StateSetup || to == StateShop {
		c.session = quiz.Session{}
	}
	c.broadcastLocked()
	return nil
}

// Abandon returns to setup from anywhere. An outstanding generation response
// will be discarded when it arrives, and Begin is refused until it does. The
// abandoned quiz earns nothing.
func (c *Controller) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticket++
	c.state = StateSetup
	c.session = quiz.Session{}
	c.outcome = nil
	c.errMsg = ""
	c.broadcastLocked()
}

// Purchase buys a shop item. Refusals leave everything unchanged.
func (c *Controller) Purchase(ctx context.Context, itemID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateShop {
		return domain.ErrInvalidTransition
	}
	if _, err := c.progress.Purchase(ctx, itemID); err != nil {
		return err
	}
	c.broadcastLocked()
	return nil
}

// Equip switches the current theme or icon.
func (c *Controller) Equip(ctx context.Context, kind domain.ItemKind, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateShop {
		return domain.ErrInvalidTransition
	}
	if _, err := c.progress.Equip(ctx, kind, value); err != nil {
		return err
	}
	c.broadcastLocked()
	return nil
}

// View returns the current screen.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Subscribe returns a channel that receives a view after every change,
// starting with the current one. The caller must invoke cancel.
func (c *Controller) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 8)

	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	ch <- c.viewLocked()
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Controller) broadcastLocked() {
	if len(c.subscribers) == 0 {
		return
	}
	v := c.viewLocked()
	for ch := range c.subscribers {
		select {
		case ch <- v:
		default:
			// Slow reader: drop its oldest view so the newest always lands.
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}
