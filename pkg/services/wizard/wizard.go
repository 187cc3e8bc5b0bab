package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/rs/zerolog"
)

const SkippedAnswer = "default"

var (
	ErrNoResources = errors.New("no resources available for the wizard")
	ErrNotStarted  = errors.New("wizard has not been started")
)

// Generator is the part of the estimator the wizard talks to.
type Generator interface {
	ClarifyQuestions(ctx context.Context, resources []domain.Resource) ([]domain.Question, error)
	GenerateUsage(
		ctx context.Context,
		resources []domain.Resource,
		questions []domain.Question,
		answers []string,
	) (domain.UsageAnswer, error)
}

// Wizard walks the user through the estimator's clarifying questions, one
// step at a time. It is not safe for concurrent use.
type Wizard struct {
	generator Generator

	started   bool
	finished  bool
	resources []domain.Resource
	questions []domain.Question
	answers   []string
	step      int
}

func New(generator Generator) (*Wizard, error) {
	if generator == nil {
		return nil, fmt.Errorf("usage generator is nil")
	}
	return &Wizard{generator: generator}, nil
}

func (w *Wizard) Start(ctx context.Context, resources []domain.Resource) error {
	if len(resources) == 0 {
		return ErrNoResources
	}

	questions, err := w.generator.ClarifyQuestions(ctx, resources)
	if err != nil {
		return fmt.Errorf("fetch questions: %w", err)
	}

	w.reset()
	w.started = true
	w.resources = append([]domain.Resource(nil), resources...)
	w.questions = questions
	w.answers = make([]string, len(questions))
	w.finished = len(questions) == 0

	zerolog.Ctx(ctx).Debug().Int("questions", len(questions)).Msg("usage wizard started")
	return nil
}

// Current returns the question at the current step.
func (w *Wizard) Current() (domain.Question, bool) {
	if !w.started || w.step >= len(w.questions) {
		return domain.Question{}, false
	}
	return w.questions[w.step], true
}

func (w *Wizard) Step() int {
	return w.step
}

func (w *Wizard) Questions() []domain.Question {
	return append([]domain.Question(nil), w.questions...)
}

func (w *Wizard) Answers() []string {
	return append([]string(nil), w.answers...)
}

func (w *Wizard) Answer(value string) {
	if w.step < len(w.answers) {
		w.answers[w.step] = value
	}
}

// Next moves to the following question. On the last question it marks the
// wizard done and reports false.
func (w *Wizard) Next() bool {
	if w.step+1 < len(w.questions) {
		w.step++
		return true
	}
	if w.started {
		w.finished = true
	}
	return false
}

func (w *Wizard) Previous() bool {
	if w.step == 0 {
		return false
	}
	w.step--
	w.finished = false
	return true
}

// Skip records the default answer for the current question and moves on.
func (w *Wizard) Skip() bool {
	w.Answer(SkippedAnswer)
	return w.Next()
}

func (w *Wizard) Done() bool {
	return w.finished
}

// Complete sends every answer collected so far to usage generation and
// resets the wizard on success.
func (w *Wizard) Complete(ctx context.Context) (domain.UsageAnswer, error) {
	if !w.started {
		return nil, ErrNotStarted
	}

	usage, err := w.generator.GenerateUsage(ctx, w.resources, w.questions, w.answers)
	if err != nil {
		return nil, fmt.Errorf("generate usage: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Int("resources", len(usage)).Msg("usage wizard completed")
	w.reset()
	return usage, nil
}

func (w *Wizard) reset() {
	w.started = false
	w.finished = false
	w.resources = nil
	w.questions = nil
	w.answers = nil
	w.step = 0
}
