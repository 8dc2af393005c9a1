// Package menu runs the numbered main menu that ties the resume store, the
// collector, the job posting acquirer, tailoring and cover letters together.
package menu

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/jonathan/resume-builder/internal/console"
	"github.com/jonathan/resume-builder/internal/coverletter"
	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// UI is the dialog surface the menu drives.
type UI interface {
	Println(a ...any)
	Printf(format string, a ...any)
	Heading(s string)
	Success(format string, a ...any)
	Warn(format string, a ...any)
	Error(format string, a ...any)
	Accent(s string)
	Option(key, text string)
	Label(s string) string
	Banner(art string)
	Ask(prompt string) (string, error)
	Confirm(prompt string) (bool, error)
	Choose(prompt string, choices []string) (string, error)
}

var _ UI = (*console.Console)(nil)

// Collector builds a resume document interactively.
type Collector interface {
	Collect() (*types.Document, error)
}

// Acquirer turns posting input into text and cleans it up.
type Acquirer interface {
	Acquire(ctx context.Context, input string) *ingestion.Posting
	Clean(ctx context.Context, text string) (string, error)
}

// Tailorer rewrites a baseline for a posting.
type Tailorer interface {
	Tailor(ctx context.Context, baseline *types.Document, posting string) (*types.Document, error)
}

// LetterWriter generates cover letters.
type LetterWriter interface {
	Generate(ctx context.Context, resume *types.Document, posting string) (*coverletter.Result, error)
}

// Deps are the collaborators of a Menu.
type Deps struct {
	UI        UI
	Store     *store.Store
	Collector Collector
	Acquirer  Acquirer
	Tailorer  Tailorer
	Letters   LetterWriter
	Logger    *slog.Logger
	Now       func() time.Time
}

// Menu is the main loop state.
type Menu struct {
	ui        UI
	store     *store.Store
	collector Collector
	acquirer  Acquirer
	tailorer  Tailorer
	letters   LetterWriter
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Menu.
func New(deps Deps) *Menu {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Menu{
		ui:        deps.UI,
		store:     deps.Store,
		collector: deps.Collector,
		acquirer:  deps.Acquirer,
		tailorer:  deps.Tailorer,
		letters:   deps.Letters,
		logger:    deps.Logger,
		now:       deps.Now,
	}
}

var menuChoices = []string{"1", "2", "3", "4", "5", "6"}

// errQuit ends the loop normally.
var errQuit = errors.New("quit")

// Run shows the banner and serves menu choices until the user quits, the
// input ends, or ctx is cancelled. Failures inside a choice are reported to
// the user and the loop continues.
func (m *Menu) Run(ctx context.Context) error {
	m.ui.Banner(banner)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.ui.Println()
		m.ui.Heading("Main Menu")
		m.ui.Option("1", "Create/Edit Baseline Resume")
		m.ui.Option("2", "Create a Tailored Resume for a Job Posting")
		m.ui.Option("3", "List All Resumes")
		m.ui.Option("4", "Load and View a Resume")
		m.ui.Option("5", "Create Cover Letter for a Tailored Resume")
		m.ui.Option("6", "Quit")

		choice, err := m.ui.Choose("Enter your choice", menuChoices)
		if err == nil {
			err = m.dispatch(ctx, choice)
		}

		switch {
		case err == nil:
		case errors.Is(err, errQuit), errors.Is(err, console.ErrClosed):
			m.ui.Accent("Adios amigo!")
			return nil
		default:
			return err
		}
	}
}

func (m *Menu) dispatch(ctx context.Context, choice string) error {
	m.logger.Debug("menu choice", "choice", choice)
	switch choice {
	case "1":
		return m.createBaseline()
	case "2":
		return m.createTailored(ctx)
	case "3":
		return m.listResumes()
	case "4":
		return m.viewResume()
	case "5":
		return m.createCoverLetter(ctx)
	case "6":
		return errQuit
	}
	return nil
}

// loadIndex lists resumes, reporting a read failure or an empty store with emptyMsg.
func (m *Menu) loadIndex(emptyMsg string) (map[string]*types.Document, []string, bool) {
	resumes, err := m.store.List()
	if err != nil {
		m.ui.Error("Error listing resumes: %v", err)
		return nil, nil, false
	}
	if len(resumes) == 0 {
		m.ui.Error("%s", emptyMsg)
		return nil, nil, false
	}
	return resumes, store.Names(resumes), true
}

// printNumbered prints names as a 1-based list.
func (m *Menu) printNumbered(names []string) {
	for i, name := range names {
		m.ui.Printf("%d. %s\n", i+1, name)
	}
}

// pick resolves a 1-based number or an exact name against names.
func pick(answer string, names []string) (string, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(names) {
			return names[n-1], true
		}
		return "", false
	}
	for _, name := range names {
		if name == answer {
			return name, true
		}
	}
	return "", false
}
