package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"postboard/internal/board"
	"postboard/internal/config"
	"postboard/internal/geom"
	"postboard/internal/input"
	"postboard/internal/store"
	"postboard/internal/viewport"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Bool("no-autosave") {
		cfg.Storage.Autosave = false
	}
	if cmd.Bool("no-watch") {
		cfg.Storage.Watch = false
	}
	if cmd.Bool("disable-pan-zoom") {
		cfg.Canvas.DisablePanZoom = true
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	m, err := newModel(cfg, logger)
	if err != nil {
		return err
	}
	if path := cmd.Args().First(); path != "" {
		if err := m.openBoard(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			// a new board that will be created on first save
			m.filename = path
		}
	}

	return runProgram(ctx, m)
}

// runProgram drives the UI and, when enabled, the file watcher. Whichever
// finishes first stops the other.
func runProgram(ctx context.Context, m model) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(gctx),
	)

	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("ui: %w", err)
		}
		return nil
	})

	if m.config.Storage.Watch && m.filename != "" {
		path := m.filename
		g.Go(func() error {
			return store.Watch(gctx, path, m.logger, func() {
				p.Send(fileChangedMsg{path: path})
			})
		})
	}

	return g.Wait()
}

func main() {
	cmd := &cli.Command{
		Name:      "postboard",
		Usage:     "Sticky notes joined by arrows on a zoomable terminal canvas",
		ArgsUsage: "[board.json]",
		Action:    run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "~/.postboard.yaml",
				Value:       config.DefaultPath(),
				Sources:     cli.EnvVars("POSTBOARD_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "no-autosave",
				Usage: "Do not write periodic snapshots",
			},
			&cli.BoolFlag{
				Name:  "no-watch",
				Usage: "Do not reload the board when its file changes on disk",
			},
			&cli.BoolFlag{
				Name:  "disable-pan-zoom",
				Usage: "Lock the view at its initial zoom and position",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "postboard:", err)
		os.Exit(1)
	}
}

func newModel(cfg *config.Config, logger *slog.Logger) (model, error) {
	view, err := viewport.NewController(cfg.Canvas.Viewport())
	if err != nil {
		return model{}, fmt.Errorf("viewport: %w", err)
	}

	b := board.New()
	surface := newTerminalSurface(cfg.Canvas.CellWidth, cfg.Canvas.CellHeight)
	events := input.NewDispatcher()
	host := &boardHost{board: b, color: cfg.UI.DefaultColor, logger: logger}

	m := model{
		config:  cfg,
		logger:  logger,
		board:   b,
		view:    view,
		events:  events,
		surface: surface,
		host:    host,
		arrows:  board.NewSession(host, view, surface, events, b.IDs(), logger.With(slog.String("component", "arrows"))),
		now:     time.Now,
		mode:    ModeNormal,
	}
	if cfg.Storage.Autosave {
		dir := cfg.Storage.SaveDirectory
		if dir == "" {
			dir = "."
		}
		m.autosaver = store.NewAutosaver(dir, cfg.Storage.AutosaveSlots, logger.With(slog.String("component", "autosave")))
	}
	return m, nil
}

func (m model) Init() tea.Cmd {
	return m.scheduleAutosave()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.surface.resize(msg.Width, msg.Height-statusLines)
		m.ensureCursorInBounds()
		return m, nil

	case tea.MouseMsg:
		if m.help || m.mode == ModeFileInput || m.mode == ModeConfirm {
			return m, nil
		}
		m.handleMouse(msg)
		return m, nil

	case autosaveMsg:
		m.autosave()
		return m, m.scheduleAutosave()

	case fileChangedMsg:
		m.fileChanged(msg.path)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}

	var lines []string
	if m.mode == ModeFileInput && m.fileOp == FileOpOpen {
		lines = m.fileListView()
	} else {
		lines = m.renderCanvas()
	}
	return strings.Join(lines, "\n") + "\n" + m.statusLine()
}

// targetNote is the selected note, or failing that the note under the cursor.
func (m *model) targetNote() (string, bool) {
	if id, ok := m.board.SelectedNote(); ok {
		if _, exists := m.board.Note(id); exists {
			return id, true
		}
	}
	return board.HitTest(m.board.Notes(), m.cursorCanvas())
}

func (m *model) cursorCanvas() geom.Point {
	return m.view.Transform().SurfaceToCanvas(m.surface, m.cursorPoint())
}

func (m *model) cursorEvent() input.PointerEvent {
	return input.PointerEvent{Screen: m.cursorPoint(), Button: input.ButtonLeft}
}

func (m *model) startEditing(id string) {
	n, ok := m.board.Note(id)
	if !ok {
		return
	}
	if err := m.board.StartEditing(id); err != nil {
		m.logger.Warn("start editing failed", slog.String("note_id", id), slog.String("error", err.Error()))
		return
	}
	m.board.SelectNote(id)
	m.mode = ModeEditing
	m.editNoteID = id
	m.editText = n.Text
	m.editCursorPos = len(n.Text)
}

// syncEditing enters edit mode for a note the board flagged as editing, such
// as one the arrow session just created.
func (m *model) syncEditing() {
	if n, ok := m.board.Editing(); ok && (m.mode != ModeEditing || m.editNoteID != n.ID) {
		m.startEditing(n.ID)
	}
}

func (m *model) commitEdit() {
	if m.mode != ModeEditing {
		return
	}
	if n, ok := m.board.Note(m.editNoteID); ok && n.Text != m.editText {
		if err := m.board.SetText(n.ID, m.editText); err != nil {
			m.logger.Warn("set text failed", slog.String("note_id", n.ID), slog.String("error", err.Error()))
		}
	}
	m.board.StopEditing()
	m.mode = ModeNormal
	m.editNoteID = ""
	m.editText = ""
	m.editCursorPos = 0
}

func (m *model) deleteNote(id string) {
	if start, ok := m.arrows.ArrowStart(); ok && start.ID == id {
		m.arrows.Cancel()
	}
	if err := m.board.DeleteNote(id); err != nil {
		m.errorMessage = describeError(err)
		return
	}
	m.logger.Info("note deleted", slog.String("note_id", id))
}

func (m *model) deleteArrow(id string) {
	if err := m.board.DeleteArrow(id); err != nil {
		m.errorMessage = describeError(err)
		return
	}
	m.logger.Info("arrow deleted", slog.String("arrow_id", id))
}

// deleteSelected removes the selected arrow or note, asking first when
// confirmations are on.
func (m *model) deleteSelected() {
	action, id := ConfirmDeleteArrow, ""
	if a, ok := m.board.SelectedArrow(); ok {
		id = a
	} else if n, ok := m.targetNote(); ok {
		action, id = ConfirmDeleteNote, n
	} else {
		m.errorMessage = "Nothing selected"
		return
	}
	if m.config.UI.Confirmations {
		m.mode = ModeConfirm
		m.confirmAction = action
		m.confirmID = id
		return
	}
	if action == ConfirmDeleteArrow {
		m.deleteArrow(id)
	} else {
		m.deleteNote(id)
	}
}

func (m *model) promptFile(op FileOperation) {
	m.mode = ModeFileInput
	m.fileOp = op
	m.errorMessage = ""
	m.successMessage = ""
	m.textInput = ""
	if op == FileOpSave && m.filename != "" {
		m.textInput = m.filename
	}
	if op == FileOpOpen {
		m.scanBoardFiles()
	}
}
