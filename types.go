package main

import (
	"log/slog"
	"time"

	"postboard/internal/board"
	"postboard/internal/config"
	"postboard/internal/geom"
	"postboard/internal/input"
	"postboard/internal/store"
	"postboard/internal/viewport"
)

type model struct {
	width  int
	height int

	// keyboard cursor in screen cells; mouse motion moves it too
	cursorX  int
	cursorY  int
	zPanMode bool

	config    *config.Config
	logger    *slog.Logger
	board     *board.Board
	view      *viewport.Controller
	events    *input.Dispatcher
	arrows    *board.Session
	host      *boardHost
	surface   *terminalSurface
	autosaver *store.Autosaver
	now       func() time.Time

	mode          Mode
	help          bool
	helpScroll    int
	filename      string
	editNoteID    string
	editText      string
	editCursorPos int
	fileOp        FileOperation
	textInput     string
	pendingPath   string
	fileList      []string
	selectedFile  int
	confirmAction ConfirmAction
	confirmID     string

	dragNote      string
	dragLast      geom.Point
	lastClick     clickPoint
	lastClickTime time.Time
	autosavedRev  uint64

	errorMessage   string
	successMessage string
}

// clickPoint is a screen cell.
type clickPoint struct {
	X, Y int
}

type autosaveMsg struct{}

// fileChangedMsg is sent by the watcher when the open file changes on disk.
type fileChangedMsg struct {
	path string
}
