package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"postboard/internal/board"
	"postboard/internal/input"
	"postboard/internal/viewport"
)

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.help {
		m.handleHelpKey(key)
		return m, nil
	}

	switch m.mode {
	case ModeEditing:
		m.handleEditingKey(msg)
		return m, nil
	case ModeFileInput:
		m.handleFileInputKey(msg)
		return m, nil
	case ModeConfirm:
		return m.handleConfirmKey(key)
	}

	// scoped subscribers, like Esc while drawing an arrow, go first
	if m.events.KeyPressed(input.KeyEvent{Key: key}) {
		m.successMessage = ""
		return m, nil
	}
	return m.handleNormalKey(key)
}

func (m model) handleNormalKey(key string) (tea.Model, tea.Cmd) {
	m.errorMessage = ""
	m.successMessage = ""

	switch key {
	case "ctrl+c", "q":
		if m.config.UI.Confirmations && m.board.Dirty() {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmQuit
			return m, nil
		}
		return m, tea.Quit
	case "?":
		m.help = true
		m.helpScroll = 0
	case "z":
		m.zPanMode = !m.zPanMode
	case "Z":
		m.view.SetEnabled(!m.view.Enabled())
		if m.view.Enabled() {
			m.successMessage = "Pan and zoom unlocked"
		} else {
			m.successMessage = "Pan and zoom locked"
		}
	case "h", "left", "H", "shift+left",
		"l", "right", "L", "shift+right",
		"k", "up", "K", "shift+up",
		"j", "down", "J", "shift+down":
		m.handleNavigation(key)
	case "+", "=":
		m.zoomAtCursor(viewport.ZoomIn)
	case "-", "_":
		m.zoomAtCursor(viewport.ZoomOut)
	case "0":
		m.resetView()
	case "enter", " ":
		// keyboard click at the cursor
		m.press(m.cursorEvent(), m.isDoubleClick(m.cursorX, m.cursorY))
		m.endDrags()
	case "n":
		m.createNoteAt(m.cursorCanvas())
	case "a":
		if m.arrows.Drawing() {
			m.arrows.HandleCanvasClick(m.cursorEvent())
			m.syncEditing()
			break
		}
		id, ok := m.targetNote()
		if !ok {
			m.errorMessage = "No note selected"
			break
		}
		m.beginArrow(id, m.cursorCanvas(), m.cursorPoint())
	case "e":
		if id, ok := m.targetNote(); ok {
			m.startEditing(id)
		}
	case "c":
		m.cycleColor()
	case "y":
		m.copyNoteText()
	case "p":
		m.pasteNote()
	case "d", "delete":
		m.deleteSelected()
	case "x":
		if n := m.board.PruneArrows(); n > 0 {
			m.successMessage = fmt.Sprintf("Removed %d dangling arrow(s)", n)
		} else {
			m.successMessage = "No dangling arrows"
		}
	case "ctrl+s":
		if m.filename == "" {
			m.promptFile(FileOpSave)
			break
		}
		if err := m.saveBoard(m.filename); err != nil {
			m.errorMessage = describeError(err)
			break
		}
		m.successMessage = "Saved to " + m.filename
	case "s":
		m.promptFile(FileOpSave)
	case "o":
		m.promptFile(FileOpOpen)
	case "ctrl+r":
		if m.config.UI.Confirmations && m.board.Dirty() {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmReload
			break
		}
		m.reload()
	case "P":
		m.promptFile(FileOpSavePNG)
	case "S":
		m.promptFile(FileOpSaveSVG)
	case "esc":
		m.zPanMode = false
		m.board.ClearSelection()
	}
	return m, nil
}

func (m *model) handleHelpKey(key string) {
	switch key {
	case "esc", "q", "?":
		m.help = false
		m.helpScroll = 0
	case "j", "down":
		maxScroll := max(len(helpLines)-max(m.height-1, 1), 0)
		if m.helpScroll < maxScroll {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
}

func (m *model) handleEditingKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlS:
		m.commitEdit()
	case tea.KeyEnter:
		m.insertText("\n")
	case tea.KeySpace:
		m.insertText(" ")
	case tea.KeyTab:
		m.insertText("\t")
	case tea.KeyRunes:
		m.insertText(string(msg.Runes))
	case tea.KeyCtrlV:
		text, err := clipboardNoteText()
		if err != nil {
			m.errorMessage = "Clipboard unavailable"
			m.logger.Warn("clipboard read failed", slog.String("error", err.Error()))
			return
		}
		m.insertText(text)
	case tea.KeyLeft:
		if m.editCursorPos > 0 {
			_, size := utf8.DecodeLastRuneInString(m.editText[:m.editCursorPos])
			m.editCursorPos -= size
		}
	case tea.KeyRight:
		if m.editCursorPos < len(m.editText) {
			_, size := utf8.DecodeRuneInString(m.editText[m.editCursorPos:])
			m.editCursorPos += size
		}
	case tea.KeyHome:
		m.editCursorPos = strings.LastIndex(m.editText[:m.editCursorPos], "\n") + 1
	case tea.KeyEnd:
		if i := strings.Index(m.editText[m.editCursorPos:], "\n"); i >= 0 {
			m.editCursorPos += i
		} else {
			m.editCursorPos = len(m.editText)
		}
	case tea.KeyBackspace:
		if m.editCursorPos > 0 {
			_, size := utf8.DecodeLastRuneInString(m.editText[:m.editCursorPos])
			m.editText = m.editText[:m.editCursorPos-size] + m.editText[m.editCursorPos:]
			m.editCursorPos -= size
		}
	case tea.KeyDelete:
		if m.editCursorPos < len(m.editText) {
			_, size := utf8.DecodeRuneInString(m.editText[m.editCursorPos:])
			m.editText = m.editText[:m.editCursorPos] + m.editText[m.editCursorPos+size:]
		}
	}
}

func (m *model) insertText(s string) {
	m.editText = m.editText[:m.editCursorPos] + s + m.editText[m.editCursorPos:]
	m.editCursorPos += len(s)
}

func (m *model) handleFileInputKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.textInput = ""
		m.errorMessage = ""
	case tea.KeyEnter:
		if strings.TrimSpace(m.textInput) == "" {
			m.errorMessage = "Filename required"
			return
		}
		path := m.resolvePath(m.textInput, m.fileOp)
		if m.fileOp != FileOpOpen && m.config.UI.Confirmations && !samePath(path, m.filename) {
			if _, err := os.Stat(path); err == nil {
				m.pendingPath = path
				m.mode = ModeConfirm
				m.confirmAction = ConfirmOverwriteFile
				return
			}
		}
		m.runFileOp(path)
	case tea.KeyUp, tea.KeyDown:
		if m.fileOp != FileOpOpen || len(m.fileList) == 0 {
			return
		}
		step := 1
		if msg.Type == tea.KeyUp {
			step = len(m.fileList) - 1
		}
		if m.selectedFile < 0 {
			m.selectedFile = 0
		} else {
			m.selectedFile = (m.selectedFile + step) % len(m.fileList)
		}
		m.textInput = m.fileList[m.selectedFile]
	case tea.KeyBackspace:
		if m.textInput != "" {
			_, size := utf8.DecodeLastRuneInString(m.textInput)
			m.textInput = m.textInput[:len(m.textInput)-size]
		}
		m.selectedFile = -1
	case tea.KeySpace:
		m.textInput += " "
		m.selectedFile = -1
	case tea.KeyRunes:
		m.textInput += string(msg.Runes)
		m.selectedFile = -1
	}
}

func (m model) handleConfirmKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmDeleteNote:
			m.deleteNote(m.confirmID)
		case ConfirmDeleteArrow:
			m.deleteArrow(m.confirmID)
		case ConfirmReload:
			m.reload()
		case ConfirmOverwriteFile:
			m.runFileOp(m.pendingPath)
		}
	case "n", "N", "esc":
		m.mode = ModeNormal
	default:
		return m, nil
	}
	m.confirmID = ""
	m.pendingPath = ""
	return m, nil
}

// scanBoardFiles lists saved boards in the save directory, leaving out
// autosave snapshots.
func (m *model) scanBoardFiles() {
	dir := m.config.Storage.SaveDirectory
	if dir == "" {
		dir = "."
	}
	m.fileList = nil
	m.selectedFile = -1
	entries, err := os.ReadDir(dir)
	if err != nil {
		m.logger.Warn("list boards failed", slog.String("dir", dir), slog.String("error", err.Error()))
		return
	}
	m.fileList = lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		name := e.Name()
		return name, !e.IsDir() && strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, "auto-")
	})
}

func (m *model) cycleColor() {
	id, ok := m.targetNote()
	if !ok {
		m.errorMessage = "No note selected"
		return
	}
	n, _ := m.board.Note(id)
	if err := m.board.SetColor(id, board.NextColor(n.Color)); err != nil {
		m.errorMessage = describeError(err)
	}
}

func (m *model) copyNoteText() {
	id, ok := m.targetNote()
	if !ok {
		m.errorMessage = "No note selected"
		return
	}
	n, _ := m.board.Note(id)
	if err := writeClipboardText(n.Text); err != nil {
		m.errorMessage = "Clipboard unavailable"
		m.logger.Warn("clipboard write failed", slog.String("error", err.Error()))
		return
	}
	m.successMessage = "Copied note text"
}

// pasteNote drops the clipboard text onto the canvas as a new note.
func (m *model) pasteNote() {
	text, err := clipboardNoteText()
	if err != nil {
		m.errorMessage = "Clipboard unavailable"
		m.logger.Warn("clipboard read failed", slog.String("error", err.Error()))
		return
	}
	if strings.TrimSpace(text) == "" {
		m.errorMessage = "Clipboard is empty"
		return
	}
	n, ok := m.host.CreateNote(m.cursorCanvas())
	if !ok {
		return
	}
	if err := m.board.SetText(n.ID, text); err != nil {
		m.errorMessage = describeError(err)
		return
	}
	m.board.StopEditing()
	m.successMessage = "Pasted note"
}
