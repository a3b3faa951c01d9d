package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusStyle = lipgloss.NewStyle().Reverse(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#55cc55"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

var helpLines = []string{
	"Postboard Help",
	"==============",
	"",
	"Navigation:",
	"-----------",
	"  h/←/j/↓/k/↑/l/→  Move cursor (Shift moves faster)",
	"  z                Toggle pan mode: the same keys move the canvas",
	"  Z                Lock or unlock pan and zoom",
	"  +/-              Zoom in/out around the cursor",
	"  0                Reset zoom and position",
	"  Mouse wheel      Zoom around the pointer",
	"  Drag background  Pan (middle button drags anywhere)",
	"",
	"Notes:",
	"------",
	"  Enter/Space      Click at the cursor (twice on empty canvas: new note)",
	"  n                New note at the cursor",
	"  e                Edit the selected note (double click works too)",
	"  c                Cycle the note colour",
	"  y                Copy note text to the clipboard",
	"  p                Paste the clipboard as a new note",
	"  d                Delete the selected note or arrow",
	"  Drag a note      Move it",
	"",
	"While editing:",
	"--------------",
	"  ←/→ Home/End     Move the text cursor",
	"  Enter            New line",
	"  Ctrl+V           Paste from the clipboard",
	"  Esc/Ctrl+S       Finish editing",
	"",
	"Arrows:",
	"-------",
	"  a                Start an arrow from the selected note,",
	"                   press again to finish at the cursor",
	"  Right click      Start an arrow from the note under the pointer",
	"  Click a note     Finish the arrow on that note",
	"  Click canvas     Create a note there and connect to it",
	"  Esc              Cancel the arrow",
	"  x                Remove arrows whose notes are gone",
	"",
	"Files:",
	"------",
	"  Ctrl+S           Save (asks for a name the first time)",
	"  s                Save as",
	"  o                Open a saved board",
	"  Ctrl+R           Reload the board from disk",
	"  P                Export PNG",
	"  S                Export SVG",
	"",
	"General:",
	"  ?                Toggle this help screen",
	"  q/Ctrl+C         Quit",
}

func (m model) helpView() string {
	visible := max(m.height-1, 1)
	start := min(m.helpScroll, max(len(helpLines)-visible, 0))
	end := min(start+visible, len(helpLines))
	lines := make([]string, 0, visible+1)
	for i, l := range helpLines[start:end] {
		if start+i == 0 {
			l = titleStyle.Render(l)
		}
		lines = append(lines, l)
	}
	lines = append(lines, statusStyle.Render(fit("j/k scroll | Esc close", m.width)))
	return strings.Join(lines, "\n")
}

func (m model) fileListView() []string {
	rows := m.surface.rows
	lines := []string{titleStyle.Render("Open a saved board:"), strings.Repeat("─", max(m.width, 1))}
	if len(m.fileList) == 0 {
		lines = append(lines, "(no boards found)")
	}
	maxFiles := max(rows-len(lines), 1)
	start := 0
	if m.selectedFile >= maxFiles {
		start = m.selectedFile - maxFiles + 1
	}
	for i := start; i < len(m.fileList) && i < start+maxFiles; i++ {
		name := strings.TrimSuffix(m.fileList[i], ".json")
		if i == m.selectedFile {
			lines = append(lines, "> "+name+" <")
		} else {
			lines = append(lines, "  "+name)
		}
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return lines[:rows]
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		if m.zPanMode {
			return "PAN"
		}
		if m.arrows.Drawing() {
			return "ARROW"
		}
		return "NORMAL"
	case ModeEditing:
		return "EDIT"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

func (m model) statusLine() string {
	var status string
	switch m.mode {
	case ModeEditing:
		status = "Mode: EDIT | ←/→ move, Enter newline, Ctrl+V paste, Esc done"
	case ModeFileInput:
		var op string
		switch m.fileOp {
		case FileOpSave:
			op = "Save"
		case FileOpOpen:
			op = "Open"
		case FileOpSavePNG:
			op = "Export PNG"
		case FileOpSaveSVG:
			op = "Export SVG"
		}
		status = fmt.Sprintf("Mode: FILE | %s filename: %s█ | Enter=confirm, Esc=cancel", op, m.textInput)
	case ModeConfirm:
		status = "Mode: CONFIRM | " + m.confirmMessage()
	default:
		name := "untitled"
		if m.filename != "" {
			name = filepath.Base(m.filename)
		}
		if m.board.Dirty() {
			name += "*"
		}
		lock := ""
		if !m.view.Enabled() {
			lock = " (locked)"
		}
		status = fmt.Sprintf("Mode: %s | %s | Zoom: %.0f%%%s | Notes: %d Arrows: %d",
			m.modeString(), name, m.view.Zoom()*100, lock, len(m.board.Notes()), len(m.board.Arrows()))
		if m.errorMessage == "" && m.successMessage == "" {
			status += " | ? for help | q to quit"
		}
	}

	line := statusStyle.Render(fit(status, m.width))
	switch {
	case m.errorMessage != "":
		line = statusStyle.Render(status+" | ") + errorStyle.Render("ERROR: "+m.errorMessage)
	case m.successMessage != "":
		line = statusStyle.Render(status+" | ") + okStyle.Render(m.successMessage)
	}
	return lipgloss.NewStyle().MaxWidth(max(m.width, 1)).Render(line)
}

func (m model) confirmMessage() string {
	switch m.confirmAction {
	case ConfirmDeleteNote:
		return "Delete this note? (y/n)"
	case ConfirmDeleteArrow:
		return "Delete this arrow? (y/n)"
	case ConfirmQuit:
		return "Quit with unsaved changes? (y/n)"
	case ConfirmReload:
		return "Reload from disk? Unsaved changes will be lost. (y/n)"
	case ConfirmOverwriteFile:
		return fmt.Sprintf("File %s already exists. Overwrite? (y/n)", filepath.Base(m.pendingPath))
	default:
		return "(y/n)"
	}
}

// fit pads s to width so the status bar spans the terminal.
func fit(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
