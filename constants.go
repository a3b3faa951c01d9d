package main

import "time"

type Mode int

const (
	ModeNormal Mode = iota
	ModeEditing
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpOpen
	FileOpSavePNG
	FileOpSaveSVG
)

type ConfirmAction int

const (
	ConfirmDeleteNote ConfirmAction = iota
	ConfirmDeleteArrow
	ConfirmQuit
	ConfirmReload
	ConfirmOverwriteFile
)

const (
	// doubleClickWindow is how close two presses on the same cell must be.
	doubleClickWindow = 400 * time.Millisecond

	// Below this zoom notes are drawn as blank cards.
	hideTextBelowZoom = 0.25

	// Arrow hit tolerance in screen cells.
	arrowHitCells = 1.0

	statusLines = 1
)
