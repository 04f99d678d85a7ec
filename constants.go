package main

import "time"

type Mode int

const (
	ModeNormal Mode = iota
	ModePan
	ModeHelp
)

type ActionType int

const (
	ActionMoveNodes ActionType = iota
	ActionAddConnection
	ActionDeleteConnection
)

const (
	panStep     = 2 * 8 // two cells, in screen pixels
	fastPanStep = 4 * panStep
	statusRows  = 1
	maxUndo     = 100
)

const (
	minHeartbeat = time.Second
	maxHeartbeat = 10 * time.Minute
)
