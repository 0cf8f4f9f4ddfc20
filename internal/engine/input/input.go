// Package input turns SDL2 events into demo actions.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Action is something the user asked the demo to do.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionResize
	ActionPause
	ActionCyclePriorityBits
	ActionShuffle
	ActionStep
	ActionScreenshot
)

var actionNames = [...]string{
	ActionNone:              "none",
	ActionQuit:              "quit",
	ActionResize:            "resize",
	ActionPause:             "pause",
	ActionCyclePriorityBits: "cycle_priority_bits",
	ActionShuffle:           "shuffle",
	ActionStep:              "step",
	ActionScreenshot:        "screenshot",
}

func (a Action) String() string { return actionNames[a] }

// Event is a processed input event.
type Event struct {
	Action Action
	Width  int
	Height int
}

// Bindings maps key presses to actions.
var Bindings = map[sdl.Scancode]Action{
	sdl.SCANCODE_ESCAPE: ActionQuit,
	sdl.SCANCODE_SPACE:  ActionPause,
	sdl.SCANCODE_P:      ActionCyclePriorityBits,
	sdl.SCANCODE_R:      ActionShuffle,
	sdl.SCANCODE_N:      ActionStep,
	sdl.SCANCODE_F12:    ActionScreenshot,
}

// KeyAction returns the action bound to a key, or ActionNone.
func KeyAction(key sdl.Scancode) Action {
	return Bindings[key]
}

// Input handles all input processing.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to actions.
// Returns true if the demo should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Action: ActionResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
				continue
			}
			a := KeyAction(e.Keysym.Scancode)
			if a == ActionQuit {
				quit = true
			}
			if a != ActionNone {
				i.events = append(i.events, Event{Action: a})
			}
		}
	}

	return quit
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Triggered reports whether a was requested this frame.
func (i *Input) Triggered(a Action) bool {
	for _, e := range i.events {
		if e.Action == a {
			return true
		}
	}
	return false
}
