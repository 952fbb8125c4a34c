//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"
	"time"

	"github.com/himanishpuri/LyricDNA/pkg/lyricdna"
	"github.com/himanishpuri/LyricDNA/pkg/lyricdna/timing"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorBadTimingMap
)

var engine = lyricdna.NewSyncEngine()

// Replaces the engine's timing map. Expects one argument: the timing map as a
// JSON string. Returns: {error: number, data: string}
func loadTimingMap(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 1 argument: timing map JSON string")
	}

	var m timing.Map
	if err := json.Unmarshal([]byte(args[0].String()), &m); err != nil {
		return makeErrorResponse(ErrorBadTimingMap, fmt.Sprintf("Failed to parse timing map: %v", err))
	}
	if len(m.Lines) == 0 {
		return makeErrorResponse(ErrorBadTimingMap, "Timing map has no lines")
	}

	engine.LoadTimingMap(m)

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", fmt.Sprintf("loaded %d lines", len(m.Lines)))
	return result
}

// Records a fresh player position sample. Expects three arguments:
// positionSec (number), playing (boolean), latencySec (number).
func updateAnchor(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 3 arguments: positionSec, playing, latencySec")
	}
	if args[0].Type() != js.TypeNumber || args[2].Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "positionSec and latencySec must be numbers")
	}
	if args[1].Type() != js.TypeBoolean {
		return makeErrorResponse(ErrorInvalidArgs, "playing must be a boolean")
	}

	engine.UpdateAnchor(args[0].Float(), time.Now(), args[1].Bool(), args[2].Float())

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	return result
}

// Runs one frame of the engine and returns the render commands. Call it from
// requestAnimationFrame. Returns: {error: number, data: object}
func tick(this js.Value, args []js.Value) interface{} {
	res := engine.Tick(time.Now())

	commands := js.Global().Get("Array").New()
	for i, cmd := range res.Commands {
		obj := js.Global().Get("Object").New()
		obj.Set("kind", cmd.Kind.String())
		switch cmd.Kind {
		case lyricdna.CmdSetCurrentWordStates:
			obj.Set("lineIndex", cmd.LineIndex)
			obj.Set("text", cmd.Text)
			words := js.Global().Get("Array").New()
			for j, w := range cmd.Words {
				wordObj := js.Global().Get("Object").New()
				wordObj.Set("state", w.State.String())
				wordObj.Set("progress", w.Progress)
				words.SetIndex(j, wordObj)
			}
			obj.Set("words", words)
		case lyricdna.CmdSetSurroundingLines:
			obj.Set("prevLine", cmd.PrevLine)
			obj.Set("nextLine", cmd.NextLine)
		}
		commands.SetIndex(i, obj)
	}

	data := js.Global().Get("Object").New()
	data.Set("positionSec", res.PositionSec)
	data.Set("state", res.State.String())
	data.Set("lineIndex", res.LineIndex)
	data.Set("wordIndex", res.WordIndex)
	data.Set("outroReached", res.OutroReached)
	data.Set("commands", commands)

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

// Clears the engine for a track change.
func reset(this js.Value, args []js.Value) interface{} {
	engine.Reset()

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	return result
}

// Sets the per-song user latency offset. Expects one number argument.
func setUserOffset(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 1 argument: offsetSec (number)")
	}

	engine.SetUserOffset(args[0].Float())

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	if !console.IsUndefined() {
		console.Call("log", "🔧 LyricDNA WASM module initializing...")
	}

	done := make(chan struct{})

	js.Global().Set("lyricLoadTimingMap", js.FuncOf(loadTimingMap))
	js.Global().Set("lyricUpdateAnchor", js.FuncOf(updateAnchor))
	js.Global().Set("lyricTick", js.FuncOf(tick))
	js.Global().Set("lyricReset", js.FuncOf(reset))
	js.Global().Set("lyricSetUserOffset", js.FuncOf(setUserOffset))

	if !console.IsUndefined() {
		console.Call("log", "📝 Sync engine functions registered")
	}

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
		if !console.IsUndefined() {
			console.Call("log", "📤 wasmReady event dispatched")
		}
	} else {
		if !console.IsUndefined() {
			console.Call("error", "❌ window object is undefined!")
		}
	}

	if !console.IsUndefined() {
		console.Call("log", "✅ LyricDNA WASM module loaded and ready")
	}

	<-done
}
