package main

import (
	"log/slog"
	"sync"
)

// headlessWindow is the activation.Window this binary supplies when no real
// windowing toolkit is wired in: it tracks minimized/foreground state
// in-process and logs every command instead of touching a real surface. A
// GUI shell embedding this core would supply its own Window implementation
// backed by actual window-manager calls.
type headlessWindow struct {
	mu         sync.Mutex
	minimized  bool
	foreground bool
	log        *slog.Logger
}

func newHeadlessWindow(log *slog.Logger) *headlessWindow {
	return &headlessWindow{foreground: true, log: log}
}

func (w *headlessWindow) IsValid() bool { return true }

func (w *headlessWindow) IsMinimized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.minimized
}

func (w *headlessWindow) IsForeground() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.foreground
}

// IsVisible and IsFocused satisfy viewmodel.WindowState, letting the same
// headless window gate both activation handling and timer-poll suppression.
func (w *headlessWindow) IsVisible() bool { return !w.IsMinimized() }
func (w *headlessWindow) IsFocused() bool { return w.IsForeground() }

func (w *headlessWindow) BringToFront() {
	w.mu.Lock()
	w.foreground = true
	w.mu.Unlock()
	w.log.Info("window: brought to front")
}

func (w *headlessWindow) RestoreFromMinimized() {
	w.mu.Lock()
	w.minimized = false
	w.foreground = true
	w.mu.Unlock()
	w.log.Info("window: restored from minimized")
}

func (w *headlessWindow) FlashTaskbar() {
	w.log.Info("window: taskbar flashed")
}

func (w *headlessWindow) NavigateTo(view string) {
	w.log.Info("window: navigated", "view", view)
}
