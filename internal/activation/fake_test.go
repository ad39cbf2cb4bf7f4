package activation

// fakeWindow is a builder-style fake Window, matching the style of
// galleryfs.FakeReader's WithX chain.
type fakeWindow struct {
	valid        bool
	minimized    bool
	foreground   bool
	navigatedTo  string
	broughtFront bool
	restored     bool
	flashed      bool
	navigated    bool
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{valid: true}
}

func (w *fakeWindow) Invalid() *fakeWindow      { w.valid = false; return w }
func (w *fakeWindow) Minimized() *fakeWindow    { w.minimized = true; return w }
func (w *fakeWindow) Foreground() *fakeWindow   { w.foreground = true; return w }
func (w *fakeWindow) Background() *fakeWindow   { w.foreground = false; return w }

func (w *fakeWindow) IsValid() bool      { return w.valid }
func (w *fakeWindow) IsMinimized() bool  { return w.minimized }
func (w *fakeWindow) IsForeground() bool { return w.foreground }

func (w *fakeWindow) BringToFront()          { w.broughtFront = true; w.foreground = true }
func (w *fakeWindow) RestoreFromMinimized()  { w.restored = true; w.minimized = false }
func (w *fakeWindow) FlashTaskbar()          { w.flashed = true }
func (w *fakeWindow) NavigateTo(view string) { w.navigated = true; w.navigatedTo = view }

type fakeIndex struct {
	refreshed int
}

func (i *fakeIndex) Refresh() { i.refreshed++ }
