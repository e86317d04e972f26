package download

type StateKind string

const (
	StateCounting    StateKind = "counting"
	StateReady       StateKind = "ready"
	StateDownloading StateKind = "downloading"
	StateDone        StateKind = "done"
	StateError       StateKind = "error"
)

const (
	advisoryMild   = "Large downloads may take some time to prepare."
	advisoryStrong = "Warning: this is a large download and may take some time to prepare. We advise you to download the .zip version"

	msgCounting    = "Processing request, counting features…"
	msgDownloading = "Preparing file…"
	msgDone        = "Download complete."
)

// View is what a presenter renders for the confirmation flow. Count
// survives a later error so a failed download never erases an already
// displayed count.
type View struct {
	State       StateKind
	Count       int64
	HasCount    bool
	Severe      bool
	Message     string
	FilterLines []string
	Filename    string
	SavedPath   string
}

// Presenter renders flow state. Nothing below the orchestrator produces
// user-visible text.
type Presenter interface {
	Present(View)
}
