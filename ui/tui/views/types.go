package views

// Props carries the UI-specific values the renderers need on top of the
// engine's view state.
type Props struct {
	Width, Height int

	ActiveTab  int
	AnimCursor float64

	SpinnerView string

	Filtering  bool
	FilterView string

	Status    string
	StatusErr bool
	Stale     bool
	Elevated  bool
}
