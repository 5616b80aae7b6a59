package domain

// VisualizerKind tags the rendering algorithm family of a visualizer.
type VisualizerKind string

// Available visualizer kinds.
const (
	KindSpectrumBars VisualizerKind = "spectrum_bars"
	KindOscilloscope VisualizerKind = "oscilloscope"
	KindParticles    VisualizerKind = "particles"
	KindLevelMeter   VisualizerKind = "level_meter"
)

// VisualizerInfo describes one registered visualizer.
// It is static registry data, immutable after construction.
type VisualizerInfo struct {
	// ID uniquely identifies the visualizer in the registry.
	ID string

	// Name is the human-readable display name.
	Name string

	// Description is a one-line summary for selection UIs.
	Description string

	// Kind is the effect-type tag.
	Kind VisualizerKind
}
