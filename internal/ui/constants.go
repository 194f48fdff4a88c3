package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconFolder = "📁"
	IconClose  = "×"
	IconError  = "❌"
	IconWarn   = "⚠"
	IconDone   = "✔"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%d%%"
	ItemCounterFormat   = "%d/%d"
	ResolutionFormat    = "%dp"
)

// Layout sizing
const (
	WindowWidth  float32 = 640
	WindowHeight float32 = 520

	StatusLabelWidth  float32 = 84
	PercentLabelWidth float32 = 48
	RowMinHeight      float32 = 40
	ItemListMinHeight float32 = 160
)

// Toast notification sizing and behavior
const (
	ToastWidth    float32 = 300
	ToastHeight   float32 = 120
	ToastMargin   float32 = 20
	ToastAutoHide         = 5 * time.Second
)

// Timeouts for background checks started from the UI
const (
	ToolDetectTimeout = 15 * time.Second
	ShutdownTimeout   = 5 * time.Second
)
