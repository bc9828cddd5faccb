package tasks

import (
	"fmt"

	"github.com/desertthunder/mangax/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveTitle Phase = iota
	FetchChapters
	WarmComplete
)

func (p Phase) String() string {
	switch p {
	case ResolveTitle:
		return "resolve_title"
	case FetchChapters:
		return "fetch_chapters"
	case WarmComplete:
		return "warm_complete"
	default:
		return ""
	}
}

func warmStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTitle,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Warming cache for %d titles...", total),
	}
}

func resolveTitleUpdate(step, total int, input string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTitle,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Looking up %s...", step, total, input),
	}
}

func fetchChaptersUpdate(step, total int, title *models.Title) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchChapters,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching chapters of %s...", step, total, title.Name),
		Data:    title,
	}
}

func warmCompletedUpdate(step, total int, res TitleWarmResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WarmComplete,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d chapters)", step, total, res.Title.Name, res.Chapters),
		Data:    res,
	}
}

func warmFailedUpdate(step, total int, res TitleWarmResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WarmComplete,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Input, res.Error),
		Data:    res,
	}
}
