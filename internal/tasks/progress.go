package tasks

import "fmt"

// Phase identifies the stage an engine operation is in.
type Phase string

const (
	PhaseFetching    Phase = "fetching"
	PhaseRefreshing  Phase = "refreshing"
	PhaseAggregating Phase = "aggregating"
	PhaseScanning    Phase = "scanning"
	PhaseMerging     Phase = "merging"
	PhaseCompleted   Phase = "completed"
	PhaseFailed      Phase = "failed"
)

// ProgressUpdate is a non-blocking status message emitted on progress channels.
type ProgressUpdate struct {
	Phase   Phase
	Current int
	Total   int
	Message string
}

func fetchingUpdate(current, total int, what string) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseFetching, Current: current, Total: total, Message: fmt.Sprintf("Fetching %s", what)}
}

func refreshingUpdate(current, total int, upc string) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseRefreshing, Current: current, Total: total, Message: fmt.Sprintf("Refreshing %s", upc)}
}

func refreshFailedUpdate(current, total int, upc string, err error) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseRefreshing, Current: current, Total: total, Message: fmt.Sprintf("Failed %s: %v", upc, err)}
}

func aggregatingUpdate(artist string) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseAggregating, Current: 0, Total: 0, Message: fmt.Sprintf("Building catalog for %s", artist)}
}

func scanningUpdate(releases int) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseScanning, Current: 0, Total: releases, Message: "Scanning for duplicate tracks"}
}

func mergingUpdate(current, total int, title string) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseMerging, Current: current, Total: total, Message: fmt.Sprintf("Merging %q", title)}
}

func completedUpdate(message string) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseCompleted, Message: message}
}
