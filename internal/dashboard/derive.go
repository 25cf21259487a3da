package dashboard

import "github.com/KaramelBytes/chemviz-cli/internal/dataset"

// DeriveActive picks the dataset driving the display: the selected history
// entry when there is one, otherwise the most recent upload result.
func DeriveActive(selected, last *dataset.Dataset) *dataset.Dataset {
	if selected != nil {
		return selected
	}
	return last
}

// DeriveSummary returns the summary of the active dataset, or nil.
func DeriveSummary(active *dataset.Dataset) *dataset.Summary {
	if active == nil {
		return nil
	}
	return &active.Summary
}
