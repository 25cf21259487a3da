package cmd

import (
	"context"
	"fmt"

	"github.com/KaramelBytes/chemviz-cli/internal/dashboard"
	"github.com/KaramelBytes/chemviz-cli/internal/dataset"
)

// selectFromHistory loads the history into sess and selects entry n (1-based,
// 1 = most recent). It returns the selected dataset.
func selectFromHistory(ctx context.Context, sess *dashboard.Session, n int) (*dataset.Dataset, error) {
	sess.LoadHistory(ctx)
	st := sess.Snapshot()
	if len(st.History) == 0 {
		return nil, fmt.Errorf("no datasets in history")
	}
	if n < 1 || n > len(st.History) {
		return nil, fmt.Errorf("--select must be between 1 and %d", len(st.History))
	}
	sess.Select(n - 1)
	return sess.Snapshot().Active(), nil
}

// findByID looks a dataset up in the history by backend id.
func findByID(h dataset.History, id int64) *dataset.Dataset {
	for i := range h {
		if h[i].ID != nil && *h[i].ID == id {
			return &h[i]
		}
	}
	return nil
}
