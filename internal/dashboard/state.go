package dashboard

import (
	"path/filepath"

	"github.com/KaramelBytes/chemviz-cli/internal/dataset"
)

// State is the whole client-side view state. It is a value: Reduce returns a
// new State and never mutates the one it was given.
type State struct {
	File          string
	Last          *dataset.Dataset
	History       dataset.History
	HistoryLoaded bool
	Selected      *dataset.Dataset
	Loading       bool
	Notice        Notice
}

// NoticeLevel distinguishes informational notices from failures.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a one-shot message for the user.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// ReportFailedText is shown whenever a report download fails.
const ReportFailedText = "Report generation failed"

// SelectedEntry returns the selected history entry, or nil. The entry is a
// copy taken at selection time and survives history reloads.
func (s State) SelectedEntry() *dataset.Dataset {
	return s.Selected
}

// SelectedIndex returns the position of the selected entry in the current
// history, or -1 when nothing is selected or the entry is no longer listed.
func (s State) SelectedIndex() int {
	if s.Selected == nil {
		return -1
	}
	for i := range s.History {
		if sameEntry(&s.History[i], s.Selected) {
			return i
		}
	}
	return -1
}

func sameEntry(a, b *dataset.Dataset) bool {
	if a.ID != nil || b.ID != nil {
		return a.ID != nil && b.ID != nil && *a.ID == *b.ID
	}
	return a.Name == b.Name && a.UploadedAt.Equal(b.UploadedAt)
}

// Active returns the dataset currently driving the summary and charts.
func (s State) Active() *dataset.Dataset {
	return DeriveActive(s.SelectedEntry(), s.Last)
}

// Summary returns the summary of the active dataset, or nil.
func (s State) Summary() *dataset.Summary {
	return DeriveSummary(s.Active())
}

// Action is one state transition input.
type Action interface{ isAction() }

type (
	FileChosen           struct{ Path string }
	UploadStarted        struct{}
	UploadSucceeded      struct{ Result *dataset.Dataset }
	HistoryLoaded        struct{ Entries dataset.History }
	HistoryFailed        struct{ Err error }
	HistoryEntrySelected struct{ Index int }
	SelectionCleared     struct{}
	ReportSaved          struct{ Path string }
	ReportFailed         struct{ Err error }
	NoticeDismissed      struct{}
)

// UploadFailed carries the path of the upload that failed.
type UploadFailed struct {
	Path string
	Err  error
}

func (FileChosen) isAction()           {}
func (UploadStarted) isAction()        {}
func (UploadSucceeded) isAction()      {}
func (UploadFailed) isAction()         {}
func (HistoryLoaded) isAction()        {}
func (HistoryFailed) isAction()        {}
func (HistoryEntrySelected) isAction() {}
func (SelectionCleared) isAction()     {}
func (ReportSaved) isAction()          {}
func (ReportFailed) isAction()         {}
func (NoticeDismissed) isAction()      {}

// Reduce applies one action to the state.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case FileChosen:
		s.File = a.Path
	case UploadStarted:
		s.Loading = true
	case UploadSucceeded:
		s.Loading = false
		s.Last = a.Result
		s.Selected = nil
	case UploadFailed:
		s.Loading = false
		name := a.Path
		if name == "" {
			name = s.File
		}
		s.Last = dataset.Failed(filepath.Base(name), a.Err)
	case HistoryLoaded:
		s.History = append(dataset.History(nil), a.Entries...)
		s.HistoryLoaded = true
	case HistoryFailed:
		s.History = dataset.History{}
		s.HistoryLoaded = true
	case HistoryEntrySelected:
		if a.Index < 0 || a.Index >= len(s.History) {
			return s
		}
		entry := s.History[a.Index]
		s.Selected = &entry
	case SelectionCleared:
		s.Selected = nil
	case ReportSaved:
		s.Notice = Notice{Level: NoticeInfo, Text: "Report saved to " + a.Path}
	case ReportFailed:
		s.Notice = Notice{Level: NoticeError, Text: ReportFailedText}
	case NoticeDismissed:
		s.Notice = Notice{}
	}
	return s
}
