package dashboard

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/KaramelBytes/chemviz-cli/internal/dataset"
	"github.com/KaramelBytes/chemviz-cli/internal/report"
)

// Backend is the remote service that owns parsing, statistics and reports.
type Backend interface {
	Upload(ctx context.Context, path string) (*dataset.Dataset, error)
	History(ctx context.Context) (dataset.History, error)
	Report(ctx context.Context, id int64) (io.ReadCloser, error)
}

// Notifier surfaces a message to the user synchronously.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// Session runs requests against a Backend and folds their outcomes into a
// State. Requests may overlap; each completion is applied atomically and the
// last one to resolve wins.
type Session struct {
	mu       sync.Mutex
	state    State
	backend  Backend
	notifier Notifier
	log      *zap.Logger
}

// NewSession creates a session. A nil notifier or logger disables that output.
func NewSession(b Backend, n Notifier, log *zap.Logger) *Session {
	if n == nil {
		n = NotifierFunc(func(string) {})
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{backend: b, notifier: n, log: log}
}

// Dispatch applies an action and returns the resulting state.
func (s *Session) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	return s.state
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Choose records the local file to upload next.
func (s *Session) Choose(path string) { s.Dispatch(FileChosen{Path: path}) }

// Select makes a history entry the active dataset.
func (s *Session) Select(i int) { s.Dispatch(HistoryEntrySelected{Index: i}) }

// Upload sends the chosen file. Without a chosen file it does nothing.
// Failures are stored as an error result rather than returned.
func (s *Session) Upload(ctx context.Context) {
	path := s.Snapshot().File
	if path == "" {
		return
	}
	s.Dispatch(UploadStarted{})
	s.log.Debug("upload started", zap.String("file", path))
	res, err := s.backend.Upload(ctx, path)
	if err != nil {
		s.log.Warn("upload failed", zap.String("file", path), zap.Error(err))
		s.Dispatch(UploadFailed{Path: path, Err: err})
		return
	}
	s.log.Debug("upload finished", zap.String("file", path), zap.String("name", res.Name))
	s.Dispatch(UploadSucceeded{Result: res})
	s.LoadHistory(ctx)
}

// LoadHistory replaces the history list. A failed fetch leaves it empty.
func (s *Session) LoadHistory(ctx context.Context) {
	entries, err := s.backend.History(ctx)
	if err != nil {
		s.log.Debug("history fetch failed", zap.Error(err))
		s.Dispatch(HistoryFailed{Err: err})
		return
	}
	s.log.Debug("history loaded", zap.Int("entries", len(entries)))
	s.Dispatch(HistoryLoaded{Entries: entries})
}

// DownloadReport fetches the PDF report for id and saves it into dir. A nil
// id is a no-op. On failure the user is notified once and the error returned.
// The active selection is never touched.
func (s *Session) DownloadReport(ctx context.Context, id *int64, name, dir string) (string, error) {
	if id == nil {
		return "", nil
	}
	path, err := s.fetchReport(ctx, *id, name, dir)
	if err != nil {
		s.log.Warn("report download failed", zap.Int64("id", *id), zap.Error(err))
		s.Dispatch(ReportFailed{Err: err})
		s.notifier.Notify(ReportFailedText)
		return "", err
	}
	s.log.Debug("report saved", zap.Int64("id", *id), zap.String("path", path))
	s.Dispatch(ReportSaved{Path: path})
	return path, nil
}

func (s *Session) fetchReport(ctx context.Context, id int64, name, dir string) (string, error) {
	body, err := s.backend.Report(ctx, id)
	if err != nil {
		return "", err
	}
	defer body.Close()
	return report.Save(dir, name, body)
}
