package dashboard

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KaramelBytes/chemviz-cli/internal/dataset"
)

type fakeBackend struct {
	uploadRes  *dataset.Dataset
	uploadErr  error
	history    dataset.History
	historyErr error
	reportBody string
	reportErr  error

	uploads   int32
	histories int32
	reports   int32
}

func (f *fakeBackend) Upload(ctx context.Context, path string) (*dataset.Dataset, error) {
	atomic.AddInt32(&f.uploads, 1)
	return f.uploadRes, f.uploadErr
}

func (f *fakeBackend) History(ctx context.Context) (dataset.History, error) {
	atomic.AddInt32(&f.histories, 1)
	return f.history, f.historyErr
}

func (f *fakeBackend) Report(ctx context.Context, id int64) (io.ReadCloser, error) {
	atomic.AddInt32(&f.reports, 1)
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	return io.NopCloser(strings.NewReader(f.reportBody)), nil
}

type recorder struct{ msgs []string }

func (r *recorder) Notify(msg string) { r.msgs = append(r.msgs, msg) }

func TestSessionUploadWithoutFileIsNoop(t *testing.T) {
	fb := &fakeBackend{}
	s := NewSession(fb, nil, nil)
	s.Upload(context.Background())
	if fb.uploads != 0 {
		t.Fatalf("upload issued without a file")
	}
	if s.Snapshot().Loading {
		t.Fatalf("loading set without a file")
	}
}

func TestSessionUploadRefreshesHistory(t *testing.T) {
	res := &dataset.Dataset{ID: id(9), Name: "new.csv"}
	fb := &fakeBackend{uploadRes: res, history: dataset.History{*res}}
	s := NewSession(fb, nil, nil)
	s.Dispatch(HistoryLoaded{Entries: sampleHistory()})
	s.Select(1)
	s.Choose("new.csv")
	s.Upload(context.Background())

	st := s.Snapshot()
	if fb.histories != 1 {
		t.Fatalf("history refresh count=%d", fb.histories)
	}
	if st.Active() != res {
		t.Fatalf("uploaded dataset should be active")
	}
	if len(st.History) != 1 {
		t.Fatalf("history not refreshed: %+v", st.History)
	}
	if st.Loading {
		t.Fatalf("loading still set")
	}
}

func TestSessionUploadFailureStoresErrorResult(t *testing.T) {
	fb := &fakeBackend{uploadErr: errors.New("endpoint unreachable")}
	s := NewSession(fb, nil, nil)
	s.Choose("plant.csv")
	s.Upload(context.Background())
	st := s.Snapshot()
	if dataset.Classify(st.Last) != dataset.KindError {
		t.Fatalf("expected error result, got %+v", st.Last)
	}
	if fb.histories != 0 {
		t.Fatalf("history refreshed after failed upload")
	}
	if st.Loading {
		t.Fatalf("loading still set")
	}
}

func TestSessionHistoryFailureIsSilent(t *testing.T) {
	rec := &recorder{}
	s := NewSession(&fakeBackend{historyErr: errors.New("boom")}, rec, nil)
	s.LoadHistory(context.Background())
	if len(rec.msgs) != 0 {
		t.Fatalf("history failure surfaced: %v", rec.msgs)
	}
	if st := s.Snapshot(); !st.HistoryLoaded || len(st.History) != 0 {
		t.Fatalf("unexpected history state %+v", st)
	}
}

func TestSessionDownloadNilIDIsNoop(t *testing.T) {
	fb := &fakeBackend{}
	rec := &recorder{}
	s := NewSession(fb, rec, nil)
	path, err := s.DownloadReport(context.Background(), nil, "a.csv", t.TempDir())
	if err != nil || path != "" {
		t.Fatalf("expected silent no-op, got %q %v", path, err)
	}
	if fb.reports != 0 || len(rec.msgs) != 0 {
		t.Fatalf("nil id triggered request or notice")
	}
}

func TestSessionDownloadSavesReport(t *testing.T) {
	dir := t.TempDir()
	fb := &fakeBackend{reportBody: "%PDF-1.7"}
	s := NewSession(fb, nil, nil)
	s.Dispatch(HistoryLoaded{Entries: sampleHistory()})
	s.Select(0)
	path, err := s.DownloadReport(context.Background(), id(1), "a.csv", dir)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if path != filepath.Join(dir, "a_report.pdf") {
		t.Fatalf("unexpected path %s", path)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "%PDF-1.7" {
		t.Fatalf("unexpected content %q", b)
	}
	if st := s.Snapshot(); st.SelectedIndex() != 0 {
		t.Fatalf("download changed the selection")
	}
}

func TestSessionDownloadFailureNotifiesOnce(t *testing.T) {
	rec := &recorder{}
	s := NewSession(&fakeBackend{reportErr: errors.New("not found")}, rec, nil)
	if _, err := s.DownloadReport(context.Background(), id(7), "x.csv", t.TempDir()); err == nil {
		t.Fatalf("expected error")
	}
	if len(rec.msgs) != 1 || rec.msgs[0] != ReportFailedText {
		t.Fatalf("expected one failure notice, got %v", rec.msgs)
	}
	if s.Snapshot().Notice.Level != NoticeError {
		t.Fatalf("notice not recorded in state")
	}
}

// gatedBackend holds each upload until its path is released.
type gatedBackend struct {
	started   chan string
	release   map[string]chan struct{}
	histories int32
}

func (g *gatedBackend) Upload(ctx context.Context, path string) (*dataset.Dataset, error) {
	g.started <- path
	<-g.release[path]
	return &dataset.Dataset{Name: path, Summary: dataset.Summary{Count: len(path)}}, nil
}

func (g *gatedBackend) History(ctx context.Context) (dataset.History, error) {
	n := atomic.AddInt32(&g.histories, 1)
	return dataset.History{{ID: id(int64(n)), Name: "refresh.csv"}}, nil
}

func (g *gatedBackend) Report(ctx context.Context, id int64) (io.ReadCloser, error) {
	return nil, errors.New("not used")
}

func recv(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for request")
		return ""
	}
}

func TestSessionOverlappingUploadsLastResolvedWins(t *testing.T) {
	g := &gatedBackend{
		started: make(chan string),
		release: map[string]chan struct{}{
			"first.csv":  make(chan struct{}),
			"second.csv": make(chan struct{}),
		},
	}
	s := NewSession(g, nil, nil)
	done := make(chan string, 2)
	start := func(path string) {
		s.Choose(path)
		go func() {
			s.Upload(context.Background())
			done <- path
		}()
		if got := recv(t, g.started); got != path {
			t.Fatalf("started %q, want %q", got, path)
		}
	}
	start("first.csv")
	start("second.csv")

	close(g.release["second.csv"])
	recv(t, done)
	if st := s.Snapshot(); st.Last == nil || st.Last.Name != "second.csv" {
		t.Fatalf("after second resolved, last=%+v", st.Last)
	}

	close(g.release["first.csv"])
	recv(t, done)
	st := s.Snapshot()
	if st.Last == nil || st.Last.Name != "first.csv" {
		t.Fatalf("later response should win, last=%+v", st.Last)
	}
	if st.Loading {
		t.Fatalf("loading still set after both uploads resolved")
	}
	if n := atomic.LoadInt32(&g.histories); n != 2 {
		t.Fatalf("history refreshes = %d, want one per upload", n)
	}
	if len(st.History) != 1 || *st.History[0].ID != 2 {
		t.Fatalf("history should come from the last refresh: %+v", st.History)
	}
}
