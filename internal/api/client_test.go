package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

type ipv4Server struct {
	URL string
	srv *http.Server
	ln  net.Listener
}

func newIPv4Server(t *testing.T, handler http.Handler) *ipv4Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	srv := &http.Server{Handler: handler}
	s := &ipv4Server{
		URL: "http://" + ln.Addr().String(),
		srv: srv,
		ln:  ln,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("test server serve: %v", err))
		}
	}()
	return s
}

func (s *ipv4Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

func writeCSV(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "plant.csv")
	data := "Equipment Name,Type,Flowrate,Pressure,Temperature\nP-1,Pump,1.2,3.4,5.6\n"
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestUploadSendsMultipartFile(t *testing.T) {
	var gotName, gotBody, gotReqID string
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/upload/" {
			http.NotFound(w, r)
			return
		}
		gotReqID = r.Header.Get("X-Request-ID")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotName, gotBody = hdr.Filename, string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":12,"name":"plant.csv","uploaded_at":"2025-01-02T03:04:05Z","summary":{"count":1,"avg_flowrate":1.2,"avg_pressure":3.4,"avg_temperature":5.6,"type_distribution":{"Pump":1}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/", 2*time.Second)
	d, err := c.Upload(context.Background(), writeCSV(t))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if gotName != "plant.csv" || !strings.Contains(gotBody, "P-1,Pump") {
		t.Fatalf("server saw name=%q body=%q", gotName, gotBody)
	}
	if gotReqID == "" {
		t.Fatalf("missing X-Request-ID")
	}
	if d.ID == nil || *d.ID != 12 || d.Summary.Count != 1 {
		t.Fatalf("unexpected dataset %+v", d)
	}
	if d.UploadedAt.IsZero() {
		t.Fatalf("uploaded_at not decoded")
	}
}

func TestUploadAcceptsBareSummary(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"count":3,"avg_flowrate":2.0,"type_distribution":{"Valve":2,"Pump":1}}`)
	}))
	defer srv.Close()

	d, err := NewClient(srv.URL, time.Second).Upload(context.Background(), writeCSV(t))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if d.Name != "plant.csv" || d.ID != nil || d.Summary.Count != 3 {
		t.Fatalf("unexpected dataset %+v", d)
	}
	if (*d.Summary.TypeDistribution)[0].Label != "Valve" {
		t.Fatalf("distribution order lost")
	}
}

func TestUploadErrorBodyIsClassified(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", "req_42")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "No file uploaded"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Upload(context.Background(), writeCSV(t))
	var bad *BadRequestError
	if !errors.As(err, &bad) {
		t.Fatalf("expected BadRequestError, got %T %v", err, err)
	}
	if bad.Message != "No file uploaded" || !strings.Contains(err.Error(), "req_42") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUploadMissingFile(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)
	if _, err := c.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestHistoryDecodesList(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/history/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `[{"id":2,"name":"b.csv","uploaded_at":"2025-01-02T00:00:00Z","summary":{"count":5}},{"id":1,"name":"a.csv","uploaded_at":"2025-01-01T00:00:00Z","summary":{"count":4}}]`)
	}))
	defer srv.Close()

	h, err := NewClient(srv.URL, time.Second).History(context.Background())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(h) != 2 || h[0].Name != "b.csv" || *h[1].ID != 1 {
		t.Fatalf("unexpected history %+v", h)
	}
}

func TestHistoryEmptyList(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	h, err := NewClient(srv.URL, time.Second).History(context.Background())
	if err != nil || h == nil || len(h) != 0 {
		t.Fatalf("expected empty non-nil history, got %v %v", h, err)
	}
}

func TestReportStreamsPDF(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/report/7/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	body, err := NewClient(srv.URL, time.Second).Report(context.Background(), 7)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	defer body.Close()
	b, _ := io.ReadAll(body)
	if string(b) != "%PDF-1.4 fake" {
		t.Fatalf("unexpected body %q", b)
	}
}

func TestReportNotFound(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail":"Not found."}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Report(context.Background(), 99)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %T %v", err, err)
	}
}

func TestReportRejectsNonPDF(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, time.Second).Report(context.Background(), 1); err == nil {
		t.Fatalf("expected content type error")
	}
}

func TestBearerTokenSent(t *testing.T) {
	var auth string
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, time.Second).WithToken("abc").History(context.Background()); err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer abc" {
		t.Fatalf("unexpected Authorization %q", auth)
	}
}

func TestUnreachableBackend(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = NewClient("http://"+addr, time.Second).History(context.Background())
	var ue *UnreachableError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnreachableError, got %T %v", err, err)
	}
	if ue.Host != addr {
		t.Fatalf("unexpected host %q", ue.Host)
	}
}
