package files

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"medialinks-backend/internal/models"
)

type stubLister struct {
	files map[string][]models.FileRecord
	errs  map[string]error
}

func (l *stubLister) ListFolder(ctx context.Context, folder string) ([]models.FileRecord, error) {
	if err := l.errs[folder]; err != nil {
		return nil, err
	}
	return append([]models.FileRecord(nil), l.files[folder]...), nil
}

type stubIssuer struct {
	mu      sync.Mutex
	fail    map[string]bool
	calls   []string
	expiry  map[string]time.Duration
	counter int64

	inFlight    int64
	maxInFlight int64
	delay       time.Duration
}

func (i *stubIssuer) IssueTimeLimitedURL(ctx context.Context, remotePath string, expiry time.Duration) (string, error) {
	n := atomic.AddInt64(&i.inFlight, 1)
	defer atomic.AddInt64(&i.inFlight, -1)
	for {
		cur := atomic.LoadInt64(&i.maxInFlight)
		if n <= cur || atomic.CompareAndSwapInt64(&i.maxInFlight, cur, n) {
			break
		}
	}
	if i.delay > 0 {
		time.Sleep(i.delay)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls = append(i.calls, remotePath)
	if i.expiry == nil {
		i.expiry = make(map[string]time.Duration)
	}
	i.expiry[remotePath] = expiry
	if i.fail[remotePath] {
		return "", errors.New("issuer unavailable")
	}
	i.counter++
	return fmt.Sprintf("https://cdn.example.com/%s?token=t%d", remotePath, i.counter), nil
}

func (i *stubIssuer) GetName() string {
	return "stub"
}

func defaultOptions() Options {
	return Options{
		CDNBase: "https://cdn.example.com",
		Folders: []Folder{
			{Name: "Images", Key: "images", Expiry: 5 * time.Hour},
			{Name: "Movies", Key: "movies", Expiry: 10 * time.Hour},
		},
		SingleExpiry: 8 * time.Hour,
		Concurrency:  1,
	}
}

func records(names ...string) []models.FileRecord {
	out := make([]models.FileRecord, 0, len(names))
	for _, n := range names {
		out = append(out, models.FileRecord{Name: n})
	}
	return out
}

func TestListAllAttachesLinksWithFolderExpiry(t *testing.T) {
	lister := &stubLister{files: map[string][]models.FileRecord{
		"Images": records("a.png", "b.jpg"),
		"Movies": records("test.mp4"),
	}}
	issuer := &stubIssuer{}
	svc := NewService(lister, issuer, defaultOptions())

	listings, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(listings) != 2 || listings[0].Key != "images" || listings[1].Key != "movies" {
		t.Fatalf("unexpected listings: %+v", listings)
	}

	images := listings[0].Files
	if len(images) != 2 || images[0].Name != "a.png" || images[1].Name != "b.jpg" {
		t.Fatalf("listing order not preserved: %+v", images)
	}
	for _, f := range append(images, listings[1].Files...) {
		if f.DownloadLink == nil || !strings.Contains(*f.DownloadLink, "token=") {
			t.Errorf("%s: missing download link", f.Name)
		}
	}

	if got := issuer.expiry["Images/a.png"]; got != 5*time.Hour {
		t.Errorf("image expiry = %v, want 5h", got)
	}
	if got := issuer.expiry["Movies/test.mp4"]; got != 10*time.Hour {
		t.Errorf("movie expiry = %v, want 10h", got)
	}
}

func TestListAllEmptyFolders(t *testing.T) {
	svc := NewService(&stubLister{}, &stubIssuer{}, defaultOptions())

	listings, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	for _, l := range listings {
		if l.Files == nil || len(l.Files) != 0 {
			t.Errorf("%s: expected empty non-nil files, got %#v", l.Folder, l.Files)
		}
	}
}

func TestListAllFailsWhenAnyListingFails(t *testing.T) {
	cause := errors.New("connection reset")
	lister := &stubLister{
		files: map[string][]models.FileRecord{"Movies": records("test.mp4")},
		errs:  map[string]error{"Images": cause},
	}
	svc := NewService(lister, &stubIssuer{}, defaultOptions())

	listings, err := svc.ListAll(context.Background())
	if !errors.Is(err, cause) {
		t.Fatalf("expected listing error, got %v", err)
	}
	if listings != nil {
		t.Errorf("partial results leaked: %+v", listings)
	}
}

func TestListAllToleratesLinkFailures(t *testing.T) {
	lister := &stubLister{files: map[string][]models.FileRecord{
		"Images": records("ok.png", "broken.png"),
	}}
	issuer := &stubIssuer{fail: map[string]bool{"Images/broken.png": true}}
	svc := NewService(lister, issuer, defaultOptions())

	listings, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	images := listings[0].Files
	if images[0].DownloadLink == nil {
		t.Error("ok.png should have a link")
	}
	if images[1].DownloadLink != nil {
		t.Errorf("broken.png should have no link, got %s", *images[1].DownloadLink)
	}
}

// barrierLister blocks every listing until all expected folders have started.
type barrierLister struct {
	started chan string
	release chan struct{}
}

func (l *barrierLister) ListFolder(ctx context.Context, folder string) ([]models.FileRecord, error) {
	l.started <- folder
	select {
	case <-l.release:
		return records(folder + ".bin"), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestListAllStartsListingsConcurrently(t *testing.T) {
	lister := &barrierLister{started: make(chan string, 2), release: make(chan struct{})}
	svc := NewService(lister, &stubIssuer{}, defaultOptions())

	done := make(chan error, 1)
	go func() {
		_, err := svc.ListAll(context.Background())
		done <- err
	}()

	seen := map[string]bool{}
	timeout := time.After(2 * time.Second)
	for len(seen) < 2 {
		select {
		case f := <-lister.started:
			seen[f] = true
		case <-timeout:
			t.Fatalf("only %v started before any listing completed", seen)
		}
	}
	close(lister.release)

	if err := <-done; err != nil {
		t.Fatalf("ListAll: %v", err)
	}
}

func TestListAllSequentialIssuance(t *testing.T) {
	lister := &stubLister{files: map[string][]models.FileRecord{
		"Images": records("1.png", "2.png", "3.png", "4.png"),
	}}
	issuer := &stubIssuer{delay: 5 * time.Millisecond}
	opts := defaultOptions()
	opts.Folders = opts.Folders[:1]
	svc := NewService(lister, issuer, opts)

	if _, err := svc.ListAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if issuer.maxInFlight != 1 {
		t.Errorf("max in-flight issuance = %d, want 1", issuer.maxInFlight)
	}
	want := []string{"Images/1.png", "Images/2.png", "Images/3.png", "Images/4.png"}
	if strings.Join(issuer.calls, ",") != strings.Join(want, ",") {
		t.Errorf("issuance order = %v, want %v", issuer.calls, want)
	}
}

func TestListAllBoundedIssuance(t *testing.T) {
	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("%02d.png", i)
	}
	lister := &stubLister{files: map[string][]models.FileRecord{"Images": records(names...)}}
	issuer := &stubIssuer{delay: 10 * time.Millisecond}
	opts := defaultOptions()
	opts.Folders = opts.Folders[:1]
	opts.Concurrency = 3
	svc := NewService(lister, issuer, opts)

	listings, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if issuer.maxInFlight > 3 {
		t.Errorf("max in-flight issuance = %d, want <= 3", issuer.maxInFlight)
	}
	for i, f := range listings[0].Files {
		if f.Name != names[i] || f.DownloadLink == nil {
			t.Errorf("record %d = %s link=%v", i, f.Name, f.DownloadLink)
		}
	}
}

func TestLink(t *testing.T) {
	issuer := &stubIssuer{}
	svc := NewService(&stubLister{}, issuer, defaultOptions())

	link, err := svc.Link(context.Background(), "Movies", "test.mp4")
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if link.Name != "test.mp4" || link.URL != "https://cdn.example.com/Movies/test.mp4" {
		t.Errorf("unexpected link: %+v", link)
	}
	if !strings.Contains(link.DownloadLink, "token=") {
		t.Errorf("download link missing token: %s", link.DownloadLink)
	}
	if issuer.expiry["Movies/test.mp4"] != 8*time.Hour {
		t.Errorf("single link expiry = %v, want 8h", issuer.expiry["Movies/test.mp4"])
	}
}

func TestLinkErrors(t *testing.T) {
	issuer := &stubIssuer{fail: map[string]bool{"Movies/down.mp4": true}}
	svc := NewService(&stubLister{}, issuer, defaultOptions())

	tests := []struct {
		folder, file string
		want         error
	}{
		{"Secrets", "a.txt", ErrUnknownFolder},
		{"Movies", "..", ErrInvalidFileName},
		{"Movies", "a\\..\\b", ErrInvalidFileName},
		{"Movies", "", ErrInvalidFileName},
		{"Movies", "down.mp4", ErrLinkUnavailable},
	}
	for _, tt := range tests {
		_, err := svc.Link(context.Background(), tt.folder, tt.file)
		if !errors.Is(err, tt.want) {
			t.Errorf("Link(%q, %q) err = %v, want %v", tt.folder, tt.file, err, tt.want)
		}
	}
}
