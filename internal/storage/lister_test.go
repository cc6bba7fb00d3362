package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"medialinks-backend/internal/models"
)

type fakeBackend struct {
	entries    []models.RemoteEntry
	connectErr error
	readErr    error

	connects int
	closes   int
	folders  []string
}

func (f *fakeBackend) Connect(ctx context.Context) (Connection, error) {
	f.connects++
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return "session", nil
}

func (f *fakeBackend) ReadDir(ctx context.Context, conn Connection, folder string) ([]models.RemoteEntry, error) {
	f.folders = append(f.folders, folder)
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.entries, nil
}

func (f *fakeBackend) Close(conn Connection) error {
	f.closes++
	return nil
}

func (f *fakeBackend) GetName() string {
	return "fake"
}

func TestListFolderMapsEntries(t *testing.T) {
	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	backend := &fakeBackend{entries: []models.RemoteEntry{
		{Name: "b.JPG", Size: 10, Modified: modified, Created: modified, Permissions: "-rw-r--r--"},
		{Name: "a.png", Size: 20, Modified: modified, Created: modified},
		{Name: "raw", IsDir: true},
	}}
	lister := NewRemoteLister(backend, "https://cdn.example.com/")

	files, err := lister.ListFolder(context.Background(), "Images")
	if err != nil {
		t.Fatalf("ListFolder: %v", err)
	}
	if len(files) != len(backend.entries) {
		t.Fatalf("got %d records, want %d", len(files), len(backend.entries))
	}

	want := []struct{ name, url, typ string }{
		{"b.JPG", "https://cdn.example.com/Images/b.JPG", "jpg"},
		{"a.png", "https://cdn.example.com/Images/a.png", "png"},
		{"raw", "https://cdn.example.com/Images/raw", ""},
	}
	for i, w := range want {
		if files[i].Name != w.name || files[i].URL != w.url || files[i].Type != w.typ {
			t.Errorf("record %d = {%s %s %s}, want {%s %s %s}",
				i, files[i].Name, files[i].URL, files[i].Type, w.name, w.url, w.typ)
		}
		if files[i].DownloadLink != nil {
			t.Errorf("record %d has a download link before issuance", i)
		}
	}
	if files[0].Permissions != "-rw-r--r--" || !files[0].Modified.Equal(modified) {
		t.Errorf("metadata not carried over: %+v", files[0])
	}
	if backend.connects != 1 || backend.closes != 1 {
		t.Errorf("connects=%d closes=%d, want 1 and 1", backend.connects, backend.closes)
	}
}

func TestListFolderEmpty(t *testing.T) {
	lister := NewRemoteLister(&fakeBackend{}, "https://cdn.example.com")

	files, err := lister.ListFolder(context.Background(), "Movies")
	if err != nil {
		t.Fatalf("ListFolder: %v", err)
	}
	if files == nil || len(files) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", files)
	}
}

func TestListFolderReadErrorClosesSession(t *testing.T) {
	cause := errors.New("550 no such directory")
	backend := &fakeBackend{readErr: cause}
	lister := NewRemoteLister(backend, "https://cdn.example.com")

	_, err := lister.ListFolder(context.Background(), "Movies")

	var listErr *RemoteListingError
	if !errors.As(err, &listErr) {
		t.Fatalf("expected RemoteListingError, got %v", err)
	}
	if listErr.Folder != "Movies" || listErr.Backend != "fake" {
		t.Errorf("unexpected error context: %+v", listErr)
	}
	if !errors.Is(err, cause) {
		t.Errorf("cause not wrapped: %v", err)
	}
	if backend.closes != 1 {
		t.Errorf("session closed %d times, want 1", backend.closes)
	}
}

func TestListFolderConnectError(t *testing.T) {
	backend := &fakeBackend{connectErr: errors.New("connection refused")}
	lister := NewRemoteLister(backend, "https://cdn.example.com")

	_, err := lister.ListFolder(context.Background(), "Images")

	var listErr *RemoteListingError
	if !errors.As(err, &listErr) {
		t.Fatalf("expected RemoteListingError, got %v", err)
	}
	if backend.closes != 0 {
		t.Errorf("closed a session that was never opened")
	}
	if len(backend.folders) != 0 {
		t.Errorf("listed without a session")
	}
}

func TestListFolderRejectsEmptyName(t *testing.T) {
	backend := &fakeBackend{}
	lister := NewRemoteLister(backend, "https://cdn.example.com")

	if _, err := lister.ListFolder(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty folder")
	}
	if backend.connects != 0 {
		t.Errorf("connected for an empty folder name")
	}
}

func TestFileType(t *testing.T) {
	cases := []struct {
		entry models.RemoteEntry
		want  string
	}{
		{models.RemoteEntry{Name: "clip.MP4"}, "mp4"},
		{models.RemoteEntry{Name: "archive.tar.gz"}, "gz"},
		{models.RemoteEntry{Name: "README"}, ""},
		{models.RemoteEntry{Name: "dir.d", IsDir: true}, ""},
	}
	for _, c := range cases {
		if got := fileType(c.entry); got != c.want {
			t.Errorf("fileType(%q) = %q, want %q", c.entry.Name, got, c.want)
		}
	}
}
