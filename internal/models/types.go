package models

import "time"

// RemoteEntry is a directory entry as reported by a storage backend.
type RemoteEntry struct {
	Name        string
	Size        int64
	IsDir       bool
	Created     time.Time
	Modified    time.Time
	Permissions string
}

type FileRecord struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	DownloadLink *string   `json:"downloadLink"`
	Created      time.Time `json:"created"`
	Modified     time.Time `json:"modified"`
	Permissions  string    `json:"permissions"`
	Type         string    `json:"type"`
}

// FolderListing holds the records of one remote folder. Key is the name the
// folder is exposed under in API responses.
type FolderListing struct {
	Folder string       `json:"folder"`
	Key    string       `json:"-"`
	Files  []FileRecord `json:"files"`
}

type FileLink struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	DownloadLink string `json:"downloadLink"`
}
