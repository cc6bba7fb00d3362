// Package files lists the configured remote folders and attaches
// time-limited download links to their files.
package files

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"medialinks-backend/internal/cdn"
	"medialinks-backend/internal/config"
	"medialinks-backend/internal/links"
	"medialinks-backend/internal/logging"
	"medialinks-backend/internal/metrics"
	"medialinks-backend/internal/models"
)

var (
	ErrUnknownFolder   = errors.New("unknown folder")
	ErrInvalidFileName = errors.New("invalid file name")
	ErrLinkUnavailable = errors.New("download link unavailable")
)

// Lister lists one remote folder.
type Lister interface {
	ListFolder(ctx context.Context, folder string) ([]models.FileRecord, error)
}

// Folder is a remote folder exposed under Key with links valid for Expiry.
type Folder struct {
	Name   string
	Key    string
	Expiry time.Duration
}

type Options struct {
	CDNBase      string
	Folders      []Folder
	SingleExpiry time.Duration
	// Concurrency bounds link issuance per folder; 1 issues sequentially.
	Concurrency int
}

type Service struct {
	lister Lister
	issuer links.Issuer
	opts   Options
}

func NewService(lister Lister, issuer links.Issuer, opts Options) *Service {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Service{
		lister: lister,
		issuer: issuer,
		opts:   opts,
	}
}

// FoldersFromConfig converts the configured folders, parsing their expiries.
func FoldersFromConfig(cfgs []config.FolderConfig) ([]Folder, error) {
	folders := make([]Folder, 0, len(cfgs))
	for _, c := range cfgs {
		expiry, err := c.GetExpiry()
		if err != nil {
			return nil, fmt.Errorf("folder %s: %w", c.Name, err)
		}
		folders = append(folders, Folder{Name: c.Name, Key: c.Key, Expiry: expiry})
	}
	return folders, nil
}

// ListAll lists every folder concurrently and issues a link for each file.
// A listing failure fails the whole call; a link failure leaves that file's
// DownloadLink nil.
func (s *Service) ListAll(ctx context.Context) ([]models.FolderListing, error) {
	listings := make([]models.FolderListing, len(s.opts.Folders))

	g, gctx := errgroup.WithContext(ctx)
	for i, folder := range s.opts.Folders {
		g.Go(func() error {
			files, err := s.lister.ListFolder(gctx, folder.Name)
			if err != nil {
				return err
			}
			if files == nil {
				files = []models.FileRecord{}
			}
			s.attachLinks(gctx, folder, files)
			listings[i] = models.FolderListing{Folder: folder.Name, Key: folder.Key, Files: files}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return listings, nil
}

// attachLinks issues links in listing order, one at a time unless the
// service was built with a higher concurrency.
func (s *Service) attachLinks(ctx context.Context, folder Folder, files []models.FileRecord) {
	if s.opts.Concurrency == 1 {
		for i := range files {
			files[i].DownloadLink = s.issue(ctx, folder.Name+"/"+files[i].Name, folder.Expiry)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i := range files {
		g.Go(func() error {
			files[i].DownloadLink = s.issue(ctx, folder.Name+"/"+files[i].Name, folder.Expiry)
			return nil
		})
	}
	g.Wait()
}

func (s *Service) issue(ctx context.Context, remotePath string, expiry time.Duration) *string {
	link, err := s.issuer.IssueTimeLimitedURL(ctx, remotePath, expiry)
	metrics.RecordLinkIssued(s.issuer.GetName(), err == nil)
	if err != nil {
		logging.WithContext(ctx).Warn("link issuance failed",
			zap.String("issuer", s.issuer.GetName()),
			zap.String("path", remotePath),
			zap.Error(err),
		)
		return nil
	}
	return &link
}

// Link issues a single link for folder/fileName. The folder must be one of
// the configured folders and fileName a single path segment.
func (s *Service) Link(ctx context.Context, folder, fileName string) (*models.FileLink, error) {
	f, ok := s.folder(folder)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFolder, folder)
	}
	if !validFileName(fileName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFileName, fileName)
	}

	remotePath := f.Name + "/" + fileName
	link := s.issue(ctx, remotePath, s.opts.SingleExpiry)
	if link == nil {
		return nil, fmt.Errorf("%w: %s", ErrLinkUnavailable, remotePath)
	}

	return &models.FileLink{
		Name:         fileName,
		URL:          cdn.URL(s.opts.CDNBase, remotePath),
		DownloadLink: *link,
	}, nil
}

func (s *Service) folder(name string) (Folder, bool) {
	for _, f := range s.opts.Folders {
		if f.Name == name {
			return f, true
		}
	}
	return Folder{}, false
}

func validFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
