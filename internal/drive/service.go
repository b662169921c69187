// internal/drive/service.go
package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/andresuchdata/retail-ars/pkg/logger"
)

// Service pulls partner channel spreadsheets from a shared Google Drive
// folder into the local input directory before a run.
type Service struct {
	drive *drive.Service
}

// NewService authenticates with a service-account credentials file.
func NewService(ctx context.Context, credentialsFile string) (*Service, error) {
	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read drive credentials: %w", err)
	}
	jwt, err := google.JWTConfigFromJSON(raw, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse drive credentials: %w", err)
	}
	svc, err := drive.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Service{drive: svc}, nil
}

// ResolveFolder walks a "/"-separated folder path from the drive root and
// returns the final folder ID.
func (s *Service) ResolveFolder(path string) (string, error) {
	parentID := "root"
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment == "" {
			continue
		}
		query := fmt.Sprintf(
			"name = '%s' and '%s' in parents and mimeType = 'application/vnd.google-apps.folder' and trashed = false",
			strings.ReplaceAll(segment, "'", "\\'"), parentID)
		list, err := s.drive.Files.List().Q(query).Fields("files(id, name)").PageSize(1).Do()
		if err != nil {
			return "", fmt.Errorf("resolve folder %q: %w", segment, err)
		}
		if len(list.Files) == 0 {
			return "", fmt.Errorf("drive folder %q not found under %s", segment, parentID)
		}
		parentID = list.Files[0].Id
	}
	return parentID, nil
}

// ListSpreadsheets lists xlsx files directly inside a folder.
func (s *Service) ListSpreadsheets(folderID string) ([]*drive.File, error) {
	query := fmt.Sprintf(
		"'%s' in parents and trashed = false and mimeType = 'application/vnd.openxmlformats-officedocument.spreadsheetml.sheet'",
		folderID)
	var out []*drive.File
	pageToken := ""
	for {
		call := s.drive.Files.List().Q(query).Fields("nextPageToken, files(id, name, modifiedTime)").PageSize(100)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list drive files: %w", err)
		}
		out = append(out, list.Files...)
		if list.NextPageToken == "" {
			return out, nil
		}
		pageToken = list.NextPageToken
	}
}

// DownloadFile writes one drive file to destPath.
func (s *Service) DownloadFile(fileID, destPath string) error {
	resp, err := s.drive.Files.Get(fileID).Download()
	if err != nil {
		return fmt.Errorf("download drive file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return nil
}

// SyncFolder downloads every spreadsheet in folderPath into inputDir.
// Individual file failures are logged and skipped.
func (s *Service) SyncFolder(folderPath, inputDir string) (int, error) {
	folderID, err := s.ResolveFolder(folderPath)
	if err != nil {
		return 0, err
	}
	files, err := s.ListSpreadsheets(folderID)
	if err != nil {
		return 0, err
	}

	downloaded := 0
	for _, f := range files {
		dest := filepath.Join(inputDir, f.Name)
		if err := s.DownloadFile(f.Id, dest); err != nil {
			logger.Log.Warn().Err(err).Str("file", f.Name).Msg("drive download failed, skipping")
			continue
		}
		downloaded++
		logger.Log.Info().Str("file", f.Name).Msg("downloaded channel file")
	}
	return downloaded, nil
}
