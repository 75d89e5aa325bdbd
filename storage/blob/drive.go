package blob

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveStore implements Store on Google Drive. Artifact refs are Drive file
// IDs. Renames and metadata updates go through Files.Update, which never
// touches the file content. When folderID is set, renames are restricted to
// files parented under that upload folder.
type DriveStore struct {
	svc      *drive.Service
	folderID string
	logger   *log.Logger
}

// NewDriveStore builds a Drive-backed store authenticated with a service
// account credentials file. folderID may be empty to disable the containment
// check.
func NewDriveStore(ctx context.Context, credentialsFile, folderID string, logger *log.Logger) (*DriveStore, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	logger.Println("Google Drive blob store initialized")
	return &DriveStore{svc: svc, folderID: folderID, logger: logger}, nil
}

// ArtifactName returns the current Drive file name.
func (s *DriveStore) ArtifactName(ctx context.Context, ref string) (string, error) {
	f, err := s.svc.Files.Get(ref).Fields("name").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to fetch Drive file '%s': %w", ref, err)
	}
	return f.Name, nil
}

// Rename relabels the Drive file to newName. With a configured upload
// folder, files parented elsewhere are refused: the gateway must never
// relabel anything outside its own drop zone.
func (s *DriveStore) Rename(ctx context.Context, ref, newName string) error {
	if s.folderID != "" {
		ok, err := s.inUploadFolder(ctx, ref)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("refusing to rename Drive file '%s': not in the upload folder", ref)
		}
	}
	_, err := s.svc.Files.Update(ref, &drive.File{Name: newName}).
		Fields("id", "name").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to rename Drive file '%s' to '%s': %w", ref, newName, err)
	}
	s.logger.Printf("Drive file %s renamed to %s", ref, newName)
	return nil
}

// SetDescription sets the Drive file description.
func (s *DriveStore) SetDescription(ctx context.Context, ref, text string) error {
	_, err := s.svc.Files.Update(ref, &drive.File{Description: text}).
		SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to set description on Drive file '%s': %w", ref, err)
	}
	return nil
}

// inUploadFolder reports whether ref is parented under the configured
// upload folder.
func (s *DriveStore) inUploadFolder(ctx context.Context, ref string) (bool, error) {
	f, err := s.svc.Files.Get(ref).Fields("parents").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("failed to fetch parents of Drive file '%s': %w", ref, err)
	}
	for _, p := range f.Parents {
		if p == s.folderID {
			return true, nil
		}
	}
	return false, nil
}

// Close is a no-op for the Drive HTTP client.
func (s *DriveStore) Close() error { return nil }

var _ Store = (*DriveStore)(nil)
