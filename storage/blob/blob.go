package blob

import "context"

// Store is the narrow capability the pipeline needs from the blob provider
// holding uploaded artifacts. Refs are opaque provider handles; the pipeline
// never interprets them.
type Store interface {
	// ArtifactName returns the current stored name of the artifact.
	ArtifactName(ctx context.Context, ref string) (string, error)

	// Rename relabels the artifact in place without moving its bytes.
	Rename(ctx context.Context, ref, newName string) error

	// SetDescription attaches free-form text to the artifact. Only used for
	// proof-of-upload screenshots.
	SetDescription(ctx context.Context, ref, text string) error

	// Close releases the underlying client.
	Close() error
}
