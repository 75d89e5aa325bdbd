package notify

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
)

// Notifier delivers best-effort messages about completed or failed uploads.
// Implementations must never block longer than their configured timeout; the
// pipeline treats every returned error as non-fatal.
type Notifier interface {
	// NotifySubmitter sends the fixed confirmation template to the uploader.
	NotifySubmitter(ctx context.Context, email, identifier, hospital string) error

	// NotifyOperator alerts the configured operator address about an
	// unrecoverable pipeline failure.
	NotifyOperator(ctx context.Context, kind, message string, details map[string]string) error
}

// submitterMessage builds the confirmation subject and body.
func submitterMessage(identifier, hospital string) (subject, body string) {
	subject = fmt.Sprintf("Upload received - reference %s", identifier)
	var b strings.Builder
	b.WriteString("Your image bundle has been received and queued for processing.\n\n")
	fmt.Fprintf(&b, "Reference ID: %s\n", identifier)
	if hospital != "" {
		fmt.Fprintf(&b, "Institution: %s\n", hospital)
	}
	b.WriteString("\nKeep the reference ID for any follow-up inquiry.\n")
	return subject, b.String()
}

// operatorMessage builds the alert subject and body. Details are rendered in
// sorted key order so the output is stable.
func operatorMessage(kind, message string, details map[string]string) (subject, body string) {
	subject = fmt.Sprintf("[upload-gateway] %s", kind)
	var b strings.Builder
	fmt.Fprintf(&b, "Pipeline failure: %s\n\n%s\n", kind, message)
	if len(details) > 0 {
		b.WriteString("\nContext:\n")
		keys := make([]string, 0, len(details))
		for k := range details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, details[k])
		}
	}
	return subject, b.String()
}

// NoopNotifier logs instead of sending. Used when notifications are disabled
// in configuration.
type NoopNotifier struct {
	logger *log.Logger
}

// NewNoopNotifier creates a notifier that only logs.
func NewNoopNotifier(logger *log.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

func (n *NoopNotifier) NotifySubmitter(_ context.Context, email, identifier, _ string) error {
	n.logger.Printf("Notifications disabled, skipping confirmation to %s (identifier: %s)", email, identifier)
	return nil
}

func (n *NoopNotifier) NotifyOperator(_ context.Context, kind, message string, _ map[string]string) error {
	n.logger.Printf("Notifications disabled, skipping operator alert: %s: %s", kind, message)
	return nil
}

var _ Notifier = (*NoopNotifier)(nil)
