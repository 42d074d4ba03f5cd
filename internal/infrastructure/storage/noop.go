package storage

import "context"

// NoopArchiver is used when archiving is disabled.
type NoopArchiver struct{}

// Archive does nothing
func (NoopArchiver) Archive(context.Context, string, string, string) error {
	return nil
}
