package archive

import (
	"context"
	"errors"

	"support-relay/internal/relay"
)

// MultiSink hands a transcript to every sink. Each sink is tried even when
// an earlier one fails.
type MultiSink []relay.ArchiveSink

func (m MultiSink) Archive(ctx context.Context, t *relay.Transcript) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Archive(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
