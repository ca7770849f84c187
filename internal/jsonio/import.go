package jsonio

import (
	"context"
	"fmt"
)

// Replay walks im's packages in order and calls add for each, per
// "json-import reads ... and replays add for each" (§6). add is the
// caller's *resolver.Resolver.Add, passed as a closure so this package
// never needs to import resolver's store/manifest dependencies. The first
// failure aborts the replay; packages already added are not rolled back,
// matching add's own idempotence.
func Replay(ctx context.Context, im Import, add func(ctx context.Context, pkg, rev, url string) error) error {
	for _, entry := range im.Packages {
		if err := add(ctx, entry.Name, entry.Revision, entry.URL); err != nil {
			return fmt.Errorf("importing %s@%s: %w", entry.Name, entry.Revision, err)
		}
	}
	return nil
}
