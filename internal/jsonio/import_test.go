package jsonio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayCallsAddForEachEntryInOrder(t *testing.T) {
	im := Import{Packages: []ImportEntry{
		{Name: "left-pad", Revision: "1.0.0", URL: "file:///left-pad"},
		{Name: "right-pad", Revision: "2.0.0", URL: "file:///right-pad"},
	}}

	var calls [][3]string
	err := Replay(context.Background(), im, func(ctx context.Context, pkg, rev, url string) error {
		calls = append(calls, [3]string{pkg, rev, url})
		return nil
	})
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, [3]string{"left-pad", "1.0.0", "file:///left-pad"}, calls[0])
	assert.Equal(t, [3]string{"right-pad", "2.0.0", "file:///right-pad"}, calls[1])
}

func TestReplayAbortsOnFirstFailure(t *testing.T) {
	im := Import{Packages: []ImportEntry{
		{Name: "left-pad", Revision: "1.0.0", URL: "file:///left-pad"},
		{Name: "right-pad", Revision: "2.0.0", URL: "file:///right-pad"},
	}}

	calls := 0
	err := Replay(context.Background(), im, func(ctx context.Context, pkg, rev, url string) error {
		calls++
		return errors.New("boom")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls, "replay must stop at the first failure")
}
