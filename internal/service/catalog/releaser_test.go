package catalog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/door43/catalog-job-handler/internal/core"
)

func TestNoopReleaserIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	r := NewNoopReleaser(slog.New(slog.NewJSONHandler(&buf, nil)))

	rel := core.Release{Owner: "bob", Repo: "proj", CommitID: "v1.0", ArchiveURL: "https://host/x.zip"}
	require.NoError(t, r.HandleRelease(context.Background(), rel))
	require.NoError(t, r.HandleRelease(context.Background(), rel))

	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte(`"commit_id":"v1.0"`)))
}

func TestNoopReleaserValidation(t *testing.T) {
	r := NewNoopReleaser(nil)
	ctx := context.Background()

	assert.Error(t, r.HandleRelease(ctx, core.Release{Repo: "proj", CommitID: "master"}))
	assert.Error(t, r.HandleRelease(ctx, core.Release{Owner: "bob", Repo: "proj"}))
}
