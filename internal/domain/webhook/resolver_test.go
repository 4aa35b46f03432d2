package webhook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/door43/catalog-job-handler/internal/domain/model"
)

func releasePayload() model.Payload {
	return model.Payload{
		"DCS_event": "release",
		"release": map[string]any{
			"tag_name":    "v1.0",
			"zipball_url": "https://host/x.zip",
			"name":        "First release",
			"author":      map[string]any{"username": "alice"},
		},
		"repository": map[string]any{
			"owner":          map[string]any{"username": "bob"},
			"name":           "proj",
			"default_branch": "master",
		},
	}
}

func pushPayload(ref string, commitURLs ...string) model.Payload {
	commits := make([]any, 0, len(commitURLs))
	for _, u := range commitURLs {
		commits = append(commits, map[string]any{
			"id":      "abc123",
			"url":     u,
			"message": "Edit 01-GEN.usfm",
			"author":  map[string]any{"username": "carol"},
		})
	}
	return model.Payload{
		"DCS_event": "push",
		"ref":       ref,
		"commits":   commits,
		"pusher":    map[string]any{"username": "dave"},
		"repository": map[string]any{
			"owner":          map[string]any{"username": "unfoldingWord"},
			"name":           "en_ult",
			"default_branch": "master",
		},
	}
}

func TestResolveRelease(t *testing.T) {
	r := NewResolver(nil)

	id := r.Resolve(context.Background(), releasePayload())

	assert.Equal(t, "bob", id.Owner)
	assert.Equal(t, "proj", id.RepoName)
	assert.Equal(t, model.CommitKindTag, id.Kind)
	require.NotNil(t, id.ID)
	assert.Equal(t, "v1.0", *id.ID)
	require.NotNil(t, id.ArchiveURL)
	assert.Equal(t, "https://host/x.zip", *id.ArchiveURL)
	assert.Equal(t, "alice", id.Actor)
	assert.Equal(t, "First release", id.ActionLabel)
	assert.Empty(t, id.Fallbacks)
	assert.Equal(t, "'alice' releasing 'bob/proj'", id.Describe())
}

func TestResolveReleaseFallbacks(t *testing.T) {
	r := NewResolver(nil)
	ctx := context.Background()

	t.Run("missing tag name", func(t *testing.T) {
		p := releasePayload()
		delete(p["release"].(map[string]any), "tag_name")
		delete(p["release"].(map[string]any), "author")

		id := r.Resolve(ctx, p)
		assert.Equal(t, model.CommitKindTag, id.Kind)
		assert.Equal(t, model.DefaultTagName, id.IDString())
		assert.True(t, id.UsedFallback(FieldTagName))
		assert.Equal(t, model.DefaultActor, id.Actor)
		assert.True(t, id.UsedFallback(FieldReleaseAuthor))
	})

	t.Run("malformed release object", func(t *testing.T) {
		p := releasePayload()
		p["release"] = []any{"not", "an", "object"}

		id := r.Resolve(ctx, p)
		assert.Equal(t, model.CommitKindTag, id.Kind)
		assert.Equal(t, model.MalformedTagName, id.IDString())
		assert.Nil(t, id.ArchiveURL)
		assert.True(t, id.UsedFallback(FieldRelease))
	})

	t.Run("missing repository fields", func(t *testing.T) {
		p := releasePayload()
		delete(p, "repository")

		id := r.Resolve(ctx, p)
		assert.Equal(t, model.DefaultOwner, id.Owner)
		assert.Equal(t, model.DefaultRepoName, id.RepoName)
		assert.Equal(t, model.DefaultBranchName, id.DefaultBranch)
		assert.True(t, id.UsedFallback(FieldDefaultBranch))
	})
}

func TestResolvePushPrecedence(t *testing.T) {
	r := NewResolver(nil)
	ctx := context.Background()
	commitURL := "https://git.door43.org/unfoldingWord/en_ult/commit/abc123"

	tests := []struct {
		name     string
		ref      string
		wantKind model.CommitKind
		wantID   *string
	}{
		{"default branch", "refs/heads/master", model.CommitKindDefaultBranch, strPtr("master")},
		{"named branch", "refs/heads/feature", model.CommitKindBranch, strPtr("feature")},
		{"tag ref", "refs/tags/v2", model.CommitKindTag, strPtr("v2")},
		{"odd ref", "refs/pull/3/head", model.CommitKindUnknown, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id := r.Resolve(ctx, pushPayload(tc.ref, commitURL))
			assert.Equal(t, tc.wantKind, id.Kind)
			assert.Equal(t, tc.wantID, id.ID)
			assert.Equal(t, tc.wantKind == model.CommitKindUnknown, id.ID == nil)
			require.NotNil(t, id.ArchiveURL)
			assert.Equal(t, "https://git.door43.org/unfoldingWord/en_ult/archive/abc123.zip", *id.ArchiveURL)
			assert.Equal(t, "dave", id.Actor)
			assert.Equal(t, "abc123", *id.CommitHash)
		})
	}
}

func TestResolvePushWithoutRef(t *testing.T) {
	r := NewResolver(nil)
	p := pushPayload("", "https://git.door43.org/o/r/commit/1")
	delete(p, "ref")
	delete(p, "pusher")

	id := r.Resolve(context.Background(), p)
	assert.Equal(t, model.CommitKindUnknown, id.Kind)
	assert.Nil(t, id.ID)
	assert.True(t, id.UsedFallback(FieldRef))
	assert.Equal(t, "carol", id.Actor)
}

func TestResolveUnsupportedEventKinds(t *testing.T) {
	r := NewResolver(nil)
	ctx := context.Background()

	for _, kind := range []string{"create", "delete", "issues", "pull_request", ""} {
		t.Run(kind, func(t *testing.T) {
			p := releasePayload()
			p["DCS_event"] = kind

			id := r.Resolve(ctx, p)
			assert.Equal(t, model.CommitKindUnknown, id.Kind)
			assert.Nil(t, id.ID)
			assert.Nil(t, id.ArchiveURL)
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	r := NewResolver(nil)
	ctx := context.Background()

	for _, p := range []model.Payload{
		releasePayload(),
		pushPayload("refs/heads/master", "https://git.door43.org/o/r/commit/1"),
		{"DCS_event": "fork"},
	} {
		first := r.Resolve(ctx, p)
		second := r.Resolve(ctx, p)
		assert.Equal(t, first, second)
	}
}

func TestArchiveURLFromCommitURL(t *testing.T) {
	tests := map[string]string{
		"https://git.door43.org/o/r/commit/abc":     "https://git.door43.org/o/r/archive/abc.zip",
		"https://git.door43.org/o/commits/commit/a": "https://git.door43.org/o/commits/archive/a.zip",
		"https://git.door43.org/o/r/archive/a.zip":  "https://git.door43.org/o/r/archive/a.zip",
		"https://host/o/r/commit/abc/":              "https://host/o/r/archive/abc.zip",
	}
	for in, want := range tests {
		assert.Equal(t, want, ArchiveURLFromCommitURL(in), in)
	}
}
