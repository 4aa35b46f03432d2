package testutil

import (
	"encoding/json"
	"path"

	"github.com/door43/catalog-job-handler/internal/domain/model"
)

// PayloadBuilder builds DCS webhook payloads for tests.
type PayloadBuilder struct {
	p model.Payload
}

// NewPushPayload starts a push to the default branch of owner/repo with no commits.
func NewPushPayload(owner, repo string) *PayloadBuilder {
	return &PayloadBuilder{p: model.Payload{
		model.EventKindField: model.EventPush,
		"ref":                "refs/heads/master",
		"repository":         repository(owner, repo),
		"pusher":             map[string]any{"id": float64(7), "username": owner},
		"commits":            []any{},
	}}
}

// NewReleasePayload starts a release of tag for owner/repo with a zipball URL on host.
func NewReleasePayload(owner, repo, tag string) *PayloadBuilder {
	return &PayloadBuilder{p: model.Payload{
		model.EventKindField: model.EventRelease,
		"repository":         repository(owner, repo),
		"release": map[string]any{
			"tag_name":    tag,
			"zipball_url": "https://git.door43.org/" + owner + "/" + repo + "/archive/" + tag + ".zip",
			"name":        "Release " + tag,
			"author":      map[string]any{"username": owner},
		},
	}}
}

func repository(owner, repo string) map[string]any {
	return map[string]any{
		"id":             float64(42),
		"name":           repo,
		"default_branch": "master",
		"owner":          map[string]any{"id": float64(3), "username": owner},
	}
}

// WithRef sets the pushed ref, e.g. "refs/heads/feature".
func (b *PayloadBuilder) WithRef(ref string) *PayloadBuilder {
	b.p["ref"] = ref
	return b
}

// WithCommits replaces the commit list; each URL becomes one commit whose id
// is the last path segment.
func (b *PayloadBuilder) WithCommits(urls ...string) *PayloadBuilder {
	commits := make([]any, 0, len(urls))
	for _, u := range urls {
		commits = append(commits, map[string]any{
			"id":      path.Base(u),
			"url":     u,
			"message": "Edit " + path.Base(u),
			"author":  map[string]any{"username": "author"},
		})
	}
	b.p["commits"] = commits
	return b
}

// WithZipballURL overrides the release archive URL.
func (b *PayloadBuilder) WithZipballURL(u string) *PayloadBuilder {
	if rel, ok := b.p["release"].(map[string]any); ok {
		rel["zipball_url"] = u
	}
	return b
}

// WithField sets an arbitrary top-level field.
func (b *PayloadBuilder) WithField(key string, value any) *PayloadBuilder {
	b.p[key] = value
	return b
}

// Build returns the payload.
func (b *PayloadBuilder) Build() model.Payload {
	return b.p
}

// JSON returns the payload encoded the way the broker stores it.
func (b *PayloadBuilder) JSON() []byte {
	data, err := json.Marshal(b.p)
	if err != nil {
		panic(err)
	}
	return data
}

// StringPtr returns a pointer to the given string value.
func StringPtr(s string) *string {
	return &s
}
