// Package webhook turns queued DCS webhook payloads into commit identities and
// decides whether a queued push has been superseded by a later one.
package webhook

import (
	"context"
	"log/slog"
	"strings"

	"github.com/door43/catalog-job-handler/internal/domain/model"
	"github.com/door43/catalog-job-handler/internal/logging"
)

// Branch names that mean "we could not tell" rather than a real branch.
const (
	noCommitBranch      = "NoCommitBranch"
	unknownCommitBranch = "UnknownCommitBranch"
)

// Field names recorded in CommitIdentity.Fallbacks.
const (
	FieldOwner         = "repository.owner.username"
	FieldRepoName      = "repository.name"
	FieldDefaultBranch = "repository.default_branch"
	FieldTagName       = "release.tag_name"
	FieldRelease       = "release"
	FieldZipballURL    = "release.zipball_url"
	FieldReleaseName   = "release.name"
	FieldReleaseAuthor = "release.author.username"
	FieldRef           = "ref"
	FieldCommitHash    = "commits[0].id"
	FieldCommitURL     = "commits[0].url"
	FieldCommitMessage = "commits[0].message"
	FieldPusher        = "pusher.username"
)

// Resolver derives a CommitIdentity from a webhook payload. It performs no I/O
// other than logging and is safe for concurrent use.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver constructs a Resolver. A nil logger falls back to slog.Default().
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger.With("component", "commit_resolver")}
}

type resolution struct {
	id        model.CommitIdentity
	branch    *string
	tag       *string
	fallbacks []string
}

func (r *resolution) fallback(field string) {
	r.fallbacks = append(r.fallbacks, field)
}

// Resolve never fails: missing optional fields degrade to documented defaults.
func (r *Resolver) Resolve(ctx context.Context, payload model.Payload) model.CommitIdentity {
	res := &resolution{}
	res.id.EventKind = payload.EventKind()
	res.id.Owner = r.stringOr(payload, res, FieldOwner, model.DefaultOwner)
	res.id.RepoName = r.stringOr(payload, res, FieldRepoName, model.DefaultRepoName)

	if b, ok := payload.String(FieldDefaultBranch); ok {
		res.id.DefaultBranch = b
	} else {
		logging.Critical(ctx, r.logger, "no default branch specified", "repo", res.id.FullName())
		res.id.DefaultBranch = model.DefaultBranchName
		res.fallback(FieldDefaultBranch)
	}

	switch res.id.EventKind {
	case model.EventPush:
		r.resolvePush(payload, res)
	case model.EventRelease:
		r.resolveRelease(ctx, payload, res)
	default:
		logging.Critical(ctx, r.logger, "cannot handle webhook event kind",
			"event", res.id.EventKind,
			"repo", res.id.FullName(),
		)
		res.id.Actor = r.stringOr(payload, res, FieldPusher, model.DefaultActor)
		res.id.ActionLabel = model.DefaultActionLabel
	}

	applyPrecedence(res)
	res.id.Fallbacks = res.fallbacks

	r.logger.DebugContext(ctx, "resolved commit identity",
		"kind", res.id.Kind,
		"id", res.id.IDString(),
		"archive_url", res.id.ArchiveURLString(),
		"repo", res.id.FullName(),
	)
	return res.id
}

func (r *Resolver) resolvePush(payload model.Payload, res *resolution) {
	ref, ok := payload.String(FieldRef)
	switch {
	case !ok:
		res.fallback(FieldRef)
		res.branch = strPtr(noCommitBranch)
	case strings.HasPrefix(ref, "refs/tags/"):
		res.tag = strPtr(strings.TrimPrefix(ref, "refs/tags/"))
	case strings.HasPrefix(ref, "refs/heads/"):
		res.branch = strPtr(strings.TrimPrefix(ref, "refs/heads/"))
	default:
		res.branch = strPtr(unknownCommitBranch)
	}

	if hash, ok := payload.String(FieldCommitHash); ok {
		res.id.CommitHash = strPtr(hash)
	} else if after, ok := payload.String("after"); ok {
		res.id.CommitHash = strPtr(after)
	} else {
		res.fallback(FieldCommitHash)
	}

	if commitURL, ok := payload.FirstCommitURL(); ok {
		res.id.CommitURL = strPtr(commitURL)
		res.id.ArchiveURL = strPtr(ArchiveURLFromCommitURL(commitURL))
	} else {
		res.fallback(FieldCommitURL)
	}

	if actor, ok := payload.String(FieldPusher); ok {
		res.id.Actor = actor
	} else if actor, ok := payload.String("commits[0].author.username"); ok {
		res.id.Actor = actor
	} else {
		res.fallback(FieldPusher)
		res.id.Actor = model.DefaultActor
	}
	res.id.ActionLabel = r.stringOr(payload, res, FieldCommitMessage, model.DefaultActionLabel)
}

func (r *Resolver) resolveRelease(ctx context.Context, payload model.Payload, res *resolution) {
	if _, ok := payload.Object(FieldRelease); !ok {
		logging.Critical(ctx, r.logger, "could not determine tag name from malformed release",
			"repo", res.id.FullName(),
		)
		res.fallback(FieldRelease)
		res.tag = strPtr(model.MalformedTagName)
		res.id.Actor = model.DefaultActor
		res.id.ActionLabel = model.DefaultActionLabel
		return
	}

	if tag, ok := payload.String(FieldTagName); ok && tag != "" {
		res.tag = strPtr(tag)
	} else {
		logging.Critical(ctx, r.logger, "no tag name specified", "repo", res.id.FullName())
		res.fallback(FieldTagName)
		res.tag = strPtr(model.DefaultTagName)
	}

	if zip, ok := payload.String(FieldZipballURL); ok && zip != "" {
		res.id.ArchiveURL = strPtr(zip)
	} else {
		res.fallback(FieldZipballURL)
	}

	res.id.ActionLabel = r.stringOr(payload, res, FieldReleaseName, model.DefaultActionLabel)
	res.id.Actor = r.stringOr(payload, res, FieldReleaseAuthor, model.DefaultActor)
}

// applyPrecedence: default branch > tag > named branch > unknown.
func applyPrecedence(res *resolution) {
	switch {
	case res.branch != nil && *res.branch == res.id.DefaultBranch:
		res.id.Kind = model.CommitKindDefaultBranch
		res.id.ID = res.branch
	case res.tag != nil:
		res.id.Kind = model.CommitKindTag
		res.id.ID = res.tag
	case res.branch != nil && *res.branch != noCommitBranch && *res.branch != unknownCommitBranch:
		res.id.Kind = model.CommitKindBranch
		res.id.ID = res.branch
	default:
		res.id.Kind = model.CommitKindUnknown
		res.id.ID = nil
	}
}

func (r *Resolver) stringOr(payload model.Payload, res *resolution, field, def string) string {
	if v, ok := payload.String(field); ok {
		return v
	}
	res.fallback(field)
	return def
}

// ArchiveURLFromCommitURL maps a DCS commit page URL to its zip archive URL:
// .../owner/repo/commit/<hash> becomes .../owner/repo/archive/<hash>.zip.
// URLs already ending in .zip are returned unchanged.
func ArchiveURLFromCommitURL(commitURL string) string {
	if strings.HasSuffix(commitURL, ".zip") {
		return commitURL
	}
	trimmed := strings.TrimSuffix(commitURL, "/")
	if i := strings.LastIndex(trimmed, "/commit/"); i >= 0 {
		trimmed = trimmed[:i] + "/archive/" + trimmed[i+len("/commit/"):]
	}
	return trimmed + ".zip"
}

func strPtr(s string) *string { return &s }
