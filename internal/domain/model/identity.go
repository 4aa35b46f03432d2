package model

import (
	"errors"
	"fmt"
)

// ErrEmptyPayload is returned when a webhook body decodes to JSON null.
var ErrEmptyPayload = errors.New("empty payload")

// CommitKind classifies which kind of repository revision an event refers to.
type CommitKind string

const (
	CommitKindDefaultBranch CommitKind = "defaultBranch"
	CommitKindTag           CommitKind = "tag"
	CommitKindBranch        CommitKind = "branch"
	CommitKindUnknown       CommitKind = "unknown"
)

// Documented defaults used when a payload field is missing or malformed.
// Whenever one of these is applied the field name is recorded in CommitIdentity.Fallbacks.
const (
	DefaultTagName        = "NoTagName"
	MalformedTagName      = "UnknownTagName"
	DefaultBranchName     = "NoDefaultBranch"
	DefaultActor          = "UnknownActor"
	DefaultOwner          = "UnknownOwner"
	DefaultRepoName       = "UnknownRepo"
	DefaultActionLabel    = "(no message)"
	MissingStatsIDValue   = "No id"
	DescriptiveNameNoRepo = "unknown repository"
)

// CommitIdentity is the canonical description of the revision a webhook event refers to.
// Values are immutable once returned by the resolver.
type CommitIdentity struct {
	Owner    string
	RepoName string
	Kind     CommitKind

	// ID is the branch or tag name; nil exactly when Kind is CommitKindUnknown.
	ID *string
	// ArchiveURL is the zip to fetch; nil when the payload names no fetchable artifact.
	ArchiveURL *string

	CommitHash *string
	CommitURL  *string

	EventKind     string
	DefaultBranch string

	// Actor and ActionLabel are attribution for logs and metrics only.
	Actor       string
	ActionLabel string

	// Fallbacks lists payload fields that were absent or malformed and were
	// replaced with their documented default.
	Fallbacks []string
}

// HasID reports whether a branch or tag was resolved.
func (c CommitIdentity) HasID() bool { return c.ID != nil }

// IDString returns the resolved id or "".
func (c CommitIdentity) IDString() string {
	if c.ID == nil {
		return ""
	}
	return *c.ID
}

// ArchiveURLString returns the archive URL or "".
func (c CommitIdentity) ArchiveURLString() string {
	if c.ArchiveURL == nil {
		return ""
	}
	return *c.ArchiveURL
}

// FullName returns "owner/repo".
func (c CommitIdentity) FullName() string {
	return c.Owner + "/" + c.RepoName
}

// UsedFallback reports whether the named field degraded to its default.
func (c CommitIdentity) UsedFallback(field string) bool {
	for _, f := range c.Fallbacks {
		if f == field {
			return true
		}
	}
	return false
}

// Describe builds the human-readable job label, e.g. "'alice' releasing 'bob/proj'".
func (c CommitIdentity) Describe() string {
	verb := "processing"
	switch c.EventKind {
	case EventPush:
		verb = "pushing"
	case EventRelease:
		verb = "releasing"
	}
	return fmt.Sprintf("'%s' %s '%s'", c.Actor, verb, c.FullName())
}
