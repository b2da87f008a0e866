// Package queue resolves the named editorial queues into storage-neutral
// selection criteria. The same criteria drive both list and count queries,
// which keeps dashboard counters consistent with the lists they summarize.
package queue

import (
	"strings"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/access"
	"github.com/example/editorial/internal/core/stage"
)

// Kind names a queue.
type Kind string

const (
	MyQueue    Kind = "my_queue"
	Unassigned Kind = "unassigned"
	AllActive  Kind = "all_active"
	Archived   Kind = "archived"
)

// Kinds lists every queue in display order.
var Kinds = []Kind{MyQueue, Unassigned, AllActive, Archived}

// ParseKind converts a raw queue name (accepting dashes) into a Kind.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", apperr.Newf(apperr.ErrValidation, "unknown queue %q", raw)
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is a normalized limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// NormalizePage clamps limit into [1, max] (def when non-positive) and offset
// to be non-negative.
func NormalizePage(limit, offset, def, max int) Page {
	if def <= 0 {
		def = DefaultLimit
	}
	if max <= 0 {
		max = MaxLimit
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// Request selects one queue for one caller.
type Request struct {
	Kind      Kind
	UserID    string
	JournalID string // optional, restricts to one journal
	// ViewAllArchived is true for managers and admins, who see the
	// unfiltered archive.
	ViewAllArchived bool
	Stage           stage.Stage // optional
	Search          string      // optional, case-insensitive title substring
}

// Criteria is the storage-neutral selection a queue resolves to. Every
// non-empty field is a conjunct.
type Criteria struct {
	Statuses []stage.Status
	// ParticipantUserID restricts to submissions where this user holds any
	// participant role.
	ParticipantUserID string
	// ExcludeHeldRoles drops submissions where any participant holds one of
	// these roles.
	ExcludeHeldRoles []access.Role
	JournalID        string
	Stage            stage.Stage
	Search           string
}

// Resolve maps a queue request to criteria. Role and status filters come
// first; stage and search narrow the result afterwards.
func Resolve(req Request) (Criteria, error) {
	var c Criteria

	switch req.Kind {
	case MyQueue:
		if req.UserID == "" {
			return Criteria{}, apperr.New(apperr.ErrUnauthorized, "my queue requires a user")
		}
		c.Statuses = []stage.Status{stage.StatusQueued}
		c.ParticipantUserID = req.UserID
	case Unassigned:
		c.Statuses = []stage.Status{stage.StatusQueued}
		c.ExcludeHeldRoles = append([]access.Role(nil), access.EditorialRoles...)
	case AllActive:
		c.Statuses = []stage.Status{stage.StatusQueued}
	case Archived:
		c.Statuses = append([]stage.Status(nil), stage.ArchivedStatuses...)
		if !req.ViewAllArchived {
			if req.UserID == "" {
				return Criteria{}, apperr.New(apperr.ErrUnauthorized, "archived queue requires a user")
			}
			c.ParticipantUserID = req.UserID
		}
	default:
		return Criteria{}, apperr.Newf(apperr.ErrValidation, "unknown queue %q", req.Kind)
	}

	if req.Stage != "" {
		if !req.Stage.Valid() {
			return Criteria{}, apperr.Newf(apperr.ErrInvalidState, "unrecognized stage %q", req.Stage)
		}
		c.Stage = req.Stage
	}
	c.JournalID = req.JournalID
	c.Search = strings.TrimSpace(req.Search)

	return c, nil
}

// Holding is one participant row of a submission, as needed for matching.
type Holding struct {
	UserID string
	Role   access.Role
}

// Candidate is the submission state criteria are evaluated against.
type Candidate struct {
	JournalID string
	Status    stage.Status
	Stage     stage.Stage
	Title     string
	Holdings  []Holding
}

// Matches evaluates criteria against a candidate in memory. Storage adapters
// must select exactly the candidates Matches accepts.
func (c Criteria) Matches(s Candidate) bool {
	if len(c.Statuses) > 0 && !containsStatus(c.Statuses, s.Status) {
		return false
	}
	if c.ParticipantUserID != "" {
		found := false
		for _, h := range s.Holdings {
			if h.UserID == c.ParticipantUserID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, h := range s.Holdings {
		for _, excluded := range c.ExcludeHeldRoles {
			if h.Role == excluded {
				return false
			}
		}
	}
	if c.JournalID != "" && s.JournalID != c.JournalID {
		return false
	}
	if c.Stage != "" && s.Stage != c.Stage {
		return false
	}
	if c.Search != "" && !strings.Contains(strings.ToLower(s.Title), strings.ToLower(c.Search)) {
		return false
	}
	return true
}

func containsStatus(list []stage.Status, s stage.Status) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}

// FallbackToUnassigned reports whether a caller showing My Queue should
// show the Unassigned queue instead. The resolver itself never falls back.
func FallbackToUnassigned(kind Kind, myQueueTotal int) bool {
	return kind == MyQueue && myQueueTotal == 0
}
