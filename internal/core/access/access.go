// Package access models editorial roles and the capability table that maps
// role grants to allowed operations. Checks happen once, at the boundary of
// each service operation.
package access

import (
	"strings"

	"github.com/example/editorial/internal/apperr"
)

// Role is a closed enumeration of editorial roles.
type Role string

const (
	Admin         Role = "admin"
	Manager       Role = "manager"
	Editor        Role = "editor"
	SectionEditor Role = "section_editor"
	Reviewer      Role = "reviewer"
	Author        Role = "author"
)

// AllRoles lists every known role.
var AllRoles = []Role{Admin, Manager, Editor, SectionEditor, Reviewer, Author}

// EditorialRoles are the participant roles that make a submission "assigned"
// for queue purposes.
var EditorialRoles = []Role{Manager, Editor, SectionEditor}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole converts a raw role path into a Role.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if r == "section-editor" {
		r = SectionEditor
	}
	if !r.Valid() {
		return "", apperr.Newf(apperr.ErrValidation, "unrecognized role %q", raw)
	}
	return r, nil
}

// Capability is an operation class guarded at the access boundary.
type Capability string

const (
	CapEditorAccess    Capability = "editor_access"
	CapViewAllArchived Capability = "view_all_archived"
	CapAdminCorrection Capability = "admin_correction"
)

// Grant is a role held site-wide (empty JournalID) or within one journal.
type Grant struct {
	Role      Role
	JournalID string
}

// Site reports whether the grant is site-wide.
func (g Grant) Site() bool {
	return g.JournalID == ""
}

type scopedRoles struct {
	site    []Role
	journal []Role
}

var capabilities = map[Capability]scopedRoles{
	CapEditorAccess: {
		site:    []Role{Admin, Manager, Editor},
		journal: []Role{Manager, Editor, SectionEditor},
	},
	CapViewAllArchived: {
		site:    []Role{Admin, Manager},
		journal: []Role{Manager},
	},
	CapAdminCorrection: {
		site: []Role{Admin},
	},
}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Grants []Grant
}

// Has reports whether the principal holds capability cap for journalID.
func (p *Principal) Has(cap Capability, journalID string) bool {
	if p == nil {
		return false
	}
	table, ok := capabilities[cap]
	if !ok {
		return false
	}
	for _, g := range p.Grants {
		if g.Site() {
			if containsRole(table.site, g.Role) {
				return true
			}
			continue
		}
		if journalID != "" && g.JournalID == journalID && containsRole(table.journal, g.Role) {
			return true
		}
	}
	return false
}

// HasRole reports whether the principal holds role anywhere.
func (p *Principal) HasRole(role Role) bool {
	if p == nil {
		return false
	}
	for _, g := range p.Grants {
		if g.Role == role {
			return true
		}
	}
	return false
}

// IsManagerOrAdmin reports whether the principal sees the unfiltered
// archive for journalID (empty journalID checks site grants only).
func (p *Principal) IsManagerOrAdmin(journalID string) bool {
	return p.Has(CapViewAllArchived, journalID)
}

// Require fails with Unauthorized for a missing principal and Forbidden when
// the capability is not granted.
func Require(p *Principal, cap Capability, journalID string) error {
	if p == nil || p.UserID == "" {
		return apperr.New(apperr.ErrUnauthorized, "authentication required")
	}
	if !p.Has(cap, journalID) {
		return apperr.Newf(apperr.ErrForbidden, "user %s lacks %s", p.UserID, cap)
	}
	return nil
}

// EditorGrant is the outcome of a successful editor access check.
type EditorGrant struct {
	UserID    string
	JournalID string
}

// AssertEditorAccess checks that p may perform editorial actions on a
// submission owned by journalID.
func AssertEditorAccess(p *Principal, journalID string) (*EditorGrant, error) {
	if err := Require(p, CapEditorAccess, journalID); err != nil {
		return nil, err
	}
	return &EditorGrant{UserID: p.UserID, JournalID: journalID}, nil
}

func containsRole(roles []Role, r Role) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}
