// Package policy decides whether a principal may perform an action.
//
// Decisions happen in two steps, mirroring how a request is processed:
//
//  1. Check runs before anything is loaded. It only sees the principal and the
//     action, so it can reject anonymous writes without touching storage.
//  2. CheckObject runs after the target record has been loaded and compares
//     the principal with the record's owner.
//
// The author check is written once against the Owned capability; Post and
// Comment both implement it.
package policy

import (
	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/model"
)

// Action is one of the operations a resource handler exposes.
type Action string

const (
	List          Action = "list"
	Retrieve      Action = "retrieve"
	Create        Action = "create"
	Update        Action = "update"
	PartialUpdate Action = "partial_update"
	Delete        Action = "delete"
)

// Safe reports whether the action only reads.
func (a Action) Safe() bool {
	return a == List || a == Retrieve
}

// Owned is implemented by every resource that has a single owning user.
type Owned interface {
	OwnerID() int64
}

// Rule is a permission rule for one resource type.
type Rule interface {
	// Allow decides using only the principal and the action.
	Allow(p *model.Principal, a Action) bool
	// AllowObject decides for a specific, already loaded resource.
	AllowObject(p *model.Principal, a Action, obj Owned) bool
}

type authorOrReadOnly struct{}

func (authorOrReadOnly) Allow(p *model.Principal, a Action) bool {
	return a.Safe() || p.Authenticated()
}

func (authorOrReadOnly) AllowObject(p *model.Principal, a Action, obj Owned) bool {
	if a.Safe() {
		return true
	}
	return p.Authenticated() && obj != nil && obj.OwnerID() == p.UserID
}

type authenticated struct{}

func (authenticated) Allow(p *model.Principal, _ Action) bool {
	return p.Authenticated()
}

func (authenticated) AllowObject(p *model.Principal, _ Action, _ Owned) bool {
	return p.Authenticated()
}

type readOnly struct{}

func (readOnly) Allow(_ *model.Principal, a Action) bool { return a.Safe() }

func (readOnly) AllowObject(_ *model.Principal, a Action, _ Owned) bool { return a.Safe() }

var (
	// AuthorOrReadOnly lets anyone read and only the owner write. Anonymous
	// writes are refused before the object is looked at.
	AuthorOrReadOnly Rule = authorOrReadOnly{}

	// Authenticated requires a principal for every action.
	Authenticated Rule = authenticated{}

	// ReadOnly refuses every write, authenticated or not.
	ReadOnly Rule = readOnly{}
)

// CanAccess combines both steps for callers that already hold the resource.
// obj may be nil for collection-level actions.
func CanAccess(rule Rule, p *model.Principal, a Action, obj Owned) bool {
	if !rule.Allow(p, a) {
		return false
	}
	if obj == nil {
		return true
	}
	return rule.AllowObject(p, a, obj)
}

// Check returns nil when rule allows a without looking at a resource.
// Anonymous callers get an Unauthorized error, everyone else Forbidden.
func Check(rule Rule, p *model.Principal, a Action) error {
	if rule.Allow(p, a) {
		return nil
	}
	if !p.Authenticated() {
		return apperror.Unauthorized("authentication credentials were not provided")
	}
	return apperror.Forbidden("you do not have permission to perform this action")
}

// CheckObject returns nil when rule allows a on obj.
func CheckObject(rule Rule, p *model.Principal, a Action, obj Owned) error {
	if rule.AllowObject(p, a, obj) {
		return nil
	}
	if !p.Authenticated() {
		return apperror.Unauthorized("authentication credentials were not provided")
	}
	return apperror.Forbidden("you do not have permission to perform this action")
}
