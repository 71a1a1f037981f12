// Package workflow holds the moderation state machines as data.
//
// A Policy answers one question: which source states may move to a given
// target. Repositories use the answer as a conditional UPDATE, so the check
// and the write cannot interleave with another operator's change.
package workflow

import (
	"fmt"

	"sangrachna/internal/config"
	"sangrachna/internal/models"
)

// Policy is a transition table for content and loan requests.
type Policy struct {
	name    string
	content map[models.ContentStatus][]models.ContentStatus
	loan    map[models.LoanStatus][]models.LoanStatus
}

var (
	allContent = []models.ContentStatus{
		models.ContentStatusPending,
		models.ContentStatusApproved,
		models.ContentStatusRejected,
	}
	allLoan = []models.LoanStatus{
		models.LoanStatusPending,
		models.LoanStatusApproved,
		models.LoanStatusRejected,
		models.LoanStatusReturned,
	}
	onlyPendingContent = []models.ContentStatus{models.ContentStatusPending}
	onlyPendingLoan    = []models.LoanStatus{models.LoanStatusPending}
	onlyApprovedLoan   = []models.LoanStatus{models.LoanStatusApproved}
)

// Permissive lets operators re-target any record to approved or rejected.
// Returned is still reachable only from approved.
func Permissive() *Policy {
	return &Policy{
		name: config.PolicyPermissive,
		content: map[models.ContentStatus][]models.ContentStatus{
			models.ContentStatusApproved: allContent,
			models.ContentStatusRejected: allContent,
		},
		loan: map[models.LoanStatus][]models.LoanStatus{
			models.LoanStatusApproved: allLoan,
			models.LoanStatusRejected: allLoan,
			models.LoanStatusReturned: onlyApprovedLoan,
		},
	}
}

// Strict only decides pending records; approved loans may still be returned.
func Strict() *Policy {
	return &Policy{
		name: config.PolicyStrict,
		content: map[models.ContentStatus][]models.ContentStatus{
			models.ContentStatusApproved: onlyPendingContent,
			models.ContentStatusRejected: onlyPendingContent,
		},
		loan: map[models.LoanStatus][]models.LoanStatus{
			models.LoanStatusApproved: onlyPendingLoan,
			models.LoanStatusRejected: onlyPendingLoan,
			models.LoanStatusReturned: onlyApprovedLoan,
		},
	}
}

// ByName returns the policy configured by MODERATION_POLICY.
func ByName(name string) (*Policy, error) {
	switch name {
	case config.PolicyPermissive, "":
		return Permissive(), nil
	case config.PolicyStrict:
		return Strict(), nil
	default:
		return nil, fmt.Errorf("unknown moderation policy %q", name)
	}
}

// Name returns the policy's configuration name.
func (p *Policy) Name() string { return p.name }

// ContentSources lists the states a poem or pendown post may leave to reach
// target. A nil result means target is never a valid transition target.
func (p *Policy) ContentSources(target models.ContentStatus) []models.ContentStatus {
	return p.content[target]
}

// LoanSources lists the states a loan request may leave to reach target.
func (p *Policy) LoanSources(target models.LoanStatus) []models.LoanStatus {
	return p.loan[target]
}

// AllowsContent reports whether from -> to is permitted.
func (p *Policy) AllowsContent(from, to models.ContentStatus) bool {
	for _, s := range p.content[to] {
		if s == from {
			return true
		}
	}
	return false
}

// AllowsLoan reports whether from -> to is permitted.
func (p *Policy) AllowsLoan(from, to models.LoanStatus) bool {
	for _, s := range p.loan[to] {
		if s == from {
			return true
		}
	}
	return false
}
