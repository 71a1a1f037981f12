package models

// ContentStatus defines lifecycle states for moderated submissions.
type ContentStatus string

const (
	// ContentStatusPending indicates the submission is awaiting review.
	ContentStatusPending ContentStatus = "pending"
	// ContentStatusApproved indicates the submission is publicly visible.
	ContentStatusApproved ContentStatus = "approved"
	// ContentStatusRejected indicates the submission was declined.
	ContentStatusRejected ContentStatus = "rejected"
)

// Valid reports whether s is a known content status.
func (s ContentStatus) Valid() bool {
	switch s {
	case ContentStatusPending, ContentStatusApproved, ContentStatusRejected:
		return true
	}
	return false
}

// LoanStatus defines lifecycle states for book loan requests.
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "pending"
	LoanStatusApproved LoanStatus = "approved"
	LoanStatusRejected LoanStatus = "rejected"
	// LoanStatusReturned is reachable only from approved.
	LoanStatusReturned LoanStatus = "returned"
)

// Valid reports whether s is a known loan status.
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusPending, LoanStatusApproved, LoanStatusRejected, LoanStatusReturned:
		return true
	}
	return false
}

// ContentKind names the moderated tables.
type ContentKind string

const (
	ContentKindPoem    ContentKind = "poem"
	ContentKindPendown ContentKind = "pendown"
)

// Valid reports whether k names a moderated table.
func (k ContentKind) Valid() bool {
	return k == ContentKindPoem || k == ContentKindPendown
}
