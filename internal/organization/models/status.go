package models

// OrgStatus is the lifecycle state of an organization in the directory.
type OrgStatus string

const (
	// OrgStatusPending marks a freshly enrolled organization awaiting
	// authority approval. Pending organizations cannot issue degrees.
	OrgStatusPending OrgStatus = "pending"
	// OrgStatusActive marks an approved organization eligible to issue.
	OrgStatusActive OrgStatus = "active"
	// OrgStatusSuspended marks a temporarily barred organization. It can be
	// reinstated by the authority.
	OrgStatusSuspended OrgStatus = "suspended"
	// OrgStatusBlacklisted is terminal. A blacklisted organization never
	// regains submission rights; its previously issued records stay intact
	// unless explicitly revoked.
	OrgStatusBlacklisted OrgStatus = "blacklisted"
)

// legalTransitions enumerates the directory state machine. Absence means the
// transition is illegal.
var legalTransitions = map[OrgStatus][]OrgStatus{
	OrgStatusPending:     {OrgStatusActive, OrgStatusBlacklisted},
	OrgStatusActive:      {OrgStatusSuspended, OrgStatusBlacklisted},
	OrgStatusSuspended:   {OrgStatusActive, OrgStatusBlacklisted},
	OrgStatusBlacklisted: {},
}

// CanTransitionTo reports whether the directory state machine permits moving
// from s to target.
func (s OrgStatus) CanTransitionTo(target OrgStatus) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsValid reports whether s is one of the four directory states.
func (s OrgStatus) IsValid() bool {
	switch s {
	case OrgStatusPending, OrgStatusActive, OrgStatusSuspended, OrgStatusBlacklisted:
		return true
	}
	return false
}
