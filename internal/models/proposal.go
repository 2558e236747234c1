package models

import (
	"time"

	"spotmerge.hitchmap.org/internal/identity"
)

// ProposalStatus is the lifecycle state of a merge proposal.
type ProposalStatus string

const (
	StatusPending   ProposalStatus = "pending"
	StatusApproved  ProposalStatus = "approved"
	StatusRejected  ProposalStatus = "rejected"
	StatusCancelled ProposalStatus = "cancelled"
	StatusExecuted  ProposalStatus = "executed"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s ProposalStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusExecuted
}

// VoteChoice is a voter's position on a proposal.
type VoteChoice string

const (
	VoteApprove VoteChoice = "approve"
	VoteReject  VoteChoice = "reject"
)

// Valid reports whether c is one of the two known choices.
func (c VoteChoice) Valid() bool {
	return c == VoteApprove || c == VoteReject
}

// VoteSets holds the two disjoint sets of voter identities. A voter appears
// in at most one set; Cast moves the voter atomically (last vote wins).
type VoteSets struct {
	Approve map[identity.Identity]struct{} `json:"approve"`
	Reject  map[identity.Identity]struct{} `json:"reject"`
}

func NewVoteSets() VoteSets {
	return VoteSets{
		Approve: make(map[identity.Identity]struct{}),
		Reject:  make(map[identity.Identity]struct{}),
	}
}

// Cast removes voter from both sets, then inserts it into the chosen one.
func (v *VoteSets) Cast(voter identity.Identity, choice VoteChoice) {
	delete(v.Approve, voter)
	delete(v.Reject, voter)
	switch choice {
	case VoteApprove:
		v.Approve[voter] = struct{}{}
	case VoteReject:
		v.Reject[voter] = struct{}{}
	}
}

// Choice returns the voter's current choice, if any.
func (v *VoteSets) Choice(voter identity.Identity) (VoteChoice, bool) {
	if _, ok := v.Approve[voter]; ok {
		return VoteApprove, true
	}
	if _, ok := v.Reject[voter]; ok {
		return VoteReject, true
	}
	return "", false
}

// Counts returns the sizes of the two sets.
func (v *VoteSets) Counts() (approve, reject int) {
	return len(v.Approve), len(v.Reject)
}

// Clone returns an independent copy of both sets.
func (v *VoteSets) Clone() VoteSets {
	out := NewVoteSets()
	for id := range v.Approve {
		out.Approve[id] = struct{}{}
	}
	for id := range v.Reject {
		out.Reject[id] = struct{}{}
	}
	return out
}

// MergeProposal is the workflow entity representing an intent to consolidate
// SpotID2 into SpotID1. Proposals are never deleted; rejected and cancelled
// ones remain for audit.
type MergeProposal struct {
	ID             string            `json:"id"`
	SpotID1        string            `json:"spotId1"`
	SpotID2        string            `json:"spotId2"`
	PairKey        string            `json:"pairKey"`
	Status         ProposalStatus    `json:"status"`
	Proposer       identity.Identity `json:"proposer"`
	Reason         string            `json:"reason,omitempty"`
	DistanceMeters float64           `json:"distanceMeters"`
	NameSimilarity float64           `json:"nameSimilarity"`
	Confidence     int               `json:"confidence"`
	Votes          VoteSets          `json:"votes"`
	CreatedAt      time.Time         `json:"createdAt"`
	DecidedBy      identity.Identity `json:"decidedBy,omitempty"`
	DecidedAt      time.Time         `json:"decidedAt,omitempty"`
	DecisionReason string            `json:"decisionReason,omitempty"`
}

// NormalizedPairKey builds the order-independent key identifying the
// unordered spot pair. The duplicate-proposal check is keyed by it.
func NormalizedPairKey(id1, id2 string) string {
	if id2 < id1 {
		id1, id2 = id2, id1
	}
	return id1 + "|" + id2
}

// Clone returns a deep copy of the proposal.
func (p *MergeProposal) Clone() MergeProposal {
	out := *p
	out.Votes = p.Votes.Clone()
	return out
}

// ProposalStats counts proposals by status.
type ProposalStats struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Executed  int `json:"executed"`
	Rejected  int `json:"rejected"`
	Cancelled int `json:"cancelled"`
}
