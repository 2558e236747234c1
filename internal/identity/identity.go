package identity

import "strings"

// Identity is the opaque identifier of an acting user. Every public
// operation requires one; there is no anonymous fallback.
type Identity string

func (id Identity) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

func (id Identity) String() string {
	return string(id)
}

// Authorizer answers capability questions about identities. The real
// implementation lives outside this core; StaticAuthorizer covers the
// single-process deployment and tests.
type Authorizer interface {
	HasModeratorCapability(id Identity) bool
}

// StaticAuthorizer grants moderator capability to a fixed set of identities.
type StaticAuthorizer struct {
	moderators map[Identity]struct{}
}

func NewStaticAuthorizer(moderators []string) *StaticAuthorizer {
	set := make(map[Identity]struct{}, len(moderators))
	for _, m := range moderators {
		m = strings.TrimSpace(m)
		if m != "" {
			set[Identity(m)] = struct{}{}
		}
	}
	return &StaticAuthorizer{moderators: set}
}

func (a *StaticAuthorizer) HasModeratorCapability(id Identity) bool {
	_, ok := a.moderators[id]
	return ok
}
