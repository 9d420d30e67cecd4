package authz

import "github.com/mutuo-app/mutuo/pkg/kernel"

// Position records where a principal sits in the organizational tree,
// independent of what they administer. A unit admin's scope is {UNIT, U1}
// while their position also carries the forum and area of the branch
// containing U1.
type Position struct {
	ForumID  kernel.ForumID  `json:"forum_id,omitempty"`
	AreaID   kernel.AreaID   `json:"area_id,omitempty"`
	UnitID   kernel.UnitID   `json:"unit_id,omitempty"`
	AgentID  kernel.AgentID  `json:"agent_id,omitempty"`
	MemberID kernel.MemberID `json:"member_id,omitempty"`
}

// ParentHint is authoritative parent linkage for the entity under check,
// supplied by the backend. Only the field naming the entity's immediate
// parent is consulted: ForumID for an area, AreaID for a unit, UnitID for
// an agent.
type ParentHint struct {
	ForumID kernel.ForumID `json:"forum_id,omitempty"`
	AreaID  kernel.AreaID  `json:"area_id,omitempty"`
	UnitID  kernel.UnitID  `json:"unit_id,omitempty"`
}
