package kernel

// Typed identifiers for every node kind of the organizational tree
// (Forum → Area → Unit → Agent → Member) plus the account identity.
// Keeping them as distinct types prevents a unit id from silently
// flowing into a query that expects an area id.

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

type ForumID string

func NewForumID(id string) ForumID { return ForumID(id) }
func (f ForumID) String() string   { return string(f) }
func (f ForumID) IsEmpty() bool    { return string(f) == "" }

type AreaID string

func NewAreaID(id string) AreaID { return AreaID(id) }
func (a AreaID) String() string  { return string(a) }
func (a AreaID) IsEmpty() bool   { return string(a) == "" }

type UnitID string

func NewUnitID(id string) UnitID { return UnitID(id) }
func (u UnitID) String() string  { return string(u) }
func (u UnitID) IsEmpty() bool   { return string(u) == "" }

type AgentID string

func NewAgentID(id string) AgentID { return AgentID(id) }
func (a AgentID) String() string   { return string(a) }
func (a AgentID) IsEmpty() bool    { return string(a) == "" }

type MemberID string

func NewMemberID(id string) MemberID { return MemberID(id) }
func (m MemberID) String() string    { return string(m) }
func (m MemberID) IsEmpty() bool     { return string(m) == "" }
