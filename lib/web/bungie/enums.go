package bungie

const (
	ModeRaid    = 4
	ModeAllPvE  = 7
	ModeDungeon = 82
)

// Profile components
const (
	ComponentProfiles            = 100
	ComponentCharacterActivities = 204
)

// HistoryPageSize is the number of activities requested per history page
const HistoryPageSize = 25

// Bungie membership type constants
// Reference: BungieMembershipType enum
const (
	MembershipTypeXbox  = 1
	MembershipTypePSN   = 2
	MembershipTypeSteam = 3
	MembershipTypeEpic  = 6
)
