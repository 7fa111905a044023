package dto

import (
	"fmt"
	"slices"
)

// Profile identifies a Destiny account. It is comparable and used as a cache key.
type Profile struct {
	MembershipType int    `json:"accountPlatform" yaml:"account_platform"`
	MembershipId   string `json:"accountId" yaml:"account_id"`
}

func (p Profile) String() string {
	return fmt.Sprintf("%d/%s", p.MembershipType, p.MembershipId)
}

type ProfileInfo struct {
	Privacy      int      `json:"privacy"`
	DisplayName  string   `json:"displayName"`
	DisplayTag   int      `json:"displayTag"`
	CharacterIds []string `json:"characterIds"`
}

func (p ProfileInfo) Clone() ProfileInfo {
	p.CharacterIds = slices.Clone(p.CharacterIds)
	return p
}

// PlayerSearchResult is one membership returned by a Bungie name search
type PlayerSearchResult struct {
	Profile
	DisplayName string `json:"displayName"`
	DisplayTag  int    `json:"displayTag"`
	IconPath    string `json:"iconPath"`
}
