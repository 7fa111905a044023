package sources

import (
	"context"
	"slices"

	"threepole/lib/dto"
)

type ProfileInfoFetcher interface {
	GetProfileInfo(ctx context.Context, profile dto.Profile) (dto.ProfileInfo, error)
}

// ProfileInfoSource caches profile summaries per profile.
type ProfileInfoSource struct {
	*Source[dto.Profile, dto.ProfileInfo]
}

func NewProfileInfoSource(client ProfileInfoFetcher) *ProfileInfoSource {
	return &ProfileInfoSource{
		Source: New[dto.Profile, dto.ProfileInfo]("profile_info", client.GetProfileInfo, dto.ProfileInfo.Clone),
	}
}

// SetCharacters replaces the cached character list for profile, if cached.
func (s *ProfileInfoSource) SetCharacters(profile dto.Profile, characterIds []string) bool {
	return s.Update(profile, func(info dto.ProfileInfo) dto.ProfileInfo {
		info.CharacterIds = slices.Clone(characterIds)
		return info
	})
}
