package sources

import (
	"context"

	"threepole/lib/dto"
)

type ActivityDefinitionFetcher interface {
	GetActivityDefinition(ctx context.Context, activityHash uint32) (dto.ActivityInfo, error)
}

// ActivityInfoSource caches activity definitions per activity hash.
type ActivityInfoSource struct {
	*Source[uint32, dto.ActivityInfo]
}

func NewActivityInfoSource(client ActivityDefinitionFetcher) *ActivityInfoSource {
	return &ActivityInfoSource{
		Source: New[uint32, dto.ActivityInfo]("activity_info", client.GetActivityDefinition, dto.ActivityInfo.Clone),
	}
}
