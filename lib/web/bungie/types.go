package bungie

import (
	"encoding/json"
	"time"
)

// envelope is the common wrapper around every Bungie response. Response is
// kept raw so an absent or null payload can be told apart from an empty one.
type envelope struct {
	ErrorCode       int             `json:"ErrorCode"`
	Message         string          `json:"Message"`
	ErrorStatus     string          `json:"ErrorStatus"`
	ThrottleSeconds int             `json:"ThrottleSeconds"`
	Response        json.RawMessage `json:"Response"`
}

type searchByBungieNameRequest struct {
	DisplayName     string `json:"displayName"`
	DisplayNameCode int    `json:"displayNameCode"`
}

type UserInfoCard struct {
	IconPath                    string `json:"iconPath"`
	MembershipType              int    `json:"membershipType"`
	MembershipId                string `json:"membershipId"`
	BungieGlobalDisplayName     string `json:"bungieGlobalDisplayName"`
	BungieGlobalDisplayNameCode int    `json:"bungieGlobalDisplayNameCode"`
}

type SingleComponentResponse[T any] struct {
	Data    *T  `json:"data"`
	Privacy int `json:"privacy"`
}

type DictionaryComponentResponse[T any] struct {
	Data    map[string]T `json:"data"`
	Privacy int          `json:"privacy"`
}

type DestinyProfileResponse struct {
	Profile             *SingleComponentResponse[DestinyProfileComponent]                 `json:"profile"`
	CharacterActivities *DictionaryComponentResponse[DestinyCharacterActivitiesComponent] `json:"characterActivities"`
}

type DestinyProfileComponent struct {
	UserInfo     UserInfoCard `json:"userInfo"`
	CharacterIds []string     `json:"characterIds"`
}

type DestinyCharacterActivitiesComponent struct {
	DateActivityStarted time.Time `json:"dateActivityStarted"`
	CurrentActivityHash uint32    `json:"currentActivityHash"`
}

type DestinyActivityHistoryResults struct {
	Activities []DestinyHistoricalStatsPeriodGroup `json:"activities"`
}

type DestinyHistoricalStatsPeriodGroup struct {
	Period          time.Time                              `json:"period"`
	ActivityDetails DestinyHistoricalStatsActivity         `json:"activityDetails"`
	Values          map[string]DestinyHistoricalStatsValue `json:"values"`
}

type DestinyHistoricalStatsActivity struct {
	InstanceId  string `json:"instanceId"`
	ReferenceId uint32 `json:"referenceId"`
	Mode        int    `json:"mode"`
	Modes       []int  `json:"modes"`
}

type DestinyHistoricalStatsValue struct {
	Basic DestinyHistoricalStatsValuePair `json:"basic"`
}

type DestinyHistoricalStatsValuePair struct {
	Value        float64 `json:"value"`
	DisplayValue string  `json:"displayValue"`
}

type DestinyDisplayPropertiesDefinition struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type DestinyActivityDefinition struct {
	DisplayProperties DestinyDisplayPropertiesDefinition `json:"displayProperties"`
	ActivityModeTypes []int                              `json:"activityModeTypes"`
	PgcrImage         string                             `json:"pgcrImage"`
}
