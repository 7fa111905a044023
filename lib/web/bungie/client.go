package bungie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"threepole/lib/dto"
	"threepole/lib/monitoring/bungie_metrics"
	"threepole/lib/utils/logging"
	"threepole/lib/utils/network"
	"threepole/lib/utils/retry"

	"github.com/paulbellamy/ratecounter"
	"golang.org/x/time/rate"
)

type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	// Limiter paces outgoing requests. Defaults to 20 requests per second.
	Limiter *rate.Limiter
}

// Client is a stateless Bungie API client. It is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	limiter     *rate.Limiter
	requestRate *ratecounter.RateCounter
	logger      logging.Logger
}

func NewClient(config Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}
	limiter := config.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(time.Second/20), 20)
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimSuffix(config.BaseURL, "/"),
		apiKey:      config.APIKey,
		limiter:     limiter,
		requestRate: ratecounter.NewRateCounter(time.Minute),
		logger:      logging.NewLogger("BUNGIE_CLIENT"),
	}
}

// RequestsPerMinute is the number of requests sent during the last minute.
func (c *Client) RequestsPerMinute() int64 {
	return c.requestRate.Rate()
}

func get[T any](ctx context.Context, c *Client, endpoint string, url string) (T, error) {
	return request[T](ctx, c, endpoint, http.MethodGet, url, nil)
}

func post[T any](ctx context.Context, c *Client, endpoint string, url string, body any) (T, error) {
	return request[T](ctx, c, endpoint, http.MethodPost, url, body)
}

func request[T any](ctx context.Context, c *Client, endpoint string, method string, url string, body any) (T, error) {
	var zero T
	start := time.Now()

	raw, statusCode, err := c.send(ctx, endpoint, method, url, body)
	bungie_metrics.RequestDuration.WithLabelValues(endpoint).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		c.recordOutcome(endpoint, err)
		return zero, err
	}

	result, err := decodeResponse[T](raw, statusCode)
	c.recordOutcome(endpoint, err)
	if err != nil {
		return zero, err
	}
	return result, nil
}

func (c *Client) send(ctx context.Context, endpoint string, method string, url string, body any) ([]byte, int, error) {
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, -1, &ResponseError{Kind: KindNetwork, Err: err}
	}
	bungie_metrics.RateLimiterWaitTime.Observe(float64(time.Since(waitStart).Milliseconds()))

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, -1, fmt.Errorf("encode %s request body: %w", endpoint, err)
		}
	}

	type httpResult struct {
		body       []byte
		statusCode int
	}

	config := network.TransientNetworkErrorRetryConfig(c.logger, map[string]any{
		logging.ENDPOINT: endpoint,
	})
	result, err := retry.WithRetryForResult(ctx, config, func(attempt int) (httpResult, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return httpResult{}, err
		}
		req.Header.Set("X-API-Key", c.apiKey)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		c.requestRate.Incr(1)
		bungie_metrics.RequestsPerMinute.Set(float64(c.RequestsPerMinute()))
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return httpResult{}, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return httpResult{}, err
		}
		return httpResult{body: data, statusCode: resp.StatusCode}, nil
	})
	if err != nil {
		return nil, -1, &ResponseError{Kind: KindNetwork, Err: err}
	}

	c.logger.Debug("BUNGIE_REQUEST", map[string]any{
		logging.ENDPOINT:    endpoint,
		logging.METHOD:      method,
		logging.STATUS_CODE: result.statusCode,
		logging.RATE:        c.RequestsPerMinute(),
	})
	return result.body, result.statusCode, nil
}

func (c *Client) recordOutcome(endpoint string, err error) {
	outcome := "success"
	if err != nil {
		outcome = errorKind(err).String()
		if IsBungieError(err, DestinyThrottledByGameServer) || IsBungieError(err, ThrottleLimitExceeded) {
			c.logger.Warn("BUNGIE_THROTTLED", err, map[string]any{
				logging.ENDPOINT: endpoint,
			})
		}
	}
	bungie_metrics.RequestCount.WithLabelValues(endpoint, outcome).Inc()
}

func decodeResponse[T any](body []byte, statusCode int) (T, error) {
	var zero T

	var envelope envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return zero, &ResponseError{Kind: KindDeserialize, StatusCode: statusCode, Err: err}
	}

	if envelope.ErrorCode != Success {
		return zero, &ResponseError{
			Kind:            KindBungie,
			ErrorCode:       envelope.ErrorCode,
			ErrorStatus:     envelope.ErrorStatus,
			Message:         envelope.Message,
			ThrottleSeconds: envelope.ThrottleSeconds,
		}
	}

	trimmed := bytes.TrimSpace(envelope.Response)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return zero, &ResponseError{Kind: KindResponseMissing}
	}

	var data T
	if err := json.Unmarshal(trimmed, &data); err != nil {
		return zero, &ResponseError{Kind: KindDeserialize, StatusCode: statusCode, Err: err}
	}
	return data, nil
}

func joinComponents(components []int) string {
	parts := make([]string, len(components))
	for i, component := range components {
		parts[i] = strconv.Itoa(component)
	}
	return strings.Join(parts, ",")
}

func (c *Client) SearchDestinyPlayerByBungieName(ctx context.Context, displayName string, displayNameCode int) ([]dto.PlayerSearchResult, error) {
	url := fmt.Sprintf("%s/Platform/Destiny2/SearchDestinyPlayerByBungieName/All/", c.baseURL)
	cards, err := post[[]UserInfoCard](ctx, c, "SearchDestinyPlayerByBungieName", url, searchByBungieNameRequest{
		DisplayName:     displayName,
		DisplayNameCode: displayNameCode,
	})
	if err != nil {
		return nil, err
	}

	results := make([]dto.PlayerSearchResult, 0, len(cards))
	for _, card := range cards {
		results = append(results, dto.PlayerSearchResult{
			Profile: dto.Profile{
				MembershipType: card.MembershipType,
				MembershipId:   card.MembershipId,
			},
			DisplayName: card.BungieGlobalDisplayName,
			DisplayTag:  card.BungieGlobalDisplayNameCode,
			IconPath:    card.IconPath,
		})
	}
	return results, nil
}

func (c *Client) GetProfile(ctx context.Context, membershipType int, membershipId string, components []int) (DestinyProfileResponse, error) {
	url := fmt.Sprintf("%s/Platform/Destiny2/%d/Profile/%s/?components=%s", c.baseURL, membershipType, membershipId, joinComponents(components))
	return get[DestinyProfileResponse](ctx, c, "GetProfile", url)
}

// GetProfileInfo fetches the profile summary component.
func (c *Client) GetProfileInfo(ctx context.Context, profile dto.Profile) (dto.ProfileInfo, error) {
	res, err := c.GetProfile(ctx, profile.MembershipType, profile.MembershipId, []int{ComponentProfiles})
	if err != nil {
		return dto.ProfileInfo{}, err
	}
	if res.Profile == nil || res.Profile.Data == nil {
		return dto.ProfileInfo{}, &ResponseError{Kind: KindResponseMissing}
	}

	data := res.Profile.Data
	characterIds := data.CharacterIds
	if characterIds == nil {
		characterIds = []string{}
	}
	return dto.ProfileInfo{
		Privacy:      res.Profile.Privacy,
		DisplayName:  data.UserInfo.BungieGlobalDisplayName,
		DisplayTag:   data.UserInfo.BungieGlobalDisplayNameCode,
		CharacterIds: characterIds,
	}, nil
}

// GetCharacterActivities fetches the live character activity component.
// Activities is nil when the data is privacy gated.
func (c *Client) GetCharacterActivities(ctx context.Context, profile dto.Profile) (dto.CharacterActivities, error) {
	res, err := c.GetProfile(ctx, profile.MembershipType, profile.MembershipId, []int{ComponentCharacterActivities})
	if err != nil {
		return dto.CharacterActivities{}, err
	}
	if res.CharacterActivities == nil {
		return dto.CharacterActivities{}, nil
	}

	result := dto.CharacterActivities{Privacy: res.CharacterActivities.Privacy}
	if res.CharacterActivities.Data == nil {
		return result, nil
	}

	result.Activities = make([]dto.LatestCharacterActivity, 0, len(res.CharacterActivities.Data))
	for characterId, activity := range res.CharacterActivities.Data {
		result.Activities = append(result.Activities, dto.LatestCharacterActivity{
			CharacterId:         characterId,
			DateActivityStarted: activity.DateActivityStarted,
			CurrentActivityHash: activity.CurrentActivityHash,
		})
	}
	return result, nil
}

// GetActivityHistoryPage fetches one page of PvE activity history for a character,
// newest first. An empty result means the end of the history.
func (c *Client) GetActivityHistoryPage(ctx context.Context, profile dto.Profile, characterId string, page int) ([]dto.CompletedActivity, error) {
	url := fmt.Sprintf("%s/Platform/Destiny2/%d/Account/%s/Character/%s/Stats/Activities/?mode=%d&count=%d&page=%d",
		c.baseURL, profile.MembershipType, profile.MembershipId, characterId, ModeAllPvE, HistoryPageSize, page)
	res, err := get[DestinyActivityHistoryResults](ctx, c, "GetActivityHistory", url)
	if err != nil {
		return nil, err
	}

	activities := make([]dto.CompletedActivity, 0, len(res.Activities))
	for _, group := range res.Activities {
		activities = append(activities, completedActivityFromGroup(group))
	}
	return activities, nil
}

func completedActivityFromGroup(group DestinyHistoricalStatsPeriodGroup) dto.CompletedActivity {
	completed := group.Values["completed"].Basic.Value == 1 && group.Values["completionReason"].Basic.Value == 0
	duration := group.Values["activityDurationSeconds"].Basic
	return dto.CompletedActivity{
		Period:                  group.Period,
		InstanceId:              group.ActivityDetails.InstanceId,
		ActivityHash:            group.ActivityDetails.ReferenceId,
		Modes:                   group.ActivityDetails.Modes,
		Completed:               completed,
		ActivityDuration:        duration.DisplayValue,
		ActivityDurationSeconds: int(duration.Value),
	}
}

func (c *Client) GetActivityDefinition(ctx context.Context, activityHash uint32) (dto.ActivityInfo, error) {
	url := fmt.Sprintf("%s/Platform/Destiny2/Manifest/DestinyActivityDefinition/%d/", c.baseURL, activityHash)
	def, err := get[DestinyActivityDefinition](ctx, c, "GetActivityDefinition", url)
	if err != nil {
		return dto.ActivityInfo{}, err
	}

	modes := def.ActivityModeTypes
	if modes == nil {
		modes = []int{}
	}
	return dto.ActivityInfo{
		Name:            def.DisplayProperties.Name,
		ActivityModes:   modes,
		BackgroundImage: def.PgcrImage,
	}, nil
}
