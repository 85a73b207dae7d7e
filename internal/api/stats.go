package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/twobai/playerreport/internal/config"
	"github.com/twobai/playerreport/internal/constants"
	"github.com/twobai/playerreport/internal/domain"
	"github.com/twobai/playerreport/internal/metrics"
	"github.com/valyala/fasthttp"
)

const (
	endpointStats       = "stats"
	endpointChats       = "chats"
	endpointConnections = "connections"
)

// StatsClient talks to the 2b2t.vc player statistics API.
type StatsClient struct {
	baseURL string
	client  *fasthttp.Client
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewStatsClient(cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *StatsClient {
	return &StatsClient{
		baseURL: strings.TrimRight(cfg.StatsAPIBase, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		metrics: m,
		logger:  logger.With().Str("component", "stats_client").Logger(),
	}
}

// PlayerStats looks up aggregate counters for a player. It returns nil when
// the API has no record and also when the lookup fails; it never errors.
func (c *StatsClient) PlayerStats(ctx context.Context, playerName string) *domain.PlayerStats {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	q := url.Values{}
	q.Set("playerName", playerName)

	resp, err := doRequest[PlayerStatsResponse](ctx, c, endpointStats, c.baseURL+"/stats/player?"+q.Encode())
	if errors.Is(err, domain.ErrNoContent) {
		c.logger.Debug().Str("player", playerName).Msg("no stats recorded for player")
		return nil
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("player", playerName).Msg("failed to fetch player stats")
		return nil
	}

	return resp.toDomain()
}

// ChatSource pages through a player's chat history.
func (c *StatsClient) ChatSource() *ChatSource {
	return &ChatSource{client: c}
}

// ConnectionSource pages through a player's join/leave history.
func (c *StatsClient) ConnectionSource() *ConnectionSource {
	return &ConnectionSource{client: c}
}

type ChatSource struct {
	client *StatsClient
}

func (s *ChatSource) Kind() string { return endpointChats }

func (s *ChatSource) FetchPage(ctx context.Context, playerName string, page, pageSize int) ([]domain.ChatRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	resp, err := doRequest[ChatsResponse](ctx, s.client, endpointChats, s.client.pageURL("/chats", playerName, page, pageSize))
	if err != nil {
		return nil, err
	}

	records := make([]domain.ChatRecord, 0, len(resp.Chats))
	for _, ch := range resp.Chats {
		records = append(records, domain.ChatRecord{
			PlayerName: ch.PlayerName,
			UUID:       ch.UUID,
			Time:       ch.Time,
			Message:    ch.Chat,
		})
	}
	return records, nil
}

type ConnectionSource struct {
	client *StatsClient
}

func (s *ConnectionSource) Kind() string { return endpointConnections }

func (s *ConnectionSource) FetchPage(ctx context.Context, playerName string, page, pageSize int) ([]domain.ConnectionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	resp, err := doRequest[ConnectionsResponse](ctx, s.client, endpointConnections, s.client.pageURL("/connections", playerName, page, pageSize))
	if err != nil {
		return nil, err
	}

	records := make([]domain.ConnectionRecord, 0, len(resp.Connections))
	for _, conn := range resp.Connections {
		records = append(records, domain.ConnectionRecord{
			Time: conn.Time,
			Kind: domain.ConnectionKind(conn.Connection),
		})
	}
	return records, nil
}

func (c *StatsClient) pageURL(path, playerName string, page, pageSize int) string {
	q := url.Values{}
	q.Set("playerName", playerName)
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("page", strconv.Itoa(page))
	q.Set("sort", "desc")
	return c.baseURL + path + "?" + q.Encode()
}

func doRequest[T any](ctx context.Context, client *StatsClient, endpoint, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = client.client.DoDeadline(req, resp, deadline)
	} else {
		err = client.client.Do(req, resp)
	}
	if err != nil {
		client.metrics.IncUpstream(endpoint, metrics.OutcomeError)
		return nil, err
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK:
	case fasthttp.StatusNoContent:
		client.metrics.IncUpstream(endpoint, metrics.OutcomeNoContent)
		return nil, domain.ErrNoContent
	default:
		client.metrics.IncUpstream(endpoint, metrics.OutcomeError)
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		client.metrics.IncUpstream(endpoint, metrics.OutcomeError)
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	client.metrics.IncUpstream(endpoint, metrics.OutcomeOK)
	return &result, nil
}

type PlayerStatsResponse struct {
	JoinCount            int       `json:"joinCount"`
	LeaveCount           int       `json:"leaveCount"`
	DeathCount           int       `json:"deathCount"`
	KillCount            int       `json:"killCount"`
	FirstSeen            time.Time `json:"firstSeen"`
	LastSeen             time.Time `json:"lastSeen"`
	PlaytimeSeconds      int64     `json:"playtimeSeconds"`
	PlaytimeSecondsMonth int64     `json:"playtimeSecondsMonth"`
	ChatsCount           int       `json:"chatsCount"`
	Prio                 bool      `json:"prio"`
}

func (r *PlayerStatsResponse) toDomain() *domain.PlayerStats {
	return &domain.PlayerStats{
		JoinCount:            r.JoinCount,
		LeaveCount:           r.LeaveCount,
		DeathCount:           r.DeathCount,
		KillCount:            r.KillCount,
		ChatCount:            r.ChatsCount,
		PlaytimeSeconds:      r.PlaytimeSeconds,
		PlaytimeSecondsMonth: r.PlaytimeSecondsMonth,
		FirstSeen:            r.FirstSeen,
		LastSeen:             r.LastSeen,
		Prio:                 r.Prio,
	}
}

type ChatsResponse struct {
	Chats     []Chat `json:"chats"`
	Total     int    `json:"total"`
	PageCount int    `json:"pageCount"`
}

type Chat struct {
	PlayerName string    `json:"playerName"`
	UUID       string    `json:"uuid"`
	Time       time.Time `json:"time"`
	Chat       string    `json:"chat"`
}

type ConnectionsResponse struct {
	Connections []Connection `json:"connections"`
	Total       int          `json:"total"`
	PageCount   int          `json:"pageCount"`
}

type Connection struct {
	Time       time.Time `json:"time"`
	Connection string    `json:"connection"`
}
