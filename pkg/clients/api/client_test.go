package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/linetrack/internal/domain/models"
)

const testHost = "http://backend.test"

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

type failingToken struct{}

func (failingToken) Token(context.Context) (string, error) { return "", errors.New("store closed") }

func newMockedClient(t *testing.T, tokens TokenSource) *Client {
	t.Helper()

	c := NewClient(testHost+"/api", time.Second, tokens)
	gock.InterceptClient(c.HTTPClient())
	t.Cleanup(func() {
		gock.RestoreClient(c.HTTPClient())
		gock.OffAll()
	})
	return c
}

func TestGetProductionLinesUnwrapsEnvelope(t *testing.T) {
	c := newMockedClient(t, staticToken("tok-1"))

	gock.New(testHost).
		Get("/api/production/lines").
		MatchHeader("Authorization", "^Bearer tok-1$").
		Reply(http.StatusOK).
		JSON(map[string]any{"data": []map[string]any{
			{"id": 7, "name": "Line 7", "capacity": 90, "isActive": true},
		}})

	lines, err := c.GetProductionLines(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, models.ProductionLine{ID: 7, Name: "Line 7", Capacity: 90, IsActive: true}, lines[0])
	assert.True(t, gock.IsDone())
}

func TestMissingDataYieldsEmptyList(t *testing.T) {
	c := newMockedClient(t, nil)

	gock.New(testHost).
		Get("/api/buyers").
		Reply(http.StatusOK).
		JSON(map[string]any{})

	buyers, err := c.GetBuyers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, buyers)
	assert.Empty(t, buyers)
}

func TestAnonymousRequestWhenNoToken(t *testing.T) {
	for name, tokens := range map[string]TokenSource{
		"nil source":    nil,
		"empty token":   staticToken(""),
		"source failed": failingToken{},
	} {
		t.Run(name, func(t *testing.T) {
			c := newMockedClient(t, tokens)

			gock.New(testHost).
				Get("/api/styles").
				MatchParam("buyerId", "^2$").
				AddMatcher(func(req *http.Request, _ *gock.Request) (bool, error) {
					return req.Header.Get("Authorization") == "", nil
				}).
				Reply(http.StatusOK).
				JSON(map[string]any{"data": []map[string]any{{"id": 3, "buyerId": 2}}})

			styles, err := c.GetStyles(context.Background(), 2)
			require.NoError(t, err)
			require.Len(t, styles, 1)
			assert.Equal(t, 2, styles[0].BuyerID)
		})
	}
}

func TestSubmitHourlyProductionStampsEntryTime(t *testing.T) {
	c := newMockedClient(t, staticToken("tok"))
	c.now = func() time.Time { return time.Date(2025, 1, 21, 9, 30, 0, 0, time.UTC) }

	gock.New(testHost).
		Post("/api/production/hourly").
		MatchType("json").
		BodyString(`"entryTime":"2025-01-21T09:30:00Z"`).
		Reply(http.StatusCreated).
		JSON(map[string]any{"data": map[string]any{
			"id": 42, "lineSetupId": 1, "hourSlot": "9-10", "targetQuantity": 100, "actualQuantity": 90,
			"entryTime": "2025-01-21T09:30:00Z",
		}})

	got, err := c.SubmitHourlyProduction(context.Background(), models.HourlyEntry{
		LineSetupID: 1, HourSlot: "9-10", TargetQuantity: 100, ActualQuantity: 90,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got.ID)
	assert.Equal(t, "9-10", got.HourSlot)
	assert.Equal(t, 90, got.ActualQuantity)
}

func TestAPIErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		reply   func(*gock.Response)
		message string
	}{
		{
			name:    "json message",
			status:  http.StatusBadRequest,
			reply:   func(r *gock.Response) { r.JSON(map[string]string{"message": "line is inactive"}) },
			message: "line is inactive",
		},
		{
			name:    "plain text",
			status:  http.StatusInternalServerError,
			reply:   func(r *gock.Response) { r.BodyString("database down") },
			message: "database down",
		},
		{
			name:    "json string",
			status:  http.StatusConflict,
			reply:   func(r *gock.Response) { r.BodyString(`"line locked"`) },
			message: `"line locked"`,
		},
		{
			name:    "json array",
			status:  http.StatusBadRequest,
			reply:   func(r *gock.Response) { r.BodyString(`["hourSlot required"]`) },
			message: `["hourSlot required"]`,
		},
		{
			name:    "json without message",
			status:  http.StatusServiceUnavailable,
			reply:   func(r *gock.Response) { r.JSON(map[string]string{"error": "busy"}) },
			message: "request failed with status 503",
		},
		{
			name:    "empty body",
			status:  http.StatusUnauthorized,
			reply:   func(*gock.Response) {},
			message: "request failed with status 401",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newMockedClient(t, nil)
			tt.reply(gock.New(testHost).Get("/api/orders").Reply(tt.status))

			_, err := c.GetProductionOrders(context.Background(), "")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.False(t, IsNetworkError(err))
		})
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	c := newMockedClient(t, nil)

	gock.New(testHost).
		Get("/api/dashboard/metrics").
		ReplyError(errors.New("connection refused"))

	_, err := c.GetDashboardMetrics(context.Background(), "")
	require.Error(t, err)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.False(t, netErr.Timeout())
	assert.False(t, errors.Is(err, ErrRequestTimeout))
}

func TestTimeoutIsDistinguishable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api", 50*time.Millisecond, nil)

	_, err := c.GetProductionLines(context.Background())
	require.Error(t, err)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
	assert.ErrorIs(t, err, ErrRequestTimeout)
	assert.Contains(t, err.Error(), "timed out")
}

func TestResolveBaseURLPrefersReachableCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	unreachable := "http://127.0.0.1:1/api"

	got := ResolveBaseURL(context.Background(), []string{unreachable, srv.URL + "/api"}, 200*time.Millisecond, nil)
	assert.Equal(t, srv.URL+"/api", got)

	got = ResolveBaseURL(context.Background(), []string{srv.URL + "/api", unreachable}, 200*time.Millisecond, nil)
	assert.Equal(t, srv.URL+"/api", got)

	got = ResolveBaseURL(context.Background(), []string{unreachable, "http://127.0.0.1:2/api"}, 200*time.Millisecond, nil)
	assert.Equal(t, "http://127.0.0.1:2/api", got)

	assert.Empty(t, ResolveBaseURL(context.Background(), nil, time.Second, nil))
}

func TestRebaserSwitchesToReachableCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	unreachable := "http://127.0.0.1:1/api"
	c := NewClient(unreachable, 200*time.Millisecond, nil)
	require.Error(t, c.Health(context.Background()))

	r := NewRebaser(c, []string{unreachable, srv.URL + "/api"}, 200*time.Millisecond, nil)
	assert.True(t, r.Rebase(context.Background()))
	assert.Equal(t, srv.URL+"/api", c.BaseURL())
	assert.NoError(t, c.Health(context.Background()))

	assert.False(t, r.Rebase(context.Background()))
}
