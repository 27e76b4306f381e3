package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fadedpez/trackbattle/internal/commands"
	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/internal/types"
	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/fadedpez/trackbattle/pkg/metrics"
	mock_battle_service "github.com/fadedpez/trackbattle/pkg/services/battle/mock"
	mock_voting "github.com/fadedpez/trackbattle/pkg/services/voting/mock"
	mock_wallet_service "github.com/fadedpez/trackbattle/pkg/services/wallet/mock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ServerTestSuite struct {
	suite.Suite
	auth    *Authenticator
	battles *mock_battle_service.MockBattleService
	wallet  *mock_wallet_service.MockWalletService
	metrics *metrics.Metrics
	healthy error
	router  *gin.Engine
}

func TestServerSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.auth = NewAuthenticator("test-secret")
	s.battles = mock_battle_service.NewMockBattleService(ctrl)
	s.wallet = mock_wallet_service.NewMockWalletService(ctrl)
	s.metrics = metrics.New()
	s.healthy = nil

	table := commands.NewTable(commands.Deps{
		Battles:    s.battles,
		Voting:     mock_voting.NewMockVotingService(ctrl),
		Wallet:     s.wallet,
		Categories: []string{"Rock"},
		Tiers:      []int64{5},
		Metrics:    s.metrics,
		Logger:     logging.Discard(),
	})
	s.router = NewServer(Options{
		Table:   table,
		Auth:    s.auth,
		Health:  func(context.Context) error { return s.healthy },
		Metrics: s.metrics,
		Logger:  logging.Discard(),
	}).Router()
}

func (s *ServerTestSuite) token(role string) string {
	tok, err := s.auth.GenerateToken("ops", role, time.Hour)
	s.Require().NoError(err)
	return tok
}

func (s *ServerTestSuite) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ServerTestSuite) TestHealthz() {
	w := s.do(http.MethodGet, "/healthz", "", "")
	s.Equal(http.StatusOK, w.Code)

	s.healthy = errors.New("database is locked")
	w = s.do(http.MethodGet, "/healthz", "", "")
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *ServerTestSuite) TestMetrics() {
	s.metrics.RecordVote("cast")

	w := s.do(http.MethodGet, "/metrics", "", "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "trackbattle_votes_total")
}

func (s *ServerTestSuite) TestAdminRoutesRequireToken() {
	w := s.do(http.MethodPost, "/admin/commands/list-open-battles", "", "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/admin/commands/list-open-battles", "not-a-jwt", "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/admin/commands/list-open-battles", s.token("viewer"), "")
	s.Equal(http.StatusForbidden, w.Code)

	other := NewAuthenticator("other-secret")
	forged, err := other.GenerateToken("ops", RoleAdmin, time.Hour)
	s.Require().NoError(err)
	w = s.do(http.MethodPost, "/admin/commands/list-open-battles", forged, "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *ServerTestSuite) TestExpiredToken() {
	s.auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok := s.token(RoleAdmin)
	s.auth.now = time.Now

	w := s.do(http.MethodPost, "/admin/commands/list-open-battles", tok, "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *ServerTestSuite) TestRunCommand() {
	s.battles.EXPECT().ListOpenBattles(gomock.Any()).Return([]*entities.Battle{}, nil)

	w := s.do(http.MethodPost, "/admin/commands/list-open-battles", s.token(RoleAdmin), "")
	s.Equal(http.StatusOK, w.Code)

	var resp commands.Response
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("No open battles.", resp.Message)
}

func (s *ServerTestSuite) TestRunCommandWithArgs() {
	s.wallet.EXPECT().
		Credit(gomock.Any(), "artist-1", int64(50), entities.TransactionTypeAdminCredit, "admin:ops", gomock.Any()).
		Return(int64(150), nil)

	w := s.do(http.MethodPost, "/admin/commands/add-balance", s.token(RoleAdmin), `{"args":{"user":"artist-1","amount":50}}`)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "New balance: 150.")
}

func (s *ServerTestSuite) TestRunCommandErrors() {
	tok := s.token(RoleAdmin)

	w := s.do(http.MethodPost, "/admin/commands/teleport", tok, "")
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/admin/commands/add-balance", tok, `{"args":{"user":"artist-1"}}`)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/admin/commands/add-balance", tok, `{not json`)
	s.Equal(http.StatusBadRequest, w.Code)

	s.battles.EXPECT().ListOpenBattles(gomock.Any()).Return(nil, errors.New("disk I/O error"))
	w = s.do(http.MethodPost, "/admin/commands/list-open-battles", tok, "")
	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), "disk I/O error")
}

func (s *ServerTestSuite) TestListCommands() {
	w := s.do(http.MethodGet, "/admin/commands", s.token(RoleAdmin), "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"name":"add-balance"`)
}

func TestStatusFor(t *testing.T) {
	tests := map[types.ErrorCode]int{
		types.ErrInsufficientFunds:   http.StatusPaymentRequired,
		types.ErrRateLimited:         http.StatusTooManyRequests,
		types.ErrNotFound:            http.StatusNotFound,
		types.ErrInvalidPhase:        http.StatusConflict,
		types.ErrAlreadyVoted:        http.StatusConflict,
		types.ErrInvalidArgument:     http.StatusBadRequest,
		types.ErrPermissionDenied:    http.StatusForbidden,
		types.ErrDuplicateOpenBattle: http.StatusConflict,
		types.ErrAdapterFailure:      http.StatusBadGateway,
		types.ErrInternalError:       http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, StatusFor(code), code)
	}
}
