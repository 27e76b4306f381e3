package battle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/internal/types"
	"github.com/fadedpez/trackbattle/pkg/db"
	"github.com/fadedpez/trackbattle/pkg/entities"
	"github.com/fadedpez/trackbattle/pkg/lock"
	battleRepo "github.com/fadedpez/trackbattle/pkg/repositories/battle"
	walletRepo "github.com/fadedpez/trackbattle/pkg/repositories/wallet"
	"github.com/fadedpez/trackbattle/pkg/scheduler"
	"github.com/fadedpez/trackbattle/pkg/services/notify"
	mock_notify "github.com/fadedpez/trackbattle/pkg/services/notify/mock"
	"github.com/fadedpez/trackbattle/pkg/services/voting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type mockArchiver struct {
	mock.Mock
}

func (m *mockArchiver) ArchiveResult(ctx context.Context, battle *entities.Battle, result *entities.BattleResult) error {
	args := m.Called(ctx, battle, result)
	return args.Error(0)
}

type BattleServiceTestSuite struct {
	suite.Suite
	conn     *sql.DB
	ctx      context.Context
	clock    *scheduler.FakeClock
	repo     *battleRepo.SQLiteRepository
	wallets  *walletRepo.SQLiteRepository
	ctrl     *gomock.Controller
	notifier *mock_notify.MockNotifier
	archiver *mockArchiver
	service  *Service
	votes    *voting.Service
}

func TestBattleServiceSuite(t *testing.T) {
	suite.Run(t, new(BattleServiceTestSuite))
}

func (s *BattleServiceTestSuite) SetupTest() {
	conn, err := db.Open(filepath.Join(s.T().TempDir(), "battle.db"), logging.Discard())
	s.Require().NoError(err)
	s.conn = conn
	s.ctx = context.Background()
	s.clock = scheduler.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s.repo = battleRepo.NewSQLiteRepository(conn)
	s.wallets = walletRepo.NewSQLiteRepository(conn, s.clock.Now)

	s.ctrl = gomock.NewController(s.T())
	s.notifier = mock_notify.NewMockNotifier(s.ctrl)
	s.archiver = &mockArchiver{}

	locks := lock.NewKeyed[int64]()
	s.service = NewService(s.repo, Rules{
		Categories:     []string{"Rock", "Hip Hop", "Chill Lo-Fi"},
		Tiers:          []int64{5, 15, 25},
		VotingDuration: 24 * time.Hour,
		EntryCooldown:  24 * time.Hour,
		WinnerShare:    decimal.RequireFromString("0.70"),
	}, Options{
		Notifier: s.notifier,
		Archiver: s.archiver,
		Clock:    s.clock,
		Locks:    locks,
		Logger:   logging.Discard(),
	})
	s.votes = voting.NewService(s.repo, voting.Options{
		Locks:  locks,
		Now:    s.clock.Now,
		Logger: logging.Discard(),
	})
}

func (s *BattleServiceTestSuite) TearDownTest() {
	s.conn.Close()
}

func (s *BattleServiceTestSuite) fund(userID string, amount int64) {
	_, err := s.wallets.Credit(s.ctx, walletRepo.Entry{UserID: userID, Amount: amount, Type: entities.TransactionTypeAdminCredit})
	s.Require().NoError(err)
}

func (s *BattleServiceTestSuite) balance(userID string) int64 {
	user, err := s.wallets.GetUser(s.ctx, userID)
	s.Require().NoError(err)
	return user.Balance
}

func (s *BattleServiceTestSuite) admit(userID, category string, tier int64) *entities.Entrant {
	s.notifier.EXPECT().AnnounceEntry(gomock.Any(), gomock.Any()).Return(nil)
	s.fund(userID, tier)
	e, err := s.service.Admit(s.ctx, AdmitRequest{
		Category:      category,
		Tier:          tier,
		UserID:        userID,
		Username:      "user-" + userID,
		SubmissionRef: "https://tracks.example/" + userID,
	})
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
	return e
}

func (s *BattleServiceTestSuite) startVoting(category string, tier int64) (*entities.Battle, []*entities.Entrant) {
	s.notifier.EXPECT().AnnounceVotingStarted(gomock.Any(), gomock.Any()).DoAndReturn(postAll)
	b, entrants, err := s.service.StartVoting(s.ctx, Selector{Category: category, Tier: tier})
	s.Require().NoError(err)
	return b, entrants
}

// postAll answers AnnounceVotingStarted with one message per entrant
func postAll(_ context.Context, event notify.VotingStartedEvent) (map[int64]string, error) {
	refs := make(map[int64]string, len(event.Entrants))
	for _, e := range event.Entrants {
		refs[e.ID] = fmt.Sprintf("chan/%d", e.ID)
	}
	return refs, nil
}

func (s *BattleServiceTestSuite) vote(battleID int64, voterID string, number int) {
	_, err := s.votes.CastVote(s.ctx, battleID, voterID, voting.EntrantSelector{Number: number})
	s.Require().NoError(err)
}

func (s *BattleServiceTestSuite) poolTotal(category string, tier int64) *entities.PoolTotal {
	return s.service.poolTotal(s.ctx, category, tier)
}

func (s *BattleServiceTestSuite) TestAdmitInsufficientFunds() {
	s.fund("artist-1", 3)

	_, err := s.service.Admit(s.ctx, AdmitRequest{
		Category:      "Rock",
		Tier:          5,
		UserID:        "artist-1",
		SubmissionRef: "https://tracks.example/a",
	})

	s.True(types.IsBattleError(err, types.ErrInsufficientFunds))
	s.Equal(int64(3), s.balance("artist-1"))
	battles, err := s.service.ListOpenBattles(s.ctx)
	s.Require().NoError(err)
	s.Empty(battles)
	s.Equal(int64(0), s.poolTotal("Rock", 5).TotalAmount)
}

func (s *BattleServiceTestSuite) TestAdmitNormalizesCategory() {
	s.notifier.EXPECT().AnnounceEntry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event notify.EntryEvent) error {
			s.Equal("Hip Hop", event.Battle.Category)
			s.Equal(int64(15), event.PoolTotal)
			return nil
		})
	s.fund("artist-1", 15)

	e, err := s.service.Admit(s.ctx, AdmitRequest{
		Category:      "  HIP   hop ",
		Tier:          15,
		UserID:        "artist-1",
		SubmissionRef: "https://tracks.example/a",
	})

	s.Require().NoError(err)
	s.Equal(entities.PaymentStatusPaid, e.PaymentStatus)
	s.Equal(int64(0), s.balance("artist-1"))
}

func (s *BattleServiceTestSuite) TestAdmitValidation() {
	testCases := []struct {
		name string
		req  AdmitRequest
		code types.ErrorCode
	}{
		{name: "unknown category", req: AdmitRequest{Category: "Polka", Tier: 5, UserID: "u", SubmissionRef: "x"}, code: types.ErrInvalidArgument},
		{name: "unknown tier", req: AdmitRequest{Category: "Rock", Tier: 7, UserID: "u", SubmissionRef: "x"}, code: types.ErrInvalidArgument},
		{name: "missing track", req: AdmitRequest{Category: "Rock", Tier: 5, UserID: "u"}, code: types.ErrInvalidArgument},
		{name: "missing user", req: AdmitRequest{Category: "Rock", Tier: 5, SubmissionRef: "x"}, code: types.ErrInvalidArgument},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.service.Admit(s.ctx, tc.req)
			s.True(types.IsBattleError(err, tc.code), "got %v", err)
		})
	}
}

func (s *BattleServiceTestSuite) TestAdmitCooldown() {
	s.admit("artist-1", "Rock", 5)

	s.fund("artist-1", 5)
	_, err := s.service.Admit(s.ctx, AdmitRequest{Category: "Rock", Tier: 5, UserID: "artist-1", SubmissionRef: "x"})
	s.True(types.IsBattleError(err, types.ErrRateLimited))
	s.Equal(int64(5), s.balance("artist-1"))

	// Other pools are unaffected
	s.admit("artist-1", "Rock", 15)

	s.clock.Advance(24 * time.Hour)
	s.admit("artist-1", "Rock", 5)
}

func (s *BattleServiceTestSuite) TestAdmitIntoClosedPool() {
	s.admit("artist-1", "Rock", 5)

	closed, err := s.service.Close(s.ctx, "rock", 5)
	s.Require().NoError(err)
	s.Equal(entities.BattleStatusClosed, closed.Status)

	s.fund("artist-2", 5)
	_, err = s.service.Admit(s.ctx, AdmitRequest{Category: "Rock", Tier: 5, UserID: "artist-2", SubmissionRef: "x"})
	s.True(types.IsBattleError(err, types.ErrInvalidPhase))
	s.Equal(int64(5), s.balance("artist-2"))

	_, err = s.service.Close(s.ctx, "Rock", 5)
	s.True(types.IsBattleError(err, types.ErrInvalidPhase))
}

func (s *BattleServiceTestSuite) TestCloseWithoutBattle() {
	_, err := s.service.Close(s.ctx, "Rock", 5)
	s.True(types.IsBattleError(err, types.ErrNotFound))
}

func (s *BattleServiceTestSuite) TestPoolTotalTracksAdmitsAndRemoves() {
	a := s.admit("artist-1", "Rock", 5)
	s.admit("artist-2", "Rock", 5)
	s.admit("artist-3", "Rock", 5)
	s.Equal(int64(15), s.poolTotal("Rock", 5).TotalAmount)

	refund, err := s.service.Remove(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(int64(5), refund)

	total := s.poolTotal("Rock", 5)
	s.Equal(int64(10), total.TotalAmount)
	s.Equal(int64(2), total.EntrantCount)
	s.Equal(int64(5), s.balance("artist-1"))
}

func (s *BattleServiceTestSuite) TestFullBattle() {
	a := s.admit("artist-a", "Rock", 5)
	b := s.admit("artist-b", "Rock", 5)

	battle, entrants := s.startVoting("Rock", 5)
	s.Require().Len(entrants, 2)
	s.Equal(a.ID, entrants[0].ID)
	s.Equal(b.ID, entrants[1].ID)
	s.Require().NotNil(battle.VotingEndsAt)
	s.True(s.clock.Now().Add(24 * time.Hour).Equal(*battle.VotingEndsAt))

	s.vote(battle.ID, "fan-1", 1)
	s.vote(battle.ID, "fan-2", 1)
	s.vote(battle.ID, "fan-3", 2)

	s.notifier.EXPECT().AnnounceResult(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event notify.ResultEvent) error {
			s.Require().NotNil(event.Winner)
			s.Equal(a.ID, event.Winner.ID)
			return nil
		})
	s.archiver.On("ArchiveResult", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	result, err := s.service.EndVoting(s.ctx, Selector{BattleID: battle.ID})
	s.Require().NoError(err)

	s.Require().Len(result.Standings, 2)
	s.Equal(a.ID, result.Standings[0].Entrant.ID)
	s.Equal(int64(2), result.Standings[0].Votes)
	s.Equal(b.ID, result.Standings[1].Entrant.ID)
	s.Equal(int64(1), result.Standings[1].Votes)
	s.True(result.HasWinner)
	s.Equal("artist-a", result.WinnerUserID)
	s.True(result.TotalPool.Equal(decimal.NewFromInt(10)))
	s.True(result.WinnerPayout.Equal(decimal.RequireFromString("7.0")))
	s.True(result.PlatformFee.Equal(decimal.RequireFromString("3.0")))

	// The completed battle no longer counts toward the pool
	s.Equal(int64(0), s.poolTotal("Rock", 5).TotalAmount)
	s.archiver.AssertExpectations(s.T())

	// Ending again returns the stored result without side effects
	again, err := s.service.EndVoting(s.ctx, Selector{BattleID: battle.ID})
	s.Require().NoError(err)
	s.True(again.WinnerPayout.Equal(result.WinnerPayout))
	s.Equal(result.WinnerEntrantID, again.WinnerEntrantID)
	s.Len(again.Standings, 2)

	stored, err := s.repo.GetBattle(s.ctx, battle.ID)
	s.Require().NoError(err)
	s.Equal(entities.BattleStatusCompleted, stored.Status)

	// The pool opens a fresh battle for the next entrant
	next := s.admit("artist-c", "Rock", 5)
	s.NotEqual(battle.ID, next.BattleID)
}

func (s *BattleServiceTestSuite) TestRemoveMidVotingPurgesVotes() {
	a := s.admit("artist-a", "Rock", 5)
	s.admit("artist-b", "Rock", 5)
	s.admit("artist-c", "Rock", 5)

	battle, _ := s.startVoting("Rock", 5)
	s.Require().NoError(s.repo.SetEntrantMessageRef(s.ctx, a.ID, "chan/msg-a"))

	s.vote(battle.ID, "fan-1", 1)
	s.vote(battle.ID, "fan-2", 1)
	s.vote(battle.ID, "fan-3", 2)

	s.notifier.EXPECT().RemoveMessage(gomock.Any(), "chan/msg-a").Return(nil)

	refund, err := s.service.Remove(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(int64(5), refund)
	s.Equal(int64(5), s.balance("artist-a"))

	total := s.poolTotal("Rock", 5)
	s.Equal(int64(10), total.TotalAmount)
	s.Equal(int64(2), total.EntrantCount)

	standings, err := s.votes.Tally(s.ctx, battle.ID)
	s.Require().NoError(err)
	s.Require().Len(standings, 2)
	for _, st := range standings {
		s.NotEqual(a.ID, st.Entrant.ID)
	}
	s.Equal(int64(1), standings[0].Votes)

	// The voters whose votes were purged may vote again
	s.vote(battle.ID, "fan-1", 3)
}

func (s *BattleServiceTestSuite) TestRemoveFromCompletedBattle() {
	a := s.admit("artist-a", "Rock", 5)
	s.admit("artist-b", "Rock", 5)
	battle, _ := s.startVoting("Rock", 5)

	s.notifier.EXPECT().AnnounceResult(gomock.Any(), gomock.Any()).Return(nil)
	s.archiver.On("ArchiveResult", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	_, err := s.service.EndVoting(s.ctx, Selector{BattleID: battle.ID})
	s.Require().NoError(err)

	_, err = s.service.Remove(s.ctx, a.ID)
	s.True(types.IsBattleError(err, types.ErrInvalidPhase))
	s.Equal(int64(0), s.balance("artist-a"))
}

func (s *BattleServiceTestSuite) TestDeadlineWithoutVotesCompletesOnce() {
	s.admit("artist-a", "Rock", 5)
	s.admit("artist-b", "Rock", 5)
	battle, _ := s.startVoting("Rock", 5)

	ended, err := s.service.EndExpired(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, ended, "deadline not reached")

	s.clock.Advance(24 * time.Hour)

	s.notifier.EXPECT().AnnounceResult(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event notify.ResultEvent) error {
			s.Nil(event.Winner)
			return nil
		}).Times(1)
	s.archiver.On("ArchiveResult", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	ended, err = s.service.EndExpired(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, ended)

	ended, err = s.service.EndExpired(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, ended)

	result, err := s.repo.GetResult(s.ctx, battle.ID)
	s.Require().NoError(err)
	s.False(result.HasWinner)
	s.True(result.WinnerPayout.IsZero())
	s.True(result.PlatformFee.IsZero())
	s.True(result.TotalPool.Equal(decimal.NewFromInt(10)))
}

func (s *BattleServiceTestSuite) TestTieGoesToEarlierSubmission() {
	a := s.admit("artist-a", "Rock", 5)
	s.admit("artist-b", "Rock", 5)
	battle, _ := s.startVoting("Rock", 5)

	s.vote(battle.ID, "fan-1", 2)
	s.vote(battle.ID, "fan-2", 1)

	s.notifier.EXPECT().AnnounceResult(gomock.Any(), gomock.Any()).Return(nil)
	s.archiver.On("ArchiveResult", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := s.service.EndVoting(s.ctx, Selector{Category: "Rock", Tier: 5})
	s.Require().NoError(err)
	s.Equal(a.ID, result.WinnerEntrantID)
}

func (s *BattleServiceTestSuite) TestDisqualifiedLeaderCannotWin() {
	a := s.admit("artist-a", "Rock", 5)
	b := s.admit("artist-b", "Rock", 5)
	s.admit("artist-c", "Rock", 5)
	battle, _ := s.startVoting("Rock", 5)

	s.vote(battle.ID, "fan-1", 1)
	s.vote(battle.ID, "fan-2", 1)
	s.vote(battle.ID, "fan-3", 2)

	_, err := s.service.Disqualify(s.ctx, a.ID)
	s.Require().NoError(err)

	s.notifier.EXPECT().AnnounceResult(gomock.Any(), gomock.Any()).Return(nil)
	s.archiver.On("ArchiveResult", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := s.service.EndVoting(s.ctx, Selector{BattleID: battle.ID})
	s.Require().NoError(err)
	s.Equal(b.ID, result.WinnerEntrantID)
	s.Equal(int64(1), result.WinnerVotes)
	// The disqualified entrant paid, so its fee stays in the pool
	s.Equal(int64(3), result.PaidEntrants)
	s.True(result.TotalPool.Equal(decimal.NewFromInt(15)))
	s.Equal(int64(0), s.balance("artist-a"))
}

func (s *BattleServiceTestSuite) TestStartVotingNeedsTwoEntrants() {
	s.admit("artist-a", "Rock", 5)

	_, _, err := s.service.StartVoting(s.ctx, Selector{Category: "Rock", Tier: 5})
	s.True(types.IsBattleError(err, types.ErrInvalidPhase))

	_, _, err = s.service.StartVoting(s.ctx, Selector{Category: "Hip Hop", Tier: 5})
	s.True(types.IsBattleError(err, types.ErrNotFound))
}

func (s *BattleServiceTestSuite) TestStartVotingStoresMessageRefs() {
	a := s.admit("artist-a", "Rock", 5)
	b := s.admit("artist-b", "Rock", 5)

	s.notifier.EXPECT().AnnounceVotingStarted(gomock.Any(), gomock.Any()).
		Return(map[int64]string{a.ID: "chan/1", b.ID: "chan/2"}, nil)

	_, _, err := s.service.StartVoting(s.ctx, Selector{Category: "Rock", Tier: 5})
	s.Require().NoError(err)

	e, err := s.repo.GetEntrantByMessage(s.ctx, "chan/2")
	s.Require().NoError(err)
	s.Equal(b.ID, e.ID)
}

func (s *BattleServiceTestSuite) TestStartVotingSurvivesNotifierFailure() {
	s.admit("artist-a", "Rock", 5)
	s.admit("artist-b", "Rock", 5)

	s.notifier.EXPECT().AnnounceVotingStarted(gomock.Any(), gomock.Any()).Return(nil, errors.New("discord down"))

	battle, _, err := s.service.StartVoting(s.ctx, Selector{Category: "Rock", Tier: 5})
	s.Require().NoError(err)
	s.Equal(entities.BattleStatusVoting, battle.Status)
}

func (s *BattleServiceTestSuite) TestEndVotingOutsideVoting() {
	s.admit("artist-a", "Rock", 5)

	_, err := s.service.EndVoting(s.ctx, Selector{Category: "Rock", Tier: 5})
	s.True(types.IsBattleError(err, types.ErrInvalidPhase))
}

func (s *BattleServiceTestSuite) TestPromoteEligible() {
	s.admit("artist-a", "Rock", 5)
	s.admit("artist-b", "Rock", 5)
	s.admit("artist-c", "Hip Hop", 5)

	s.notifier.EXPECT().AnnounceVotingStarted(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)

	promoted, err := s.service.PromoteEligible(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, promoted)

	rock, err := s.repo.GetOpenBattle(s.ctx, "Rock", 5)
	s.Require().NoError(err)
	s.Equal(entities.BattleStatusVoting, rock.Status)

	hipHop, err := s.repo.GetOpenBattle(s.ctx, "Hip Hop", 5)
	s.Require().NoError(err)
	s.Equal(entities.BattleStatusPending, hipHop.Status)
}

func (s *BattleServiceTestSuite) TestBroadcastStandings() {
	s.admit("artist-a", "Rock", 5)
	s.admit("artist-b", "Rock", 5)
	s.admit("artist-c", "Hip Hop", 15)
	battle, _ := s.startVoting("Rock", 5)
	s.vote(battle.ID, "fan-1", 2)

	s.notifier.EXPECT().AnnouncePoolStandings(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, standings []notify.PoolStanding) error {
			s.Require().Len(standings, 2)
			byBattle := map[int64]notify.PoolStanding{}
			for _, st := range standings {
				byBattle[st.BattleID] = st
			}
			rock := byBattle[battle.ID]
			s.Equal(int64(10), rock.Pool.TotalAmount)
			s.True(rock.WinnerPrize.Equal(decimal.NewFromInt(7)))
			s.Require().Len(rock.Leaders, 2)
			s.Equal(2, rock.Leaders[0].Entrant.DisplayNumber)
			return nil
		})

	s.NoError(s.service.BroadcastStandings(s.ctx))
}

func (s *BattleServiceTestSuite) TestBroadcastStandingsWithoutBattles() {
	s.NoError(s.service.BroadcastStandings(s.ctx))
}

func (s *BattleServiceTestSuite) TestSweepsRunOnFakeClock() {
	s.admit("artist-a", "Rock", 5)
	s.admit("artist-b", "Rock", 5)
	s.startVoting("Rock", 5)

	s.notifier.EXPECT().AnnounceResult(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	s.notifier.EXPECT().AnnouncePoolStandings(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.notifier.EXPECT().AnnounceVotingStarted(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	s.archiver.On("ArchiveResult", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	sched := scheduler.NewScheduler(s.clock, logging.Discard())
	sched.RunOnStart = false
	scheduler.RegisterSweeps(sched, s.service, scheduler.DefaultSweepIntervals(), logging.Discard())
	sched.Start(s.ctx)
	defer sched.Stop()

	s.clock.Advance(25 * time.Hour)

	s.Eventually(func() bool {
		battles, err := s.repo.ListBattles(s.ctx, entities.BattleStatusCompleted)
		return err == nil && len(battles) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *BattleServiceTestSuite) TestRestartLeavesPendingBattlePending() {
	s.admit("artist-a", "Rock", 5)
	s.admit("artist-b", "Rock", 5)

	broadcast := make(chan struct{}, 1)
	s.notifier.EXPECT().AnnouncePoolStandings(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, []notify.PoolStanding) error {
			select {
			case broadcast <- struct{}{}:
			default:
			}
			return nil
		}).AnyTimes()

	sched := scheduler.NewScheduler(s.clock, logging.Discard())
	scheduler.RegisterSweeps(sched, s.service, scheduler.DefaultSweepIntervals(), logging.Discard())
	sched.Start(s.ctx)
	<-broadcast
	sched.Stop()

	battle, err := s.repo.GetOpenBattle(s.ctx, "Rock", 5)
	s.Require().NoError(err)
	s.Equal(entities.BattleStatusPending, battle.Status)
}

func (s *BattleServiceTestSuite) TestDeadlineSweepRepostsMissingVotingMessages() {
	a := s.admit("artist-a", "Rock", 5)
	b := s.admit("artist-b", "Rock", 5)

	// Only the first entrant made it out before the notifier gave up
	s.notifier.EXPECT().AnnounceVotingStarted(gomock.Any(), gomock.Any()).
		Return(map[int64]string{a.ID: "chan/first"}, errors.New("discord down"))
	battle, _, err := s.service.StartVoting(s.ctx, Selector{Category: "Rock", Tier: 5})
	s.Require().NoError(err)

	s.notifier.EXPECT().AnnounceVotingStarted(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, event notify.VotingStartedEvent) (map[int64]string, error) {
			s.Equal(battle.ID, event.Battle.ID)
			s.Require().Len(event.Entrants, 2)
			s.Equal("chan/first", event.Entrants[0].MessageRef)
			s.Empty(event.Entrants[1].MessageRef)
			return map[int64]string{a.ID: "chan/first", b.ID: "chan/second"}, nil
		}).Times(1)

	ended, err := s.service.EndExpired(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, ended)

	second, err := s.repo.GetEntrant(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal("chan/second", second.MessageRef)
	first, err := s.repo.GetEntrant(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("chan/first", first.MessageRef)

	// Every message is stored now, so the next pass posts nothing
	_, err = s.service.EndExpired(s.ctx)
	s.Require().NoError(err)
}

func (s *BattleServiceTestSuite) TestReentryAfterEarlyEnd() {
	s.admit("artist-a", "Rock", 5)
	s.admit("artist-b", "Rock", 5)
	battle, _ := s.startVoting("Rock", 5)
	s.vote(battle.ID, "fan-1", 1)

	s.notifier.EXPECT().AnnounceResult(gomock.Any(), gomock.Any()).Return(nil)
	s.archiver.On("ArchiveResult", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	_, err := s.service.EndVoting(s.ctx, Selector{BattleID: battle.ID})
	s.Require().NoError(err)

	next := s.admit("artist-a", "Rock", 5)
	s.NotEqual(battle.ID, next.BattleID)
}

func (s *BattleServiceTestSuite) TestManualEndRacingSweepCompletesOnce() {
	s.admit("artist-a", "Rock", 5)
	s.admit("artist-b", "Rock", 5)
	battle, _ := s.startVoting("Rock", 5)
	s.vote(battle.ID, "fan-1", 2)
	s.clock.Advance(25 * time.Hour)

	s.notifier.EXPECT().AnnounceResult(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	s.archiver.On("ArchiveResult", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.service.EndVoting(s.ctx, Selector{BattleID: battle.ID})
			s.NoError(err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.service.EndExpired(s.ctx)
			s.NoError(err)
		}()
	}
	wg.Wait()

	results, err := s.repo.ListResults(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(battle.ID, results[0].BattleID)
	s.Equal(int64(0), s.poolTotal("Rock", 5).TotalAmount)
	s.archiver.AssertNumberOfCalls(s.T(), "ArchiveResult", 1)
}

func (s *BattleServiceTestSuite) TestPayouts() {
	payouts, err := s.service.Payouts(s.ctx, 0)
	s.Require().NoError(err)
	s.Empty(payouts)

	b := s.admit("artist-b", "Rock", 5)
	s.admit("artist-a", "Rock", 5)
	battle, _ := s.startVoting("Rock", 5)
	s.vote(battle.ID, "fan-1", 1)

	s.notifier.EXPECT().AnnounceResult(gomock.Any(), gomock.Any()).Return(nil)
	s.archiver.On("ArchiveResult", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	_, err = s.service.EndVoting(s.ctx, Selector{BattleID: battle.ID})
	s.Require().NoError(err)

	payouts, err = s.service.Payouts(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(payouts, 1)
	s.Equal(b.UserID, payouts[0].WinnerUserID)
	s.True(payouts[0].TotalPool.Equal(decimal.NewFromInt(10)))
	s.True(payouts[0].WinnerPayout.Equal(decimal.NewFromInt(7)))
}
