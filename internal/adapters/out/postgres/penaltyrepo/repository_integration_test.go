package penaltyrepo_test

import (
	"context"
	"testing"
	"time"

	"hako/internal/adapters/out/postgres/penaltyrepo"
	"hako/internal/adapters/out/postgres/pgtest"
	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/penalty"

	"github.com/stretchr/testify/suite"
)

type PenaltyRepositoryTestSuite struct {
	suite.Suite
	pg   *pgtest.Database
	repo *penaltyrepo.GormPenaltyRepository
}

func (suite *PenaltyRepositoryTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
	suite.repo = penaltyrepo.NewGormPenaltyRepository(pg.DB, pgtest.NopTracker{})
}

func (suite *PenaltyRepositoryTestSuite) TearDownSuite() {
	if suite.pg != nil {
		suite.Require().NoError(suite.pg.Terminate(context.Background()))
	}
}

func (suite *PenaltyRepositoryTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())
}

func (suite *PenaltyRepositoryTestSuite) TestFindAndPurge() {
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	user := kernel.NewUUID()
	day, err := kernel.NewDate(2026, time.October, 15)
	suite.Require().NoError(err)

	fresh, err := penalty.NewPenalty(kernel.NewUUID(), user, day, now.Add(-time.Hour))
	suite.Require().NoError(err)
	stale, err := penalty.NewPenalty(kernel.NewUUID(), user, day, now.Add(-penalty.Lifetime))
	suite.Require().NoError(err)
	otherDay, err := penalty.NewPenalty(kernel.NewUUID(), user, day.AddDays(1), now)
	suite.Require().NoError(err)
	for _, p := range []*penalty.Penalty{fresh, stale, otherDay} {
		suite.Require().NoError(suite.repo.Add(ctx, p))
	}

	found, err := suite.repo.FindByUserAndDate(ctx, user, day, penalty.PurgeBefore(now))
	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.True(found[0].ID().IsEqual(fresh.ID()))
	suite.True(found[0].Date().IsEqual(day))

	deleted, err := suite.repo.DeleteCreatedBefore(ctx, penalty.PurgeBefore(now))
	suite.Require().NoError(err)
	suite.Equal(int64(1), deleted)

	deleted, err = suite.repo.DeleteCreatedBefore(ctx, penalty.PurgeBefore(now))
	suite.Require().NoError(err)
	suite.Zero(deleted)
}

func TestPenaltyRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(PenaltyRepositoryTestSuite))
}
