//go:build integration

package prefs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"pixelguard/internal/persist/prefs"
	"pixelguard/pkg/platform/sentinel"
	"pixelguard/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *prefs.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	st, err := prefs.NewRedis(s.redis.Client, prefs.WithKeyPrefix("test:prefs:"))
	s.Require().NoError(err)
	s.store = st
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTripAndPrefix() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "IsTermsAccepted", []byte("1")))

	raw, err := s.redis.Client.Get(ctx, "test:prefs:IsTermsAccepted").Result()
	s.Require().NoError(err)
	s.Equal("1", raw)

	ok, err := prefs.GetBool(ctx, s.store, "IsTermsAccepted")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisStoreSuite) TestDeleteMany() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "a", []byte("1")))
	s.Require().NoError(s.store.Set(ctx, "b", []byte("2")))

	s.Require().NoError(s.store.DeleteMany(ctx, []string{"a", "b"}))
	_, err := s.store.Get(ctx, "a")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *prefs.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	st, err := prefs.NewPostgres(s.postgres.DB)
	s.Require().NoError(err)
	s.Require().NoError(st.Migrate(context.Background()))
	s.store = st
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "pixelguard_prefs"))
}

func (s *PostgresStoreSuite) TestUpsert() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "save", []byte{0x00, 0xff}))
	s.Require().NoError(s.store.Set(ctx, "save", []byte{0x01}))

	got, err := s.store.Get(ctx, "save")
	s.Require().NoError(err)
	s.Equal([]byte{0x01}, got)
}

func (s *PostgresStoreSuite) TestDeleteMany() {
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		s.Require().NoError(s.store.Set(ctx, k, []byte(k)))
	}
	s.Require().NoError(s.store.DeleteMany(ctx, []string{"a", "c"}))

	_, err := s.store.Get(ctx, "a")
	s.ErrorIs(err, sentinel.ErrNotFound)
	got, err := s.store.Get(ctx, "b")
	s.Require().NoError(err)
	s.Equal([]byte("b"), got)
}
