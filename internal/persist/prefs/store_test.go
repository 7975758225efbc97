package prefs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"pixelguard/pkg/platform/sentinel"
)

// StoreContractSuite runs the same behaviour checks against every backend.
type StoreContractSuite struct {
	suite.Suite
	newStore func() Store
	store    Store
	ctx      context.Context
}

func (s *StoreContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore()
}

func (s *StoreContractSuite) TestMissingKey() {
	_, err := s.store.Get(s.ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreContractSuite) TestEmptyKey() {
	_, err := s.store.Get(s.ctx, "")
	s.ErrorIs(err, sentinel.ErrConfigurationMissing)
	s.ErrorIs(s.store.Set(s.ctx, "", []byte("x")), sentinel.ErrConfigurationMissing)
}

func (s *StoreContractSuite) TestSetOverwrites() {
	s.Require().NoError(s.store.Set(s.ctx, "volume", []byte("3")))
	s.Require().NoError(s.store.Set(s.ctx, "volume", []byte("7")))

	got, err := s.store.Get(s.ctx, "volume")
	s.Require().NoError(err)
	s.Equal([]byte("7"), got)
}

func (s *StoreContractSuite) TestEmptyValueIsStored() {
	s.Require().NoError(s.store.Set(s.ctx, "blank", nil))
	got, err := s.store.Get(s.ctx, "blank")
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *StoreContractSuite) TestDelete() {
	s.Require().NoError(s.store.Set(s.ctx, "a", []byte("1")))
	s.Require().NoError(s.store.Set(s.ctx, "b", []byte("2")))
	s.Require().NoError(s.store.Set(s.ctx, "c", []byte("3")))

	s.Require().NoError(s.store.Delete(s.ctx, "a"))
	s.Require().NoError(s.store.DeleteMany(s.ctx, []string{"b", "c", "never-set"}))
	s.Require().NoError(s.store.DeleteMany(s.ctx, nil))

	for _, k := range []string{"a", "b", "c"} {
		_, err := s.store.Get(s.ctx, k)
		s.ErrorIs(err, sentinel.ErrNotFound, k)
	}
}

func (s *StoreContractSuite) TestFlags() {
	v, err := GetBool(s.ctx, s.store, "IsPrivacyAccepted")
	s.Require().NoError(err)
	s.False(v)

	s.Require().NoError(SetBool(s.ctx, s.store, "IsPrivacyAccepted", true))
	v, err = GetBool(s.ctx, s.store, "IsPrivacyAccepted")
	s.Require().NoError(err)
	s.True(v)

	s.Require().NoError(s.store.Set(s.ctx, "garbage", []byte("yes")))
	_, err = GetBool(s.ctx, s.store, "garbage")
	s.Error(err)
}

func (s *StoreContractSuite) TestStrings() {
	v, err := GetString(s.ctx, s.store, "lang", "en")
	s.Require().NoError(err)
	s.Equal("en", v)

	s.Require().NoError(s.store.Set(s.ctx, "lang", []byte("fi")))
	v, err = GetString(s.ctx, s.store, "lang", "en")
	s.Require().NoError(err)
	s.Equal("fi", v)
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreContractSuite{newStore: func() Store { return NewMemory() }})
}

func TestSQLiteStore(t *testing.T) {
	dir := t.TempDir()
	n := 0
	suite.Run(t, &StoreContractSuite{newStore: func() Store {
		n++
		st, err := OpenSQLite(context.Background(), filepath.Join(dir, "prefs"+string(rune('a'+n))+".db"))
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { _ = st.Close() })
		return st
	}})
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestNewRequiresBackends(t *testing.T) {
	_, err := NewRedis(nil)
	if err == nil {
		t.Fatal("expected error for nil redis client")
	}
	_, err = NewPostgres(nil)
	if err == nil {
		t.Fatal("expected error for nil db")
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()
	in := []byte("abc")
	if err := st.Set(ctx, "k", in); err != nil {
		t.Fatal(err)
	}
	in[0] = 'x'
	got, _ := st.Get(ctx, "k")
	got[1] = 'y'
	again, _ := st.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("store leaked its buffer: %q", again)
	}
}
