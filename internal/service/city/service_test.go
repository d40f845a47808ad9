package city

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-dashboard/internal/repository/mocks"
)

func newTestService(repo *mocks.CityRepository) *Service {
	return NewService(repo, nil, Config{
		MaxResults:   2,
		Delay:        20 * time.Millisecond,
		InitialRetry: time.Millisecond,
	})
}

func TestLoadCachesSourceList(t *testing.T) {
	repo := &mocks.CityRepository{}
	repo.On("List", mock.Anything).Return([]string{"Pune", " Mumbai ", "pune", ""}, nil).Once()
	svc := newTestService(repo)

	assert.Equal(t, []string{"Mumbai", "Pune"}, svc.Load(context.Background()))
	assert.Equal(t, []string{"Mumbai", "Pune"}, svc.Load(context.Background()))
	repo.AssertExpectations(t)
}

func TestLoadRetriesThenSucceeds(t *testing.T) {
	repo := &mocks.CityRepository{}
	repo.On("List", mock.Anything).Return(nil, errors.New("timeout")).Twice()
	repo.On("List", mock.Anything).Return([]string{"Surat"}, nil).Once()
	svc := newTestService(repo)

	assert.Equal(t, []string{"Surat"}, svc.Load(context.Background()))
	repo.AssertNumberOfCalls(t, "List", 3)
}

func TestLoadFallsBackAfterThreeAttempts(t *testing.T) {
	repo := &mocks.CityRepository{}
	repo.On("List", mock.Anything).Return(nil, errors.New("unreachable"))
	svc := newTestService(repo)

	got := svc.Load(context.Background())
	repo.AssertNumberOfCalls(t, "List", MaxAttempts)
	assert.Contains(t, got, "Mumbai")
	assert.Len(t, got, len(fallbackCities))
}

func TestLoadFallbackExpiresBeforeCacheTTL(t *testing.T) {
	repo := &mocks.CityRepository{}
	repo.On("List", mock.Anything).Return(nil, errors.New("unreachable")).Times(MaxAttempts)
	repo.On("List", mock.Anything).Return([]string{"Surat"}, nil).Once()
	svc := NewService(repo, nil, Config{
		Delay:        20 * time.Millisecond,
		InitialRetry: time.Millisecond,
		FallbackTTL:  30 * time.Millisecond,
	})

	assert.Len(t, svc.Load(context.Background()), len(fallbackCities))
	assert.Len(t, svc.Load(context.Background()), len(fallbackCities))
	repo.AssertNumberOfCalls(t, "List", MaxAttempts)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"Surat"}, svc.Load(context.Background()))
	repo.AssertExpectations(t)
}

func TestLoadDoesNotCacheFallbackForEndedContext(t *testing.T) {
	repo := &mocks.CityRepository{}
	repo.On("List", mock.Anything).Return(nil, context.Canceled).Once()
	repo.On("List", mock.Anything).Return([]string{"Surat"}, nil).Once()
	svc := newTestService(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Len(t, svc.Load(ctx), len(fallbackCities))
	repo.AssertNumberOfCalls(t, "List", 1)

	assert.Equal(t, []string{"Surat"}, svc.Load(context.Background()))
	repo.AssertExpectations(t)
}

func TestSearchPrefixCaseInsensitiveCapped(t *testing.T) {
	repo := &mocks.CityRepository{}
	repo.On("List", mock.Anything).Return([]string{"Bhopal", "Bengaluru", "Bhuj", "Bareilly", "Delhi"}, nil)
	svc := newTestService(repo)

	got, err := svc.Search(context.Background(), "s1", "bh")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bhopal", "Bhuj"}, got)

	got, err = svc.Search(context.Background(), "s1", "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchSuperseded(t *testing.T) {
	repo := &mocks.CityRepository{}
	repo.On("List", mock.Anything).Return([]string{"Delhi"}, nil)
	svc := newTestService(repo)

	errc := make(chan error, 1)
	go func() {
		_, err := svc.Search(context.Background(), "s1", "d")
		errc <- err
	}()
	time.Sleep(2 * time.Millisecond)

	got, err := svc.Search(context.Background(), "s1", "de")
	require.NoError(t, err)
	assert.Equal(t, []string{"Delhi"}, got)
	assert.ErrorIs(t, <-errc, ErrSuperseded)
}
