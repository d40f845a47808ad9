package city

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/hospital-dashboard/internal/debounce"
	"github.com/jwalitptl/hospital-dashboard/internal/repository"
	"github.com/jwalitptl/hospital-dashboard/pkg/logger"
)

// ErrSuperseded is returned by Search when a newer keystroke replaced the query.
var ErrSuperseded = errors.New("search superseded")

const (
	MaxAttempts       = 3
	DefaultMaxResults = 10
	listKey           = "cities"
)

// fallbackCities is served when the source cannot be reached.
var fallbackCities = []string{
	"Ahmedabad", "Bengaluru", "Bhopal", "Chandigarh", "Chennai", "Delhi",
	"Hyderabad", "Indore", "Jaipur", "Kochi", "Kolkata", "Lucknow",
	"Mumbai", "Nagpur", "Patna", "Pune", "Surat", "Vadodara",
}

type Config struct {
	MaxResults   int
	Delay        time.Duration
	CacheTTL     time.Duration
	InitialRetry time.Duration
	// FallbackTTL bounds how long the static list stands in for an unreachable source.
	FallbackTTL time.Duration
}

// Service backs the city autocomplete.
type Service struct {
	repo      repository.CityRepository
	cache     *cache.Cache
	debouncer *debounce.Debouncer
	log       *logger.Logger
	cfg       Config
}

func NewService(repo repository.CityRepository, log *logger.Logger, cfg Config) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.InitialRetry <= 0 {
		cfg.InitialRetry = 200 * time.Millisecond
	}
	if cfg.FallbackTTL <= 0 {
		cfg.FallbackTTL = time.Minute
	}
	return &Service{
		repo:      repo,
		cache:     cache.New(cfg.CacheTTL, time.Hour),
		debouncer: debounce.New(cfg.Delay),
		log:       log.With("component", "city"),
		cfg:       cfg,
	}
}

// Load returns the city list. The source is tried up to MaxAttempts times with
// exponential backoff; when every attempt fails the static list is returned and
// cached for FallbackTTL only. A fallback caused by the caller's context ending
// is not cached at all. Without a source the static list is used directly.
func (s *Service) Load(ctx context.Context) []string {
	if v, ok := s.cache.Get(listKey); ok {
		return v.([]string)
	}

	if s.repo == nil {
		cities := normalize(fallbackCities)
		s.cache.SetDefault(listKey, cities)
		return cities
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.InitialRetry
	policy := backoff.WithContext(backoff.WithMaxRetries(b, MaxAttempts-1), ctx)

	var cities []string
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		list, err := s.repo.List(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return errors.New("empty city list")
		}
		cities = list
		return nil
	}, policy, func(err error, wait time.Duration) {
		s.log.Warn("city list fetch failed, retrying", "attempt", attempt, "wait", wait.String(), "error", err.Error())
	})
	if err != nil {
		s.log.Error(err, "city list unavailable, using fallback", "attempts", attempt)
		cities = normalize(fallbackCities)
		if ctx.Err() == nil {
			s.cache.Set(listKey, cities, s.cfg.FallbackTTL)
		}
		return cities
	}

	cities = normalize(cities)
	s.cache.SetDefault(listKey, cities)
	return cities
}

// Search returns up to MaxResults cities starting with q, case-insensitively.
// Calls are debounced per key (one per session); a call replaced by a newer
// one returns ErrSuperseded.
func (s *Service) Search(ctx context.Context, key, q string) ([]string, error) {
	latest, err := s.debouncer.Wait(ctx, "city:"+key)
	if err != nil {
		return nil, err
	}
	if !latest {
		return nil, ErrSuperseded
	}

	prefix := strings.ToLower(strings.TrimSpace(q))
	out := []string{}
	if prefix == "" {
		return out, nil
	}
	for _, c := range s.Load(ctx) {
		if strings.HasPrefix(strings.ToLower(c), prefix) {
			out = append(out, c)
			if len(out) == s.cfg.MaxResults {
				break
			}
		}
	}
	return out, nil
}

// normalize trims, dedupes case-insensitively and sorts.
func normalize(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		k := strings.ToLower(c)
		if c == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
