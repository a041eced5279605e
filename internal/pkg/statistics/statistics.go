package statistics

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ManuelReschke/ServerHub/app/repository"
	"github.com/ManuelReschke/ServerHub/internal/pkg/cache"
)

const (
	CacheKeySummary = "serverhub:statistics:%s" // Format with date YYYY-MM-DD
	CacheExpiration = 30 * time.Minute
)

// StatisticsData holds the numbers shown on the start page
type StatisticsData struct {
	TotalServers int64 `json:"total_servers"`
	TotalUsers   int64 `json:"total_users"`
	VotesToday   int64 `json:"votes_today"`
}

type Service struct {
	users   repository.UserRepository
	servers repository.ServerRepository
	cache   cache.Store
	now     func() time.Time
}

func NewService(repos *repository.Repositories, store cache.Store) *Service {
	return &Service{
		users:   repos.User,
		servers: repos.Server,
		cache:   store,
		now:     time.Now,
	}
}

// Get returns today's statistics, served from the cache while it is fresh.
// The key carries the date so the vote count restarts at midnight UTC.
func (s *Service) Get() (StatisticsData, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	key := fmt.Sprintf(CacheKeySummary, today.Format("2006-01-02"))

	var data StatisticsData
	err := s.cache.GetJSON(key, &data)
	if err == nil {
		return data, nil
	}
	if !cache.IsMiss(err) {
		log.Warn().Err(err).Msg("statistics cache unavailable")
	}

	if data.TotalServers, err = s.servers.Count(); err != nil {
		return StatisticsData{}, err
	}
	if data.TotalUsers, err = s.users.Count(); err != nil {
		return StatisticsData{}, err
	}
	if data.VotesToday, err = s.servers.CountVotesSince(today); err != nil {
		return StatisticsData{}, err
	}

	if err := s.cache.SetJSON(key, data, CacheExpiration); err != nil {
		log.Warn().Err(err).Msg("failed to cache statistics")
	}
	return data, nil
}
