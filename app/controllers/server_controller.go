package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ServerHub/app/models"
	"github.com/ManuelReschke/ServerHub/app/repository"
	"github.com/ManuelReschke/ServerHub/internal/pkg/cache"
	"github.com/ManuelReschke/ServerHub/internal/pkg/hcaptcha"
	"github.com/ManuelReschke/ServerHub/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/ServerHub/internal/pkg/statistics"
	"github.com/ManuelReschke/ServerHub/internal/pkg/usercontext"
)

const (
	TopServersLimit = 50
	topServersTTL   = time.Minute
	voteWindow      = 24 * time.Hour
	featuredLimit   = 6
)

// ServerController serves the public listing pages.
type ServerController struct {
	servers   repository.ServerRepository
	banners   repository.BannerRepository
	cache     cache.Store
	stats     *statistics.Service
	captcha   *hcaptcha.Verifier
	countView func(serverID uint) error
	now       func() time.Time
}

func NewServerController(repos *repository.Repositories, store cache.Store) *ServerController {
	return &ServerController{
		servers:   repos.Server,
		banners:   repos.Banner,
		cache:     store,
		stats:     statistics.NewService(repos, store),
		captcha:   hcaptcha.NewVerifierFromEnv(),
		countView: counter.AddServerView,
		now:       time.Now,
	}
}

// TopServers returns the ranking of at most TopServersLimit servers by
// votes, served from the cache while it is fresh.
func (sc *ServerController) TopServers() ([]models.Server, error) {
	var servers []models.Server
	err := sc.cache.GetJSON(cache.TopServersKey, &servers)
	if err == nil {
		return servers, nil
	}
	if !cache.IsMiss(err) {
		log.Warn().Err(err).Msg("top servers cache unavailable")
	}

	servers, err = sc.servers.Top(TopServersLimit)
	if err != nil {
		return nil, err
	}
	if err := sc.cache.SetJSON(cache.TopServersKey, servers, topServersTTL); err != nil {
		log.Warn().Err(err).Msg("failed to cache top servers")
	}
	return servers, nil
}

func (sc *ServerController) HandleIndex(c *fiber.Ctx) error {
	top, err := sc.TopServers()
	if err != nil {
		log.Error().Err(err).Msg("failed to load top servers")
		return fiber.ErrInternalServerError
	}

	now := sc.now()
	featured, err := sc.servers.ActiveBySlotType("featured", now, featuredLimit)
	if err != nil {
		log.Error().Err(err).Msg("failed to load featured servers")
	}
	banners, err := sc.banners.Active(now, 1)
	if err != nil {
		log.Error().Err(err).Msg("failed to load banners")
	}
	stats, err := sc.stats.Get()
	if err != nil {
		log.Error().Err(err).Msg("failed to load statistics")
	}

	return c.Render("index", viewData(c, "Top servers", fiber.Map{
		"Servers":  top,
		"Featured": featured,
		"Banners":  banners,
		"Stats":    stats,
	}), layoutMain)
}

func (sc *ServerController) HandleShow(c *fiber.Ctx) error {
	server, err := sc.loadServer(c)
	if err != nil {
		return err
	}
	if err := sc.countView(server.ID); err != nil {
		log.Warn().Err(err).Uint("server_id", server.ID).Msg("failed to count view")
	}
	return c.Render("servers/show", viewData(c, server.Name, fiber.Map{
		"Server":          server,
		"HCaptchaSiteKey": sc.captcha.SiteKey,
	}), layoutMain)
}

// HandleVote records one vote per voter and server inside the vote window.
// Logged in users are throttled by account and address, guests by address.
func (sc *ServerController) HandleVote(c *fiber.Ctx) error {
	server, err := sc.loadServer(c)
	if err != nil {
		return err
	}
	back := "/servers/" + strconv.FormatUint(uint64(server.ID), 10)

	if err := sc.captcha.Verify(c.UserContext(), c.FormValue(hcaptcha.FormField)); err != nil {
		return flashError(c, "Please solve the captcha to vote.", back)
	}

	uc := usercontext.GetUserContext(c)
	ip := GetClientIP(c)

	last, err := sc.servers.LastVoteAt(server.ID, uc.UserID, ip)
	if err != nil {
		log.Error().Err(err).Uint("server_id", server.ID).Msg("failed to check votes")
		return flashError(c, "Voting failed. Please try again.", back)
	}
	if last != nil && sc.now().Sub(*last) < voteWindow {
		return flashError(c, "You already voted for this server today.", back)
	}

	// closes the gap between the check above and the insert for double submits
	if ok, err := sc.cache.TryVote(server.ID, ip, voteWindow); err != nil {
		log.Warn().Err(err).Msg("vote throttle unavailable")
	} else if !ok {
		return flashError(c, "You already voted for this server today.", back)
	}

	if err := sc.servers.AddVote(&models.ServerVote{ServerID: server.ID, UserID: uc.UserID, IPAddress: ip}); err != nil {
		log.Error().Err(err).Uint("server_id", server.ID).Msg("failed to store vote")
		return flashError(c, "Voting failed. Please try again.", back)
	}
	_ = sc.cache.Delete(cache.TopServersKey)

	return flashSuccess(c, "Thanks for voting for "+server.Name+"!", back)
}

func (sc *ServerController) loadServer(c *fiber.Ctx) (*models.Server, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return nil, fiber.ErrNotFound
	}
	server, err := sc.servers.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.ErrNotFound
		}
		log.Error().Err(err).Uint64("server_id", id).Msg("failed to load server")
		return nil, fiber.ErrInternalServerError
	}
	return server, nil
}
