package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ManuelReschke/ServerHub/app/models"
	"github.com/ManuelReschke/ServerHub/app/repository"
	"github.com/ManuelReschke/ServerHub/internal/pkg/cache"
	"github.com/ManuelReschke/ServerHub/internal/pkg/constants"
	"github.com/ManuelReschke/ServerHub/internal/pkg/slots"
	"github.com/ManuelReschke/ServerHub/internal/pkg/usercontext"
)

// DashboardController manages the listings of the logged in user.
type DashboardController struct {
	servers repository.ServerRepository
	banners repository.BannerRepository
	slots   *slots.Registry
	cache   cache.Store
}

func NewDashboardController(repos *repository.Repositories, registry *slots.Registry, store cache.Store) *DashboardController {
	return &DashboardController{
		servers: repos.Server,
		banners: repos.Banner,
		slots:   registry,
		cache:   store,
	}
}

func (dc *DashboardController) HandleDashboard(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	servers, err := dc.servers.ListByOwner(userID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("failed to load servers")
		return fiber.ErrInternalServerError
	}
	banners, err := dc.banners.ListByOwner(userID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("failed to load banners")
		return fiber.ErrInternalServerError
	}

	return c.Render("dashboard/index", viewData(c, "Dashboard", fiber.Map{
		"Servers":       servers,
		"Banners":       banners,
		"PaymentStatus": c.Query("payment"),
	}), layoutMain)
}

// listingSlot resolves the slot a creation form was opened for. Slots that
// do not belong to table fall back to the free slot.
func (dc *DashboardController) listingSlot(raw, table string) (slots.Slot, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err == nil {
		if s, ok := dc.slots.Lookup(id); ok && s.Table == table {
			return s, dc.slots.IsFree(s.ID)
		}
	}
	s, _ := dc.slots.Lookup(dc.slots.FreeSlotID())
	return s, true
}

func (dc *DashboardController) HandleServerNew(c *fiber.Ctx) error {
	slot, free := dc.listingSlot(c.Query("slot", c.FormValue("slot")), "servers")
	packageID := c.Query("package", c.FormValue("package"))

	if c.Method() != fiber.MethodPost {
		return c.Render("dashboard/server_form", viewData(c, "Add server", fiber.Map{
			"Slot":          slot,
			"Free":          free,
			"PackageID":     packageID,
			"PaymentStatus": c.Query("payment"),
		}), layoutMain)
	}

	server := &models.Server{
		OwnerID:     usercontext.GetUserID(c),
		Name:        strings.TrimSpace(c.FormValue("name")),
		Game:        strings.TrimSpace(c.FormValue("game")),
		Address:     strings.TrimSpace(c.FormValue("address")),
		Website:     strings.TrimSpace(c.FormValue("website")),
		Description: strings.TrimSpace(c.FormValue("description")),
		SlotType:    slot.Type,
		SlotID:      slot.ID,
	}
	if !free {
		// activated by the payment webhook once the purchase is paid
		server.PackageID = packageID
	}

	retry := dc.slots.RedirectPath(slot.ID, packageID)
	if err := server.Validate(); err != nil {
		return flashError(c, "Please check your input: "+err.Error(), retry)
	}
	if err := dc.servers.Create(server); err != nil {
		log.Error().Err(err).Msg("failed to create server")
		return flashError(c, "Your server could not be saved.", retry)
	}
	_ = dc.cache.Delete(cache.TopServersKey)

	return flashSuccess(c, server.Name+" has been listed.", slots.DashboardPath)
}

func (dc *DashboardController) HandleBannerNew(c *fiber.Ctx) error {
	slot, free := dc.listingSlot(c.Query("slot", c.FormValue("slot")), "banners")
	packageID := c.Query("package", c.FormValue("package"))

	if c.Method() != fiber.MethodPost {
		return c.Render("dashboard/banner_form", viewData(c, "Add banner", fiber.Map{
			"Slot":          slot,
			"PackageID":     packageID,
			"PaymentStatus": c.Query("payment"),
		}), layoutMain)
	}

	// banners only exist as paid placements
	if free || slot.Table != "banners" {
		return flashError(c, "Banners need a booked banner slot.", constants.AdvertiseRoute)
	}

	banner := &models.Banner{
		OwnerID:   usercontext.GetUserID(c),
		Title:     strings.TrimSpace(c.FormValue("title")),
		ImageURL:  strings.TrimSpace(c.FormValue("image_url")),
		TargetURL: strings.TrimSpace(c.FormValue("target_url")),
		SlotID:    slot.ID,
		PackageID: packageID,
	}

	retry := dc.slots.RedirectPath(slot.ID, packageID)
	if err := banner.Validate(); err != nil {
		return flashError(c, "Please check your input: "+err.Error(), retry)
	}
	if err := dc.banners.Create(banner); err != nil {
		log.Error().Err(err).Msg("failed to create banner")
		return flashError(c, "Your banner could not be saved.", retry)
	}

	return flashSuccess(c, "Banner saved. It goes live once the payment is confirmed.", slots.DashboardPath)
}

func (dc *DashboardController) HandleServerDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return flashError(c, "Unknown server.", slots.DashboardPath)
	}

	ok, err := dc.servers.DeleteOwned(uint(id), usercontext.GetUserID(c))
	if err != nil {
		log.Error().Err(err).Uint64("server_id", id).Msg("failed to delete server")
		return flashError(c, "The server could not be deleted.", slots.DashboardPath)
	}
	if !ok {
		return flashError(c, "Unknown server.", slots.DashboardPath)
	}
	_ = dc.cache.Delete(cache.TopServersKey)

	return flashSuccess(c, "Server deleted.", slots.DashboardPath)
}
