package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/dosepilot/dosepilot/internal/engine"
	apperrors "github.com/dosepilot/dosepilot/internal/errors"
	"github.com/dosepilot/dosepilot/internal/mixes"
	"github.com/dosepilot/dosepilot/internal/models"
	"github.com/dosepilot/dosepilot/internal/pipeline"
	"github.com/dosepilot/dosepilot/internal/store"
)

// ==================== Auth ====================

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.UserID == "" {
		req.UserID = "default"
	}

	ttl := time.Duration(s.config.Auth.TokenTTLHrs) * time.Hour
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": req.UserID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.config.Auth.JWTSecret))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to generate token"})
	}

	return c.JSON(fiber.Map{"token": tokenString, "user_id": req.UserID})
}

// ==================== Profile ====================

func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	profile, err := s.store.GetProfile(userID(c))
	if err != nil {
		s.logger.Error("Failed to load profile", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to load profile"})
	}
	if profile == nil {
		return c.Status(404).JSON(fiber.Map{"error": "profile not found"})
	}
	return c.JSON(profile)
}

func (s *Server) handlePutProfile(c *fiber.Ctx) error {
	var profile models.Profile
	if err := c.BodyParser(&profile); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	profile.UserID = userID(c)

	if profile.AgeYears < 0 || profile.AgeYears > 130 {
		return c.Status(400).JSON(fiber.Map{"error": "age out of range"})
	}
	if profile.WeightKg < 0 || profile.WeightKg > 400 {
		return c.Status(400).JSON(fiber.Map{"error": "weight out of range"})
	}

	if err := s.store.SaveProfile(&profile); err != nil {
		s.logger.Error("Failed to save profile", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to save profile"})
	}
	return c.JSON(profile)
}

// ==================== Catalog ====================

func (s *Server) handleListSupplements(c *fiber.Ctx) error {
	cat := s.engine.Catalog()

	// ?at=<hour> filters to the serving window, honoring allergies.
	if at := c.QueryInt("at", -1); at >= 0 {
		if at > 23 {
			return c.Status(400).JSON(fiber.Map{"error": "hour must be 0-23"})
		}
		profile, err := s.store.GetProfile(userID(c))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to load profile"})
		}
		var allergies []string
		if profile != nil {
			allergies = profile.Allergies
		}
		return c.JSON(cat.AvailableAt(models.TimeOfDayAt(at), allergies))
	}

	return c.JSON(cat.List())
}

func (s *Server) handleGetSupplement(c *fiber.Ctx) error {
	supp, ok := s.engine.Catalog().Get(c.Params("id"))
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": apperrors.ErrUnknownSupplement.Message})
	}
	return c.JSON(supp)
}

// ==================== Mixes ====================

func (s *Server) handleListMixes(c *fiber.Ctx) error {
	return c.JSON(mixes.List())
}

func (s *Server) handleAvailableMixes(c *fiber.Ctx) error {
	list, err := s.engine.AvailableMixes(userID(c), time.Now())
	if err != nil {
		s.logger.Error("Failed to list available mixes", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to list mixes"})
	}
	if list == nil {
		list = []mixes.Mix{}
	}
	return c.JSON(list)
}

func (s *Server) handleCalculateMix(c *fiber.Ctx) error {
	res, err := s.engine.CalculateMix(c.Context(), userID(c), c.Params("id"), time.Now())
	if err != nil {
		if errors.Is(err, engine.ErrUnknownMix) {
			return c.Status(404).JSON(fiber.Map{"error": apperrors.ErrUnknownMix.Message})
		}
		s.logger.Error("Failed to calculate mix", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to calculate mix"})
	}

	for _, h := range res.Held {
		s.metrics.HoldsTotal.WithLabelValues(h.Rule).Inc()
	}
	return c.JSON(res)
}

// ==================== Recommendations ====================

func (s *Server) handleRecommendation(c *fiber.Ctx) error {
	var req recommendationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
	}

	now := time.Now()
	if req.At != "" {
		parsed, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "at must be RFC 3339"})
		}
		now = parsed
	}

	start := time.Now()
	rec, err := s.engine.Recommend(c.Context(), userID(c), now)
	if err != nil {
		s.logger.Error("Recommendation failed", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to generate recommendation"})
	}

	s.metrics.ObserveEngine(string(rec.Status), time.Since(start))
	for _, h := range rec.Held {
		s.metrics.HoldsTotal.WithLabelValues(h.Rule).Inc()
	}
	s.metrics.SkipsTotal.Add(float64(len(rec.Skipped)))
	s.metrics.AlertsTotal.Add(float64(len(rec.Alerts)))

	return c.JSON(rec)
}

// ==================== Check-ins ====================

func (s *Server) handleCreateCheckIn(c *fiber.Ctx) error {
	var req checkInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if err := req.validate(); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	rec, err := s.store.CreateCheckIn(userID(c), time.Now(), &models.CheckIn{
		EnergyLevel:  req.EnergyLevel,
		StressLevel:  req.StressLevel,
		SleepQuality: req.SleepQuality,
		Mood:         req.Mood,
		Focus:        req.Focus,
	})
	if err != nil {
		s.logger.Error("Failed to create check-in", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to create check-in"})
	}
	return c.Status(201).JSON(rec)
}

func (s *Server) handleTodayCheckIn(c *fiber.Ctx) error {
	ci, err := s.store.TodayCheckIn(userID(c), time.Now())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load check-in"})
	}
	if ci == nil {
		return c.Status(404).JSON(fiber.Map{"error": "no check-in today"})
	}
	return c.JSON(ci)
}

// ==================== Health data ====================

func (s *Server) handleCreateHealthData(c *fiber.Ctx) error {
	var req healthDataRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	}

	if err := s.store.UpsertSample(userID(c), "manual", &req.Snapshot); err != nil {
		s.logger.Error("Failed to store health data", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to store health data"})
	}
	return c.Status(201).JSON(req.Snapshot)
}

func (s *Server) handleSyncWearable(c *fiber.Ctx) error {
	var req syncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
	}

	date := time.Now().UTC().AddDate(0, 0, -1)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
		}
		date = parsed
	}

	snap, err := s.engine.SyncWearable(c.Context(), userID(c), date)
	if err != nil {
		s.metrics.WearableSyncTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Wearable sync failed", zap.Error(err))
		return c.Status(502).JSON(fiber.Map{"error": apperrors.ErrWearableUnavailable.Message})
	}
	s.metrics.WearableSyncTotal.WithLabelValues("ok").Inc()
	return c.JSON(snap)
}

func (s *Server) handleGetBaseline(c *fiber.Ctx) error {
	base, err := s.store.ComputeBaseline(userID(c), time.Now())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute baseline"})
	}
	if base == nil {
		return c.JSON(fiber.Map{
			"baseline": nil,
			"reason":   "need at least 3 days of health data",
		})
	}
	return c.JSON(fiber.Map{"baseline": base})
}

// ==================== Dispense ledger ====================

func (s *Server) handleDispense(c *fiber.Ctx) error {
	var req dispenseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if len(req.Doses) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": apperrors.ErrEmptyDispense.Message})
	}
	if req.Source == "" {
		req.Source = "recommendation"
	}

	cat := s.engine.Catalog()
	doses := make([]pipeline.Dose, 0, len(req.Doses))
	for _, d := range req.Doses {
		supp, ok := cat.Get(d.SupplementID)
		if !ok {
			return c.Status(400).JSON(fiber.Map{
				"error": apperrors.ErrUnknownSupplement.Message, "supplement_id": d.SupplementID,
			})
		}
		if d.Dose <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "dose must be positive"})
		}
		unit := d.Unit
		if unit == "" {
			unit = supp.Unit
		}
		doses = append(doses, pipeline.Dose{
			SupplementID: d.SupplementID,
			Name:         supp.Name,
			Dose:         d.Dose,
			Unit:         unit,
		})
	}

	fresh, err := s.engine.RecordDispense(c.Context(), userID(c), requestID(c), req.Source, doses, time.Now())
	if err != nil {
		s.logger.Error("Failed to record dispense", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to record dispense"})
	}
	if !fresh {
		return c.JSON(fiber.Map{"status": "duplicate", "request_id": requestID(c)})
	}

	for _, d := range doses {
		s.metrics.DosesDispensed.WithLabelValues(d.SupplementID).Inc()
	}
	return c.Status(201).JSON(fiber.Map{"status": "recorded", "request_id": requestID(c)})
}

func (s *Server) handleDispenseToday(c *fiber.Ctx) error {
	now := time.Now()
	rows, err := s.store.DispensesToday(userID(c), now)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load dispense log"})
	}
	totals, err := s.store.DispensedToday(userID(c), now)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load dispense totals"})
	}
	if rows == nil {
		rows = []store.DispenseLog{}
	}
	return c.JSON(fiber.Map{"dispenses": rows, "totals": totals})
}

// ==================== Cycling ====================

func (s *Server) handleCycles(c *fiber.Ctx) error {
	entries, err := s.engine.CycleReport(userID(c), time.Now())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to build cycle report"})
	}
	return c.JSON(entries)
}
