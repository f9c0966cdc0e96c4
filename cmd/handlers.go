package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/justjjosh/Hermes-backend/internal/model"
	"github.com/justjjosh/Hermes-backend/internal/outreach"
	"github.com/justjjosh/Hermes-backend/internal/store"
	"github.com/justjjosh/Hermes-backend/internal/tracking"
)

// api bundles the HTTP handlers around the shared environment.
type api struct {
	env *appEnv
}

// newRouter builds the full route tree for the outreach API.
func newRouter(env *appEnv) http.Handler {
	a := &api{env: env}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", a.health)

	r.Route("/brands", func(r chi.Router) {
		r.Post("/", a.createBrand)
		r.Get("/", a.listBrands)
		r.Get("/{id}", a.getBrand)
		r.Put("/{id}", a.updateBrand)
		r.Delete("/{id}", a.deleteBrand)
	})

	r.Route("/profile", func(r chi.Router) {
		r.Post("/", a.createProfile)
		r.Get("/", a.getProfile)
		r.Put("/", a.updateProfile)
	})

	r.Route("/pitches", func(r chi.Router) {
		r.Post("/generate", a.generatePitch)
		r.Get("/", a.listPitches)
		r.Get("/{id}", a.getPitch)
		r.Post("/{id}/send", a.sendPitch)
		r.Post("/{id}/reply", a.recordReply)
	})

	r.Route("/discover", func(r chi.Router) {
		r.Post("/search", a.discoverSearch)
		r.Post("/pitch", a.discoverPitch)
	})

	r.Route("/track", func(r chi.Router) {
		r.Get("/pixel/{token}.png", a.trackPixel)
		r.Get("/click/{token}", a.trackClick)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service and store errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, outreach.ErrProfileNotConfigured):
		writeError(w, http.StatusNotFound, "creator profile not configured")
	case errors.Is(err, store.ErrDuplicateBrand):
		writeError(w, http.StatusConflict, "brand with this email already exists")
	case errors.Is(err, store.ErrProfileExists):
		writeError(w, http.StatusConflict, "profile already exists")
	case errors.Is(err, store.ErrNotDraft):
		writeError(w, http.StatusConflict, "only draft pitches can be sent")
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) createBrand(w http.ResponseWriter, r *http.Request) {
	var in model.BrandInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Name == "" || in.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	brand, err := a.env.Store.CreateBrand(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, brand)
}

func (a *api) listBrands(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.BrandFilter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	brands, err := a.env.Store.ListBrands(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

func (a *api) getBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid brand id")
		return
	}

	brand, err := a.env.Store.GetBrand(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brand)
}

func (a *api) updateBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid brand id")
		return
	}

	var upd model.BrandUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	brand, err := a.env.Store.UpdateBrand(r.Context(), id, upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brand)
}

func (a *api) deleteBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid brand id")
		return
	}

	if err := a.env.Store.DeleteBrand(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *api) createProfile(w http.ResponseWriter, r *http.Request) {
	var in model.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := a.env.Store.CreateProfile(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (a *api) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := a.env.Store.GetProfile(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "creator profile not configured")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (a *api) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in model.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := a.env.Store.UpdateProfile(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (a *api) generatePitch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BrandID int64 `json:"brand_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BrandID <= 0 {
		writeError(w, http.StatusBadRequest, "brand_id is required")
		return
	}

	pitch, err := a.env.Manager.Generate(r.Context(), req.BrandID)
	if err != nil {
		var genErr *outreach.GenerationError
		if errors.As(err, &genErr) {
			writeError(w, http.StatusBadGateway, genErr.Error())
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pitch)
}

func (a *api) listPitches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.PitchFilter{
		Status: model.PitchStatus(q.Get("status")),
		Mode:   model.PitchMode(q.Get("mode")),
	}
	filter.BrandID, _ = strconv.ParseInt(q.Get("brand_id"), 10, 64)
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	pitches, err := a.env.Store.ListPitches(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pitches)
}

func (a *api) getPitch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid pitch id")
		return
	}

	pitch, err := a.env.Store.GetPitch(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pitch)
}

func (a *api) sendPitch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid pitch id")
		return
	}

	pitch, err := a.env.Manager.Send(r.Context(), id)
	if err != nil {
		var delErr *outreach.DeliveryError
		if errors.As(err, &delErr) {
			writeError(w, http.StatusBadGateway, delErr.Error())
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pitch)
}

func (a *api) recordReply(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid pitch id")
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	pitch, err := a.env.Manager.RecordReply(r.Context(), id, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pitch)
}

func (a *api) discoverSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BrandName string `json:"brand_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BrandName == "" {
		writeError(w, http.StatusBadRequest, "brand_name is required")
		return
	}

	discovery, err := a.env.Provider.DiscoverBrandContacts(r.Context(), req.BrandName)
	if err != nil {
		writeError(w, http.StatusBadGateway, "brand discovery failed")
		return
	}
	writeJSON(w, http.StatusOK, discovery)
}

func (a *api) discoverPitch(w http.ResponseWriter, r *http.Request) {
	var req model.OutreachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BrandName == "" || len(req.Contacts) == 0 {
		writeError(w, http.StatusBadRequest, "brand_name and selected_contacts are required")
		return
	}

	report, err := a.env.Pipeline.Run(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// trackPixel always serves the 1x1 PNG regardless of token validity so
// email clients never see a broken image.
func (a *api) trackPixel(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if _, err := a.env.Manager.RecordOpen(r.Context(), token); err != nil {
		zap.L().Debug("pixel open not recorded",
			zap.String("token", token),
			zap.Error(err))
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(tracking.TransparentPNG)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(tracking.TransparentPNG)
}

// trackClick records the click and forwards to the destination when a safe
// url parameter is present.
func (a *api) trackClick(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if _, err := a.env.Manager.RecordClick(r.Context(), token); err != nil {
		zap.L().Debug("click not recorded",
			zap.String("token", token),
			zap.Error(err))
	}

	dest := r.URL.Query().Get("url")
	if dest != "" {
		if u, err := url.Parse(dest); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
			http.Redirect(w, r, dest, http.StatusFound)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
