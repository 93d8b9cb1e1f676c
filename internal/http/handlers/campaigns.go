package handlers

import (
	"net/http"
	"strconv"

	apierrors "campaign-service/internal/errors"
	"campaign-service/internal/models"
	"campaign-service/internal/service"
	"campaign-service/internal/storage"
)

type campaignCreateRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Budget      float64 `json:"budget"`
	IsActive    bool    `json:"is_active"`
}

type campaignUpdateRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	StartDate   *string  `json:"start_date,omitempty"`
	EndDate     *string  `json:"end_date,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

type campaignResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Budget      float64 `json:"budget"`
	IsActive    bool    `json:"is_active"`
}

// campaignListResponse — страница списка с общим количеством.
type campaignListResponse struct {
	Items []campaignResponse `json:"items"`
	Total int64              `json:"total"`
}

func newCampaignResponse(c *models.Campaign) campaignResponse {
	return campaignResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		StartDate:   c.StartDate.Format(dateLayout),
		EndDate:     c.EndDate.Format(dateLayout),
		Budget:      c.Budget,
		IsActive:    c.IsActive,
	}
}

// ListCampaigns — GET /campaigns.
// Query: limit, offset, is_active, start_date, end_date (YYYY-MM-DD).
func (h *Handlers) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	filter, err := campaignFilterFromQuery(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	page, err := h.svc.ListCampaigns(r.Context(), filter)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := campaignListResponse{
		Items: make([]campaignResponse, 0, len(page.Items)),
		Total: page.Total,
	}
	for i := range page.Items {
		out.Items = append(out.Items, newCampaignResponse(&page.Items[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

// GetCampaign — GET /campaigns/{id}.
func (h *Handlers) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	campaign, err := h.svc.CampaignByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newCampaignResponse(campaign))
}

// CreateCampaign — POST /campaigns.
func (h *Handlers) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var in campaignCreateRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	start, err := parseDate(in.StartDate)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	end, err := parseDate(in.EndDate)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	campaign, err := h.svc.CreateCampaign(r.Context(), models.Campaign{
		Name:        in.Name,
		Description: in.Description,
		StartDate:   start,
		EndDate:     end,
		Budget:      in.Budget,
		IsActive:    in.IsActive,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newCampaignResponse(campaign))
}

// UpdateCampaign — PUT /campaigns/{id} (частичное обновление).
func (h *Handlers) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in campaignUpdateRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	upd := service.CampaignUpdate{
		Name:        in.Name,
		Description: in.Description,
		Budget:      in.Budget,
		IsActive:    in.IsActive,
	}

	if in.StartDate != nil {
		start, err := parseDate(*in.StartDate)
		if err != nil {
			apierrors.WriteError(w, r, err)
			return
		}
		upd.StartDate = &start
	}

	if in.EndDate != nil {
		end, err := parseDate(*in.EndDate)
		if err != nil {
			apierrors.WriteError(w, r, err)
			return
		}
		upd.EndDate = &end
	}

	campaign, err := h.svc.UpdateCampaign(r.Context(), id, upd)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newCampaignResponse(campaign))
}

// DeleteCampaign — DELETE /campaigns/{id}.
func (h *Handlers) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.DeleteCampaign(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// campaignFilterFromQuery разбирает query-параметры списка кампаний.
func campaignFilterFromQuery(r *http.Request) (storage.CampaignFilter, error) {
	var filter storage.CampaignFilter

	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, apierrors.ErrBadRequest
		}
		filter.Limit = n
	}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, apierrors.ErrBadRequest
		}
		filter.Offset = n
	}

	if v := q.Get("is_active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apierrors.ErrBadRequest
		}
		filter.IsActive = &b
	}

	if v := q.Get("start_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}

	if v := q.Get("end_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &t
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, apierrors.ErrBadRequest
	}

	return filter, nil
}
