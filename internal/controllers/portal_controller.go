package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/poofware/property-service/internal/dtos"
	"github.com/poofware/property-service/internal/models"
	"github.com/poofware/property-service/internal/routes"
	"github.com/poofware/property-service/internal/services"
	"github.com/poofware/property-service/internal/utils"
)

const maxPhotoBytes = 16 << 20

type PortalController struct {
	portalService *services.PortalService
}

func NewPortalController(ps *services.PortalService) *PortalController {
	return &PortalController{portalService: ps}
}

// ----------------------------------------------------------------
// GET /api/v1/my/home
// ----------------------------------------------------------------
func (c *PortalController) HomeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := actorFromContext(ctx)
	if actor == nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil, nil)
		return
	}

	leaseCount, maintenanceCount, err := c.portalService.HomeCounters(ctx, actor.TenantID)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to load portal counters")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to load home", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.HomeResponse{
		LeaseCount:       leaseCount,
		MaintenanceCount: maintenanceCount,
	})
}

// ----------------------------------------------------------------
// GET /api/v1/my/leases
// ----------------------------------------------------------------
func (c *PortalController) ListLeasesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := actorFromContext(ctx)
	if actor == nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil, nil)
		return
	}

	page, size := parsePager(r)
	leases, total, err := c.portalService.ListLeases(ctx, actor.TenantID, page, size)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to list leases")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to list leases", nil, err)
		return
	}

	resp := dtos.ListLeasesResponse{
		Leases: make([]dtos.LeaseDTO, 0, len(leases)),
		Pager:  dtos.Pager{Page: page, Size: size, Total: total},
	}
	for _, l := range leases {
		resp.Leases = append(resp.Leases, toLeaseDTO(l))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/my/leases/{leaseID}
// ----------------------------------------------------------------
func (c *PortalController) LeaseDetailHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := actorFromContext(ctx)
	if actor == nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil, nil)
		return
	}

	leaseID, err := uuid.Parse(mux.Vars(r)["leaseID"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid leaseID", nil, err)
		return
	}

	lease, invoices, svcErr := c.portalService.LeaseDetail(ctx, *actor, leaseID)
	if svcErr != nil {
		respondPortalError(w, svcErr, "Failed to load lease")
		return
	}

	resp := dtos.LeaseDetailResponse{
		Lease:    toLeaseDTO(lease),
		Invoices: make([]dtos.InvoiceDTO, 0, len(invoices)),
	}
	for _, inv := range invoices {
		resp.Invoices = append(resp.Invoices, toInvoiceDTO(inv))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/my/maintenance
// ----------------------------------------------------------------
func (c *PortalController) ListMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := actorFromContext(ctx)
	if actor == nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil, nil)
		return
	}

	page, size := parsePager(r)
	reqs, total, err := c.portalService.ListMaintenance(ctx, actor.TenantID, page, size)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to list maintenance requests")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to list maintenance requests", nil, err)
		return
	}

	resp := dtos.ListMaintenanceResponse{
		Requests: make([]dtos.MaintenanceRequestDTO, 0, len(reqs)),
		Pager:    dtos.Pager{Page: page, Size: size, Total: total},
	}
	for _, m := range reqs {
		resp.Requests = append(resp.Requests, toMaintenanceDTO(m))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/my/maintenance/new
// Units the tenant may file a request against.
// ----------------------------------------------------------------
func (c *PortalController) MaintenanceNewHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := actorFromContext(ctx)
	if actor == nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil, nil)
		return
	}

	units, err := c.portalService.AllowedUnits(ctx, actor.TenantID)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to list allowed units")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to load form data", nil, err)
		return
	}

	resp := dtos.MaintenanceNewResponse{Units: make([]dtos.UnitDTO, 0, len(units))}
	for _, u := range units {
		resp.Units = append(resp.Units, dtos.UnitDTO{
			ID:         u.ID,
			Code:       u.Code,
			UnitName:   u.UnitName,
			UnitNumber: u.UnitNumber,
			RentAmount: u.RentAmount.StringFixed(2),
			Status:     string(u.Status),
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/my/maintenance/{requestID}
// ----------------------------------------------------------------
func (c *PortalController) MaintenanceItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := actorFromContext(ctx)
	if actor == nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil, nil)
		return
	}

	requestID, err := uuid.Parse(mux.Vars(r)["requestID"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid requestID", nil, err)
		return
	}

	req, svcErr := c.portalService.MaintenanceDetail(ctx, *actor, requestID)
	if svcErr != nil {
		respondPortalError(w, svcErr, "Failed to load maintenance request")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toMaintenanceDTO(req))
}

// ----------------------------------------------------------------
// POST /api/v1/my/maintenance/create
// Multipart form submit from the portal; a malformed form sends the
// browser back to the form with ?error=1 instead of a JSON error.
// ----------------------------------------------------------------
func (c *PortalController) SubmitMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := actorFromContext(ctx)
	if actor == nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil, nil)
		return
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		redirectToForm(w, r)
		return
	}
	form := r.MultipartForm

	unitIDStr := form.Value["unit_id"]
	description := form.Value["description"]
	if len(unitIDStr) == 0 || len(description) == 0 || description[0] == "" {
		redirectToForm(w, r)
		return
	}
	unitID, err := uuid.Parse(unitIDStr[0])
	if err != nil {
		redirectToForm(w, r)
		return
	}

	issueType := models.IssueOther
	if v := form.Value["issue_type"]; len(v) > 0 && v[0] != "" {
		issueType = models.IssueType(v[0])
	}

	var photo []byte
	var photoFilename string
	if headers := form.File["photo"]; len(headers) > 0 {
		file, err := headers[0].Open()
		if err != nil {
			redirectToForm(w, r)
			return
		}
		defer file.Close()
		photo, err = io.ReadAll(file)
		if err != nil {
			redirectToForm(w, r)
			return
		}
		photoFilename = headers[0].Filename
	}

	created, svcErr := c.portalService.SubmitMaintenance(ctx, actor.TenantID, services.CreateMaintenanceParams{
		UnitID:        unitID,
		IssueType:     issueType,
		Description:   description[0],
		Photo:         photo,
		PhotoFilename: photoFilename,
	})
	if svcErr != nil {
		if errors.Is(svcErr, utils.ErrUnitNotLeasedByTenant) {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Selected unit is not leased by you", nil, svcErr)
			return
		}
		utils.Logger.WithError(svcErr).Error("Failed to submit maintenance request")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not submit request", nil, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.SubmitMaintenanceResponse{ID: created.ID, Code: created.Code})
}

// ----------------------------------------------------------------
// helpers
// ----------------------------------------------------------------

func redirectToForm(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routes.PortalMaintenanceNew+"?error=1", http.StatusSeeOther)
}

func respondPortalError(w http.ResponseWriter, err error, publicMessage string) {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Not found", nil, err)
	case errors.Is(err, utils.ErrInvalidAccess):
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeInvalidAccess, "You do not have access to this document", nil, err)
	default:
		utils.Logger.WithError(err).Error(publicMessage)
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, publicMessage, nil, err)
	}
}

func parsePager(r *http.Request) (page, size int) {
	page, size = 1, services.DefaultPageSize
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			page = n
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			size = n
		}
	}
	return page, size
}

func toLeaseDTO(l *models.Lease) dtos.LeaseDTO {
	dto := dtos.LeaseDTO{
		ID:         l.ID,
		Code:       l.Code,
		UnitID:     l.UnitID,
		PropertyID: l.PropertyID,
		StartDate:  l.StartDate.Format("2006-01-02"),
		RentAmount: l.RentAmount.StringFixed(2),
		State:      string(l.State),
		CreatedAt:  l.CreatedAt,
	}
	if l.EndDate != nil {
		dto.EndDate = l.EndDate.Format("2006-01-02")
	}
	if l.NextInvoiceDate != nil {
		dto.NextInvoiceDate = l.NextInvoiceDate.Format("2006-01-02")
	}
	if l.LastInvoiceDate != nil {
		dto.LastInvoiceDate = l.LastInvoiceDate.Format("2006-01-02")
	}
	return dto
}

func toInvoiceDTO(inv *models.Invoice) dtos.InvoiceDTO {
	return dtos.InvoiceDTO{
		ID:           inv.ID,
		Number:       inv.Number,
		InvoiceDate:  inv.InvoiceDate.Format("2006-01-02"),
		DueDate:      inv.DueDate.Format("2006-01-02"),
		AmountTotal:  inv.AmountTotal.StringFixed(2),
		Status:       string(inv.Status),
		PaymentState: string(inv.PaymentState),
	}
}

func toMaintenanceDTO(m *models.MaintenanceRequest) dtos.MaintenanceRequestDTO {
	return dtos.MaintenanceRequestDTO{
		ID:            m.ID,
		Code:          m.Code,
		UnitID:        m.UnitID,
		LeaseID:       m.LeaseID,
		RequestDate:   m.RequestDate.Format("2006-01-02"),
		IssueType:     string(m.IssueType),
		Description:   m.Description,
		PhotoFilename: m.PhotoFilename,
		State:         string(m.State),
	}
}
