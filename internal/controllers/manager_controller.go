package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/poofware/property-service/internal/dtos"
	"github.com/poofware/property-service/internal/models"
	"github.com/poofware/property-service/internal/services"
	"github.com/poofware/property-service/internal/utils"
	"github.com/shopspring/decimal"
)

// ManagerController is the back-office surface: catalog setup, lease
// lifecycle, invoicing and maintenance dispatch. Every handler requires the
// internal role.
type ManagerController struct {
	catalogService     *services.CatalogService
	leaseService       *services.LeaseService
	billingService     *services.BillingService
	paymentService     *services.PaymentService
	maintenanceService *services.MaintenanceService
}

func NewManagerController(
	cs *services.CatalogService,
	ls *services.LeaseService,
	bs *services.BillingService,
	ps *services.PaymentService,
	ms *services.MaintenanceService,
) *ManagerController {
	return &ManagerController{
		catalogService:     cs,
		leaseService:       ls,
		billingService:     bs,
		paymentService:     ps,
		maintenanceService: ms,
	}
}

var managerValidate = validator.New()

func (c *ManagerController) requireInternal(w http.ResponseWriter, r *http.Request) *services.Actor {
	actor := actorFromContext(r.Context())
	if actor == nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil, nil)
		return nil
	}
	if !actor.Internal {
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeInvalidAccess, "Internal access required", nil, nil)
		return nil
	}
	return actor
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", err, nil)
		return false
	}
	if err := managerValidate.StructCtx(r.Context(), dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed", validationErrors, nil)
		} else {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid request data", err, nil)
		}
		return false
	}
	return true
}

// ----------------------------------------------------------------
// POST /api/v1/manager/properties
// ----------------------------------------------------------------
func (c *ManagerController) CreatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	if c.requireInternal(w, r) == nil {
		return
	}

	var req dtos.CreatePropertyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	prop, err := c.catalogService.CreateProperty(r.Context(), services.CreatePropertyParams{
		PropertyName: req.Name,
		Street:       req.Street,
		City:         req.City,
		State:        req.State,
		ZipCode:      req.Zip,
		ManagerEmail: req.ManagerEmail,
	})
	if err != nil {
		utils.Logger.WithError(err).Error("Create property error")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not create property", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.CreatePropertyResponse{ID: prop.ID, Code: prop.Code})
}

// ----------------------------------------------------------------
// GET /api/v1/manager/properties
// ----------------------------------------------------------------
func (c *ManagerController) ListPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	if c.requireInternal(w, r) == nil {
		return
	}

	props, err := c.catalogService.ListProperties(r.Context())
	if err != nil {
		utils.Logger.WithError(err).Error("List properties error")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not list properties", nil, err)
		return
	}
	resp := dtos.ListPropertiesResponse{Properties: make([]dtos.PropertyDTO, 0, len(props))}
	for _, p := range props {
		resp.Properties = append(resp.Properties, dtos.PropertyDTO{
			ID:           p.ID,
			Code:         p.Code,
			Name:         p.PropertyName,
			Street:       p.Street,
			City:         p.City,
			State:        p.State,
			Zip:          p.ZipCode,
			ManagerEmail: p.ManagerEmail,
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/manager/properties/{propertyID}
// ----------------------------------------------------------------
func (c *ManagerController) PropertyDetailHandler(w http.ResponseWriter, r *http.Request) {
	if c.requireInternal(w, r) == nil {
		return
	}

	propertyID, err := uuid.Parse(mux.Vars(r)["propertyID"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid propertyID", nil, err)
		return
	}

	prop, units, svcErr := c.catalogService.GetProperty(r.Context(), propertyID)
	if svcErr != nil {
		if errors.Is(svcErr, utils.ErrNotFound) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Property not found", nil, svcErr)
			return
		}
		utils.Logger.WithError(svcErr).Error("Property detail error")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not load property", nil, svcErr)
		return
	}

	unitDTOs := make([]dtos.UnitDTO, 0, len(units))
	for _, u := range units {
		unitDTOs = append(unitDTOs, dtos.UnitDTO{
			ID:         u.ID,
			Code:       u.Code,
			UnitName:   u.UnitName,
			UnitNumber: u.UnitNumber,
			RentAmount: u.RentAmount.StringFixed(2),
			Status:     string(u.Status),
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"property": dtos.PropertyDTO{
			ID:           prop.ID,
			Code:         prop.Code,
			Name:         prop.PropertyName,
			Street:       prop.Street,
			City:         prop.City,
			State:        prop.State,
			Zip:          prop.ZipCode,
			ManagerEmail: prop.ManagerEmail,
		},
		"units": unitDTOs,
	})
}

// ----------------------------------------------------------------
// POST /api/v1/manager/units
// ----------------------------------------------------------------
func (c *ManagerController) CreateUnitHandler(w http.ResponseWriter, r *http.Request) {
	if c.requireInternal(w, r) == nil {
		return
	}

	var req dtos.CreateUnitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rent, err := parseAmount(req.RentAmount)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid rent_amount", nil, err)
		return
	}

	unit, svcErr := c.catalogService.CreateUnit(r.Context(), services.CreateUnitParams{
		PropertyID: req.PropertyID,
		UnitName:   req.UnitName,
		UnitNumber: req.UnitNumber,
		RentAmount: rent,
	})
	if svcErr != nil {
		if errors.Is(svcErr, utils.ErrNotFound) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Property not found", nil, svcErr)
			return
		}
		utils.Logger.WithError(svcErr).Error("Create unit error")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not create unit", nil, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.CreateUnitResponse{ID: unit.ID, Code: unit.Code})
}

// ----------------------------------------------------------------
// POST /api/v1/manager/leases
// ----------------------------------------------------------------
func (c *ManagerController) CreateLeaseHandler(w http.ResponseWriter, r *http.Request) {
	if c.requireInternal(w, r) == nil {
		return
	}

	var req dtos.CreateLeaseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid start_date", nil, err)
		return
	}
	var end *time.Time
	if req.EndDate != "" {
		e, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid end_date", nil, err)
			return
		}
		end = &e
	}
	rent, err := parseAmount(req.RentAmount)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid rent_amount", nil, err)
		return
	}

	lease, svcErr := c.leaseService.CreateLease(r.Context(), services.CreateLeaseParams{
		UnitID:        req.UnitID,
		TenantID:      req.TenantID,
		StartDate:     start,
		EndDate:       end,
		RentAmount:    rent,
		RentProductID: req.RentProductID,
	})
	if svcErr != nil {
		if errors.Is(svcErr, utils.ErrNotFound) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Unit not found", nil, svcErr)
			return
		}
		utils.Logger.WithError(svcErr).Error("Create lease error")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not create lease", nil, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.CreateLeaseResponse{ID: lease.ID, Code: lease.Code})
}

// ----------------------------------------------------------------
// POST /api/v1/manager/leases/{leaseID}/activate
// POST /api/v1/manager/leases/{leaseID}/end
// ----------------------------------------------------------------
func (c *ManagerController) ActivateLeaseHandler(w http.ResponseWriter, r *http.Request) {
	c.leaseTransition(w, r, c.leaseService.Activate)
}

func (c *ManagerController) EndLeaseHandler(w http.ResponseWriter, r *http.Request) {
	c.leaseTransition(w, r, c.leaseService.End)
}

func (c *ManagerController) leaseTransition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id uuid.UUID) (*models.Lease, error),
) {
	if c.requireInternal(w, r) == nil {
		return
	}

	leaseID, err := uuid.Parse(mux.Vars(r)["leaseID"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid leaseID", nil, err)
		return
	}

	lease, svcErr := fn(r.Context(), leaseID)
	if svcErr != nil {
		respondLeaseError(w, svcErr, "Could not update lease state")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toLeaseDTO(lease))
}

// ----------------------------------------------------------------
// PUT /api/v1/manager/leases/{leaseID}/dates
// ----------------------------------------------------------------
func (c *ManagerController) UpdateLeaseDatesHandler(w http.ResponseWriter, r *http.Request) {
	if c.requireInternal(w, r) == nil {
		return
	}

	leaseID, err := uuid.Parse(mux.Vars(r)["leaseID"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid leaseID", nil, err)
		return
	}

	var req dtos.UpdateLeaseDatesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid start_date", nil, err)
		return
	}
	var end *time.Time
	if req.EndDate != "" {
		e, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid end_date", nil, err)
			return
		}
		end = &e
	}

	lease, svcErr := c.leaseService.UpdateDates(r.Context(), leaseID, start, end)
	if svcErr != nil {
		respondLeaseError(w, svcErr, "Could not update lease dates")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toLeaseDTO(lease))
}

// ----------------------------------------------------------------
// POST /api/v1/manager/leases/{leaseID}/generate-invoice
// ----------------------------------------------------------------
func (c *ManagerController) GenerateInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	if c.requireInternal(w, r) == nil {
		return
	}

	leaseID, err := uuid.Parse(mux.Vars(r)["leaseID"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid leaseID", nil, err)
		return
	}

	inv, svcErr := c.billingService.GenerateInvoiceForLease(r.Context(), leaseID, nil)
	if svcErr != nil {
		switch {
		case errors.Is(svcErr, utils.ErrNotFound):
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Lease not found", nil, svcErr)
		case errors.Is(svcErr, utils.ErrLeaseNotActive):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Lease is not active", nil, svcErr)
		case errors.Is(svcErr, utils.ErrMissingRentProduct):
			utils.RespondErrorWithCode(w, http.StatusUnprocessableEntity, utils.ErrCodeConfiguration, "Lease has no rent product configured", nil, svcErr)
		default:
			utils.Logger.WithError(svcErr).Error("Generate invoice error")
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not generate invoice", nil, svcErr)
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.GenerateInvoiceResponse{InvoiceID: inv.ID, Number: inv.Number})
}

// ----------------------------------------------------------------
// POST /api/v1/manager/invoices/{invoiceID}/mark-paid
// ----------------------------------------------------------------
func (c *ManagerController) MarkInvoicePaidHandler(w http.ResponseWriter, r *http.Request) {
	if c.requireInternal(w, r) == nil {
		return
	}

	invoiceID, err := uuid.Parse(mux.Vars(r)["invoiceID"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid invoiceID", nil, err)
		return
	}

	inv, svcErr := c.paymentService.MarkInvoicePaid(r.Context(), invoiceID)
	if svcErr != nil {
		if errors.Is(svcErr, utils.ErrNotFound) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Invoice not found", nil, svcErr)
			return
		}
		utils.Logger.WithError(svcErr).Error("Mark invoice paid error")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not mark invoice paid", nil, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toInvoiceDTO(inv))
}

// ----------------------------------------------------------------
// POST /api/v1/manager/maintenance/{requestID}/assign
// POST /api/v1/manager/maintenance/{requestID}/start
// POST /api/v1/manager/maintenance/{requestID}/done
// PUT  /api/v1/manager/maintenance/{requestID}/relink
// ----------------------------------------------------------------
func (c *ManagerController) AssignMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	if c.requireInternal(w, r) == nil {
		return
	}

	requestID, err := uuid.Parse(mux.Vars(r)["requestID"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid requestID", nil, err)
		return
	}

	var req dtos.AssignMaintenanceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if svcErr := c.maintenanceService.Assign(r.Context(), requestID, req.AssignedToID); svcErr != nil {
		respondMaintenanceError(w, svcErr, "Could not assign request")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (c *ManagerController) StartMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	if c.requireInternal(w, r) == nil {
		return
	}

	requestID, err := uuid.Parse(mux.Vars(r)["requestID"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid requestID", nil, err)
		return
	}

	if svcErr := c.maintenanceService.SetInProgress(r.Context(), requestID); svcErr != nil {
		respondMaintenanceError(w, svcErr, "Could not start request")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "in_progress"})
}

func (c *ManagerController) DoneMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	if c.requireInternal(w, r) == nil {
		return
	}

	requestID, err := uuid.Parse(mux.Vars(r)["requestID"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid requestID", nil, err)
		return
	}

	if svcErr := c.maintenanceService.SetDone(r.Context(), requestID); svcErr != nil {
		respondMaintenanceError(w, svcErr, "Could not complete request")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "done"})
}

// RelinkMaintenanceHandler moves a request to another tenant/unit pair and
// re-derives the lease link under the same consistency guard as creation.
func (c *ManagerController) RelinkMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	actor := c.requireInternal(w, r)
	if actor == nil {
		return
	}

	requestID, err := uuid.Parse(mux.Vars(r)["requestID"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid requestID", nil, err)
		return
	}

	var req dtos.RelinkMaintenanceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, svcErr := c.maintenanceService.Relink(r.Context(), *actor, requestID, req.TenantID, req.UnitID)
	if svcErr != nil {
		respondMaintenanceError(w, svcErr, "Could not relink request")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toMaintenanceDTO(updated))
}

// ----------------------------------------------------------------
// helpers
// ----------------------------------------------------------------

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func respondLeaseError(w http.ResponseWriter, err error, publicMessage string) {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Lease not found", nil, err)
	case errors.Is(err, utils.ErrRowVersionConflict), errors.Is(err, utils.ErrNoRowsUpdated):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeRowVersionConflict, "Another update occurred, please refresh", nil, err)
	default:
		utils.Logger.WithError(err).Error(publicMessage)
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, publicMessage, nil, err)
	}
}

func respondMaintenanceError(w http.ResponseWriter, err error, publicMessage string) {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Request not found", nil, err)
	case errors.Is(err, utils.ErrAssigneeRequired):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Request has no assignee", nil, err)
	case errors.Is(err, utils.ErrUnitNotLeasedByTenant):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Tenant does not lease this unit", nil, err)
	case errors.Is(err, utils.ErrInvalidTransition):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid state transition", nil, err)
	case errors.Is(err, utils.ErrRowVersionConflict), errors.Is(err, utils.ErrNoRowsUpdated):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeRowVersionConflict, "Another update occurred, please refresh", nil, err)
	default:
		utils.Logger.WithError(err).Error(publicMessage)
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, publicMessage, nil, err)
	}
}
