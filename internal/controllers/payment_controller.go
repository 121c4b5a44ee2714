package controllers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/poofware/property-service/internal/dtos"
	"github.com/poofware/property-service/internal/services"
	"github.com/poofware/property-service/internal/utils"
)

type PaymentController struct {
	paymentService *services.PaymentService
}

func NewPaymentController(ps *services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: ps}
}

// ----------------------------------------------------------------
// POST /api/v1/invoices/{invoiceID}/transaction
// Opens the payment flow. Reachable with a valid access_token even
// without a session; authenticated readers get a token minted.
// ----------------------------------------------------------------
func (c *PaymentController) TransactionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invoiceID, err := uuid.Parse(mux.Vars(r)["invoiceID"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid invoiceID", nil, err)
		return
	}
	token := r.URL.Query().Get("access_token")
	actor := actorFromContext(ctx)

	inv, effectiveToken, svcErr := c.paymentService.ResolveInvoiceAccess(ctx, invoiceID, token, actor)
	if svcErr != nil {
		switch {
		case errors.Is(svcErr, utils.ErrInvalidAccess):
			utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeInvalidAccess, "You do not have access to this document", nil, svcErr)
		case errors.Is(svcErr, utils.ErrNotFound):
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Invoice not found", nil, svcErr)
		default:
			utils.Logger.WithError(svcErr).Error("Invoice transaction error")
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not open payment flow", nil, svcErr)
		}
		return
	}

	portalURL, svcErr := c.paymentService.InvoicePortalURL(ctx, inv.ID)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Invoice portal URL error")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not open payment flow", nil, svcErr)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.InvoiceTransactionResponse{
		InvoiceID:    inv.ID,
		Number:       inv.Number,
		AmountTotal:  inv.AmountTotal.StringFixed(2),
		PaymentState: string(inv.PaymentState),
		AccessToken:  effectiveToken,
		PortalURL:    portalURL,
	})
}

// ----------------------------------------------------------------
// GET /api/v1/invoices/{invoiceID}/portal-url
// Internal callers only; the share link always carries the token.
// ----------------------------------------------------------------
func (c *PaymentController) PortalURLHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := actorFromContext(ctx)
	if actor == nil || !actor.Internal {
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeInvalidAccess, "Internal access required", nil, nil)
		return
	}

	invoiceID, err := uuid.Parse(mux.Vars(r)["invoiceID"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "invalid invoiceID", nil, err)
		return
	}

	portalURL, svcErr := c.paymentService.InvoicePortalURL(ctx, invoiceID)
	if svcErr != nil {
		if errors.Is(svcErr, utils.ErrNotFound) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Invoice not found", nil, svcErr)
			return
		}
		utils.Logger.WithError(svcErr).Error("Invoice portal URL error")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not build portal URL", nil, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"portal_url": portalURL})
}
