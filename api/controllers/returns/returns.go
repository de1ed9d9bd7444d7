package returns

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Ramchandran06/E-commerce-backend/api/middleware"
	"github.com/Ramchandran06/E-commerce-backend/api/responses"
	"github.com/Ramchandran06/E-commerce-backend/api/validators"
	internalreturns "github.com/Ramchandran06/E-commerce-backend/internal/returns"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db/models"
	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
)

const maxCommentLength = 1000

type requestReturnRequest struct {
	OrderItemID string `json:"orderItemId" validate:"required,uuid"`
	Reason      string `json:"reason" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
}

type resolveReturnRequest struct {
	Status       string `json:"status" validate:"required"`
	AdminComment string `json:"adminComment"`
}

type returnResponse struct {
	ReturnID     uuid.UUID          `json:"returnId"`
	OrderID      uuid.UUID          `json:"orderId"`
	OrderItemID  uuid.UUID          `json:"orderItemId"`
	ProductID    uuid.UUID          `json:"productId"`
	Quantity     int                `json:"quantity"`
	Reason       string             `json:"reason"`
	Status       enums.ReturnStatus `json:"returnStatus"`
	AdminComment *string            `json:"adminComment"`
	RefundID     *string            `json:"refundId,omitempty"`
	RequestedAt  time.Time          `json:"requestedAt"`
}

func newReturnResponse(ret *models.ProductReturn) returnResponse {
	return returnResponse{
		ReturnID:     ret.ID,
		OrderID:      ret.OrderID,
		OrderItemID:  ret.OrderItemID,
		ProductID:    ret.ProductID,
		Quantity:     ret.Quantity,
		Reason:       ret.Reason,
		Status:       ret.Status,
		AdminComment: ret.AdminComment,
		RefundID:     ret.RefundReference,
		RequestedAt:  ret.RequestedAt,
	}
}

// Request files a return for one delivered order line.
func Request(svc internalreturns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "returns service unavailable"))
			return
		}
		userID, err := middleware.AuthenticatedUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload requestReturnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := uuid.Parse(payload.OrderItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid orderItemId"))
			return
		}

		ret, err := svc.RequestReturn(r.Context(), userID, internalreturns.RequestInput{
			OrderItemID: itemID,
			Reason:      payload.Reason,
			Quantity:    payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Return request submitted successfully.", newReturnResponse(ret))
	}
}

// AdminList pages through return requests, newest first.
func AdminList(svc internalreturns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "returns service unavailable"))
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminResolve approves or rejects a pending return.
func AdminResolve(svc internalreturns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "returns service unavailable"))
			return
		}
		returnID, err := validators.ParseUUIDParam(r, "returnId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload resolveReturnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithReturnID(ctx, returnID.String())
		}
		ret, err := svc.ResolveReturn(ctx, internalreturns.ResolveInput{
			ReturnID:     returnID,
			Decision:     enums.ReturnDecision(payload.Status),
			AdminComment: validators.SanitizeString(payload.AdminComment, maxCommentLength),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Return status updated successfully.", newReturnResponse(ret))
	}
}
