package dashboard

import (
	"net/http"

	"github.com/Ramchandran06/E-commerce-backend/api/responses"
	internaldashboard "github.com/Ramchandran06/E-commerce-backend/internal/dashboard"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
)

// SalesSummary returns per-day revenue, cancelled orders excluded.
func SalesSummary(svc internaldashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		rows, err := svc.SalesSummary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rows == nil {
			rows = []internaldashboard.DailySales{}
		}
		responses.WriteSuccess(w, rows)
	}
}

func Stats(svc internaldashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
