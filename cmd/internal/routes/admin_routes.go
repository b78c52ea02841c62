package routes

import (
	"context"
	"net/http"
	"pawsclinic/cmd/internal/service"
	"pawsclinic/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const HeaderAdminSecret = "X-Admin-Secret"

type AdminService interface {
	ListAppointments(ctx context.Context) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	ExportCSV(ctx context.Context) ([]byte, apierror.ErrorResponse)
	ExportDatabase(ctx context.Context) (*service.DatabaseExport, apierror.ErrorResponse)
}

type AdminGate interface {
	Authorize(supplied string) apierror.ErrorResponse
}

type DefaultAdminRoute struct {
	AdminService AdminService
}

func NewAdminDefault(adminService AdminService) *DefaultAdminRoute {
	return &DefaultAdminRoute{AdminService: adminService}
}

// RequireAdmin guards admin handlers. The secret comes from the
// X-Admin-Secret header, or from the "secret" query parameter when
// allowQuery is set (the query value wins when both are present).
func RequireAdmin(gate AdminGate, allowQuery bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			supplied := c.Request().Header.Get(HeaderAdminSecret)
			if allowQuery {
				if q := c.QueryParam("secret"); q != "" {
					supplied = q
				}
			}

			if apierr := gate.Authorize(supplied); apierr != nil {
				if apierr.Kind() != apierror.KindAuthorization {
					log.Errorf("admin request refused: %v", apierr)
				}
				return c.JSON(apierr.Code(), apierr)
			}
			return next(c)
		}
	}
}

func (a *DefaultAdminRoute) GetAppointments(c echo.Context) error {
	appts, apierr := a.AdminService.ListAppointments(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"success": true, "appointments": appts}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultAdminRoute) ExportCSV(c echo.Context) error {
	data, apierr := a.AdminService.ExportCSV(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="appointments.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (a *DefaultAdminRoute) DownloadDatabase(c echo.Context) error {
	export, apierr := a.AdminService.ExportDatabase(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	defer export.Content.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.Filename+`"`)
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, export.Content)
}
