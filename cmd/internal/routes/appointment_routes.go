package routes

import (
	"context"
	"net/http"
	"pawsclinic/cmd/internal/service"
	"pawsclinic/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type AppointmentService interface {
	SubmitAppointment(ctx context.Context, req *service.AppointmentRequest) (*service.IntakeResult, apierror.ErrorResponse)
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
}

func NewAppointmentDefault(apptService AppointmentService) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService}
}

// SendSMS accepts a website submission. The stored row id is never returned.
func (a *DefaultAppointmentRoute) SendSMS(c echo.Context) error {
	var req service.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	result, apierr := a.AppointmentService.SubmitAppointment(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"success": true, "sid": result.SID}
	return c.JSON(http.StatusOK, &resp)
}

func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
