package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/collegia/collegia/core/schedule"
	"github.com/collegia/collegia/core/user"
)

type scheduleApi struct {
	svc      *schedule.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := scheduleApi{
		svc:      deps.ScheduleSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/slots", jwt)
	sg.GET("/open", api.openSlots, roleMiddleware(user.RoleStudent))
	sg.GET("", api.mySlots, roleMiddleware(user.RoleProfessor))
	sg.POST("", api.create, roleMiddleware(user.RoleProfessor))
	sg.DELETE("/:id", api.destroy, roleMiddleware(user.RoleProfessor))
}

// Handlers

func (api *scheduleApi) create(ctx echo.Context) error {
	var data schedule.NewAvailability
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAvailability")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	slot, err := api.svc.Create(ctx.Request().Context(), ctxUsr.Name, data)
	if err != nil {
		return errors.Wrap(err, "creating availability")
	}
	return ctx.JSON(http.StatusCreated, slot)
}

func (api *scheduleApi) openSlots(ctx echo.Context) error {
	slots, err := api.svc.OpenSlots(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying open slots")
	}
	if slots == nil {
		slots = []schedule.Availability{}
	}
	return ctx.JSON(http.StatusOK, slots)
}

func (api *scheduleApi) mySlots(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	slots, err := api.svc.ProfessorSlots(ctx.Request().Context(), ctxUsr.Name)
	if err != nil {
		return errors.Wrap(err, "querying professor slots")
	}
	if slots == nil {
		slots = []schedule.Availability{}
	}
	return ctx.JSON(http.StatusOK, slots)
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), ctxUsr.Name); err != nil {
		switch errors.Cause(err) {
		case schedule.ErrNotFound:
			return errHttpNotFound
		case schedule.ErrSlotBooked:
			return errSlotAlreadyBooked
		}
		return errors.Wrap(err, "deleting availability")
	}
	return ctx.NoContent(http.StatusNoContent)
}
