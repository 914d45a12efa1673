package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/meeting"
	"github.com/collegia/collegia/core/schedule"
	"github.com/collegia/collegia/core/user"
)

type meetingApi struct {
	svc      *meeting.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerMeetingAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := meetingApi{
		svc:      deps.MeetingSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	g.POST("/slots/:id/book", api.book, jwt, roleMiddleware(user.RoleStudent))

	mg := g.Group("/meetings", jwt)
	mg.GET("", api.list)
	mg.DELETE("/:id", api.cancel)
}

// Handlers

func (api *meetingApi) book(ctx echo.Context) error {
	var data meeting.BookingForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BookingForm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	mtg, err := api.svc.Book(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data)
	if err != nil {
		switch errors.Cause(err) {
		case schedule.ErrNotFound:
			return errHttpNotFound
		case schedule.ErrSlotBooked:
			return errSlotAlreadyBooked
		case meeting.ErrProfessorNotFound:
			return core.NewValidationError(meeting.ErrProfessorNotFound)
		}
		return errors.Wrap(err, "booking slot")
	}
	return ctx.JSON(http.StatusCreated, mtg)
}

// list returns the calling user's meetings: bookings for a student,
// appointments for a professor.
func (api *meetingApi) list(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var meetings []meeting.Meeting
	if ctxUsr.IsProfessor() {
		meetings, err = api.svc.ProfessorMeetings(ctx.Request().Context(), ctxUsr.Email)
	} else {
		meetings, err = api.svc.StudentMeetings(ctx.Request().Context(), ctxUsr.Email)
	}
	if err != nil {
		return errors.Wrap(err, "querying meetings")
	}
	if meetings == nil {
		meetings = []meeting.Meeting{}
	}
	return ctx.JSON(http.StatusOK, meetings)
}

func (api *meetingApi) cancel(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Cancel(ctx.Request().Context(), ctx.Param("id"), ctxUsr); err != nil {
		if errors.Cause(err) == meeting.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "cancelling meeting")
	}
	return ctx.NoContent(http.StatusNoContent)
}
