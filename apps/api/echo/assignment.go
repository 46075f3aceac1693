package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/assignment"
)

type assignmentApi struct {
	svc *assignment.Service
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := assignmentApi{svc: deps.AssignmentSvc}

	cg := g.Group("/courses/:id/homeworks", jwt)
	cg.GET("", api.queryForCourse)
	cg.POST("", api.assign, teacherMiddleware())

	hg := g.Group("/homeworks/:id", jwt)
	hg.GET("", api.retrieve)
	hg.PUT("", api.update, teacherMiddleware())
	hg.DELETE("", api.destroy, teacherMiddleware())
	hg.GET("/submissions", api.querySubmissions)
	hg.POST("/submissions", api.submit, studentMiddleware())

	g.PUT("/submissions/:id/grade", api.grade, jwt, teacherMiddleware())

	g.GET("/students/:id/submissions", api.queryStudentSubmissions, jwt)
}

// Handlers

func (api *assignmentApi) assign(ctx echo.Context) error {
	var data assignment.NewHomework
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewHomework")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	hw, err := api.svc.Assign(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "assigning homework")
	}
	return ctx.JSON(http.StatusCreated, hw)
}

// queryForCourse lists a course's homeworks; students get theirs annotated
// with the derived submission status.
func (api *assignmentApi) queryForCourse(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqCtx := ctx.Request().Context()
	if claims.IsStudent {
		homeworks, err := api.svc.ListForCourseWithStatus(reqCtx, ctx.Param("id"), claims.Subject)
		if err != nil {
			return errors.Wrap(err, "querying homeworks with status")
		}
		if homeworks == nil {
			homeworks = []assignment.HomeworkWithStatus{}
		}
		return ctx.JSON(http.StatusOK, homeworks)
	}

	homeworks, err := api.svc.ListForCourse(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying homeworks")
	}
	if homeworks == nil {
		homeworks = []assignment.Homework{}
	}
	return ctx.JSON(http.StatusOK, homeworks)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	hw, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding homework by ID")
	}
	return ctx.JSON(http.StatusOK, hw)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	var data assignment.UpdateHomework
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateHomework")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	hw, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating homework")
	}
	return ctx.JSON(http.StatusOK, hw)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting homework")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// querySubmissions lists a homework's submissions for a teacher; a student
// gets their own submission only.
func (api *assignmentApi) querySubmissions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqCtx := ctx.Request().Context()
	if claims.IsTeacher {
		subs, err := api.svc.SubmissionsForHomework(reqCtx, ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "querying submissions")
		}
		if subs == nil {
			subs = []assignment.SubmissionWithStudent{}
		}
		return ctx.JSON(http.StatusOK, subs)
	}

	sub, err := api.svc.SubmissionByPair(reqCtx, ctx.Param("id"), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding own submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	var data assignment.SubmissionInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmissionInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	sub, err := api.svc.Submit(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "submitting homework")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *assignmentApi) grade(ctx echo.Context) error {
	var data assignment.GradeInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeInput")
	}

	sub, err := api.svc.Grade(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *assignmentApi) queryStudentSubmissions(ctx echo.Context) error {
	subs, err := api.svc.SubmissionsForStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying student submissions")
	}
	if subs == nil {
		subs = []assignment.StudentSubmission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}
