package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/catalog"
)

type catalogApi struct {
	svc *catalog.Service
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := catalogApi{svc: deps.CatalogSvc}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, teacherMiddleware())

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, teacherMiddleware())
	dg.DELETE("", api.destroy, teacherMiddleware())

	dg.GET("/students", api.queryStudents)
	dg.POST("/students", api.enroll)
	dg.DELETE("/students/:sid", api.unenroll)

	sg := g.Group("/students/:id", jwt)
	sg.GET("/courses", api.queryStudentCourses)
}

// Handlers

func (api *catalogApi) create(ctx echo.Context) error {
	var data catalog.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	crs, err := api.svc.Create(ctx.Request().Context(), data, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

// query lists courses: a teacher sees their own, everyone else sees all.
func (api *catalogApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var courses []catalog.Course
	if claims.IsTeacher {
		courses, err = api.svc.CoursesForTeacher(ctx.Request().Context(), claims.Subject)
	} else {
		courses, err = api.svc.List(ctx.Request().Context())
	}
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []catalog.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *catalogApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *catalogApi) update(ctx echo.Context) error {
	var data catalog.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *catalogApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) queryStudents(ctx echo.Context) error {
	students, err := api.svc.EnrolledStudents(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying enrolled students")
	}
	if students == nil {
		students = []catalog.EnrolledStudent{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *catalogApi) enroll(ctx echo.Context) error {
	var data EnrollRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}

	// students enroll themselves; teachers enroll by student id
	if data.StudentID == "" {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		data.StudentID = claims.Subject
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), ctx.Param("id"), data.StudentID)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *catalogApi) unenroll(ctx echo.Context) error {
	err := api.svc.Unenroll(ctx.Request().Context(), ctx.Param("id"), ctx.Param("sid"))
	if err != nil {
		return errors.Wrap(err, "unenrolling student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) queryStudentCourses(ctx echo.Context) error {
	courses, err := api.svc.CoursesForStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying student courses")
	}
	if courses == nil {
		courses = []catalog.CourseWithTeacher{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

type EnrollRequest struct {
	StudentID string `json:"student_id"`
}
