package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/resource"
)

type resourceApi struct {
	svc *resource.Service
}

func registerResourceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := resourceApi{svc: deps.ResourceSvc}

	cg := g.Group("/courses/:id", jwt)
	cg.GET("/resources", api.queryForCourse)
	cg.POST("/folders", api.createFolder, teacherMiddleware())

	fg := g.Group("/folders/:id", jwt)
	fg.PUT("", api.renameFolder, teacherMiddleware())
	fg.DELETE("", api.destroyFolder, teacherMiddleware())
	fg.POST("/files", api.uploadFile, teacherMiddleware())

	flg := g.Group("/files/:id", jwt)
	flg.GET("", api.retrieveFile)
	flg.PUT("", api.updateFile, teacherMiddleware())
	flg.DELETE("", api.destroyFile, teacherMiddleware())
}

// Handlers

func (api *resourceApi) queryForCourse(ctx echo.Context) error {
	folders, err := api.svc.ResourcesForCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying course resources")
	}
	if folders == nil {
		folders = []resource.FolderWithFiles{}
	}
	return ctx.JSON(http.StatusOK, folders)
}

func (api *resourceApi) createFolder(ctx echo.Context) error {
	var data resource.NewFolder
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFolder")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	fld, err := api.svc.CreateFolder(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating folder")
	}
	return ctx.JSON(http.StatusCreated, fld)
}

func (api *resourceApi) renameFolder(ctx echo.Context) error {
	var data RenameFolderRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RenameFolderRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	fld, err := api.svc.RenameFolder(ctx.Request().Context(), ctx.Param("id"), data.Name)
	if err != nil {
		return errors.Wrap(err, "renaming folder")
	}
	return ctx.JSON(http.StatusOK, fld)
}

func (api *resourceApi) destroyFolder(ctx echo.Context) error {
	if err := api.svc.DeleteFolder(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting folder")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *resourceApi) uploadFile(ctx echo.Context) error {
	var data resource.NewFile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFile")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	f, err := api.svc.UploadFile(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "uploading file")
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *resourceApi) retrieveFile(ctx echo.Context) error {
	f, err := api.svc.GetFile(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding file by ID")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *resourceApi) updateFile(ctx echo.Context) error {
	var data UpdateFileRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFileRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	f, err := api.svc.UpdateFileContent(ctx.Request().Context(), ctx.Param("id"), data.Content, data.Size)
	if err != nil {
		return errors.Wrap(err, "updating file content")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *resourceApi) destroyFile(ctx echo.Context) error {
	if err := api.svc.DeleteFile(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting file")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	RenameFolderRequest struct {
		Name string `json:"name" validate:"required,max=200"`
	}

	UpdateFileRequest struct {
		Content string `json:"content" validate:"required"`
		Size    int64  `json:"size"`
	}
)

func (rr *RenameFolderRequest) Validate() error {
	rr.Name = core.CleanString(rr.Name)
	return core.Validate.Struct(rr)
}

func (ur *UpdateFileRequest) Validate() error { return core.Validate.Struct(ur) }
