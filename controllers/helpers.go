package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/HSouheill/marketplace_backend/middleware"
	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondError writes err as a models.Response. Client errors keep their
// message; anything else is logged and reported as a 500.
func respondError(c echo.Context, err error) error {
	if appErr, ok := utils.AsAppError(err); ok {
		return c.JSON(appErr.Status, models.Response{
			Status:  appErr.Status,
			Message: appErr.Message,
		})
	}

	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Something went wrong, please try again later",
	})
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// bindAndValidate decodes the request body into req and runs the struct
// validator over it.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return utils.BadRequest("Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return utils.BadRequest(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "email":
			parts = append(parts, field+" must be a valid email")
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "min", "gte":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max", "lte":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

func paramID(c echo.Context, name, message string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, utils.BadRequest(message)
	}
	return id, nil
}

func currentActor(c echo.Context) (models.Actor, error) {
	actor, err := middleware.ActorFromContext(c)
	if err != nil {
		return models.Actor{}, utils.Unauthorized("You are not logged in! Please log in to get access.")
	}
	return actor, nil
}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}

// readImageUpload loads the multipart file in field, enforcing the image
// size limit before reading it into memory.
func readImageUpload(c echo.Context, field string) (string, []byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil, utils.BadRequest("Please upload an image in the '" + field + "' field")
	}
	if err := utils.ValidateImageFile(fh.Filename, int(fh.Size)); err != nil {
		return "", nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, utils.BadRequest("Could not read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, utils.BadRequest("Could not read uploaded file")
	}
	return fh.Filename, data, nil
}
