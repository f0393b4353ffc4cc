package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// ErrorResponse is the body of every error reply. Field names the offending input.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrRecipeNotFound, http.StatusNotFound},
	{service.ErrTagNotFound, http.StatusNotFound},
	{service.ErrIngredientNotFound, http.StatusNotFound},
	{service.ErrNotRecipeAuthor, http.StatusForbidden},
	{service.ErrInvalidCredentials, http.StatusBadRequest},
	{service.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrSelfSubscription, http.StatusBadRequest},
	{service.ErrSelfUnsubscription, http.StatusBadRequest},
	{service.ErrAlreadySubscribed, http.StatusBadRequest},
	{service.ErrNotSubscribed, http.StatusBadRequest},
	{service.ErrAlreadyFavorited, http.StatusBadRequest},
	{service.ErrNotFavorited, http.StatusBadRequest},
	{service.ErrAlreadyInCart, http.StatusBadRequest},
	{service.ErrNotInCart, http.StatusBadRequest},
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

// jsonFieldName makes validation errors report the JSON key instead of the Go field.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// respondError maps a service error to its status and writes it.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Message, Field: verr.Field})
		return
	}

	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, ErrorResponse{Error: err.Error()})
			return
		}
	}

	log.Error().Err(err).
		Str("request_id", middleware.GetRequestID(c)).
		Str("path", c.Request.URL.Path).
		Msg("request failed")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondBindError reports a binding failure against the JSON field that caused it.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: describe(fe), Field: fe.Field()})
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid value", Field: typeErr.Field})
		return
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "hexcolor":
		return "enter a valid hex color"
	case "max":
		return "ensure this field has no more than " + fe.Param() + " characters"
	case "min":
		return "ensure this field has at least " + fe.Param() + " characters"
	case "len":
		return "ensure this field has exactly " + fe.Param() + " characters"
	}
	return "invalid value"
}

// parseID reads a positive numeric path parameter. Anything else is reported as not found.
func parseID(c *gin.Context, param string, notFound error) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: notFound.Error()})
		return 0, false
	}
	return uint(id), true
}
