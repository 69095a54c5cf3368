package company

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	internalMiddleware "github.com/stitchfactory/sf-order/internal/pkg/middleware"
	"github.com/stitchfactory/sf-order/pkg/errors"
	publicMiddleware "github.com/stitchfactory/sf-order/pkg/middleware"
	"github.com/stitchfactory/sf-order/pkg/response"
	"github.com/stitchfactory/sf-order/pkg/status"
)

type HTTPHandler struct {
	Validate      *validator.Validate
	ConfigUseCase ConfigUseCase
}

func InitHTTPHandler(router *mux.Router, merchantSession *internalMiddleware.MerchantSession, validate *validator.Validate, configUseCase ConfigUseCase) {
	handler := &HTTPHandler{
		Validate:      validate,
		ConfigUseCase: configUseCase,
	}

	router.HandleFunc("/sf-order/v1/merchantapp/company", publicMiddleware.SetRouteChain(handler.GetConfig, merchantSession.Verify)).Methods(http.MethodGet)
	router.HandleFunc("/sf-order/v1/merchantapp/company", publicMiddleware.SetRouteChain(handler.UpdateConfig, merchantSession.Verify)).Methods(http.MethodPut)
}

func (handler HTTPHandler) validate(ctx context.Context, payload interface{}) error {
	err := handler.Validate.StructCtx(ctx, payload)
	if err == nil {
		return nil
	}

	errorFields := err.(validator.ValidationErrors)

	errMessages := make([]string, len(errorFields))

	for k, errorField := range errorFields {
		errMessages[k] = fmt.Sprintf("invalid '%s' with value '%v'", errorField.Field(), errorField.Value())
	}

	return fmt.Errorf("%s", strings.Join(errMessages, ", "))
}

func (handler HTTPHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := handler.ConfigUseCase.GetConfig(ctx)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}
	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "company config",
		Data:    resp,
	})
}

func (handler HTTPHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := UpdateConfigRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.ConfigUseCase.UpdateConfig(ctx, req)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}
	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "company config has been successfully updated",
		Data:    resp,
	})
}
