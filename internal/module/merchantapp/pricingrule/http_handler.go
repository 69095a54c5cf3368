package pricingrule

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
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
	Validate    *validator.Validate
	RuleUseCase RuleUseCase
}

func InitHTTPHandler(router *mux.Router, merchantSession *internalMiddleware.MerchantSession, validate *validator.Validate, ruleUseCase RuleUseCase) {
	handler := &HTTPHandler{
		Validate:    validate,
		RuleUseCase: ruleUseCase,
	}

	router.HandleFunc("/sf-order/v1/merchantapp/pricing-rules", publicMiddleware.SetRouteChain(handler.GetManyRule, merchantSession.Verify)).Methods(http.MethodGet)
	router.HandleFunc("/sf-order/v1/merchantapp/pricing-rules", publicMiddleware.SetRouteChain(handler.CreateRule, merchantSession.Verify)).Methods(http.MethodPost)
	router.HandleFunc("/sf-order/v1/merchantapp/pricing-rules/{id}", publicMiddleware.SetRouteChain(handler.DeleteRule, merchantSession.Verify)).Methods(http.MethodDelete)
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

func (handler HTTPHandler) GetManyRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := handler.RuleUseCase.GetManyRule(ctx)
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
		Message: "list of pricing rules",
		Data:    resp,
	})
}

func (handler HTTPHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := CreateRuleRequest{}
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

	resp, err := handler.RuleUseCase.CreateRule(ctx, req)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}
	response.JSON(w, http.StatusCreated, response.RESTEnvelope{
		Status:  status.CREATED,
		Message: "pricing rule has been successfully created",
		Data:    resp,
	})
}

func (handler HTTPHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "invalid pricing rule id",
		})

		return
	}

	if err := handler.RuleUseCase.DeleteRule(ctx, id); err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}
	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "pricing rule has been successfully deleted",
	})
}
