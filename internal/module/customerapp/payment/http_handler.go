package payment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/stitchfactory/sf-order/pkg/errors"
	"github.com/stitchfactory/sf-order/pkg/response"
	"github.com/stitchfactory/sf-order/pkg/status"
)

type HTTPHandler struct {
	Validate       *validator.Validate
	PaymentUseCase PaymentUseCase
}

// InitHTTPHandler registers the public payment page routes. These are reached
// through the unguessable order uuid, no session middleware applies.
func InitHTTPHandler(router *mux.Router, validate *validator.Validate, paymentUseCase PaymentUseCase) {
	handler := &HTTPHandler{
		Validate:       validate,
		PaymentUseCase: paymentUseCase,
	}

	router.HandleFunc("/sf-order/v1/customerapp/payment/{uuid}", handler.GetOrder).Methods(http.MethodGet)
	router.HandleFunc("/sf-order/v1/customerapp/payment/{uuid}/slips/{installment}", handler.SubmitSlip).Methods(http.MethodPost)
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

func (handler HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := handler.PaymentUseCase.GetOrder(ctx, mux.Vars(r)["uuid"])
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
		Message: "payment detail",
		Data:    resp,
	})
}

func (handler HTTPHandler) SubmitSlip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, MaxSlipSize+1024)
	if err := r.ParseMultipartForm(MaxSlipSize); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "the slip image exceeds the 5 MiB limit or the form is malformed",
		})

		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "a 'file' form field with the slip image is required",
		})

		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "the slip image could not be read",
		})

		return
	}

	req := SubmitSlipRequest{
		UUID:        mux.Vars(r)["uuid"],
		Installment: mux.Vars(r)["installment"],
		Filename:    header.Filename,
		Body:        body,
	}

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.PaymentUseCase.SubmitSlip(ctx, req)
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
		Message: "slip has been submitted for review",
		Data:    resp,
	})
}
