package payment

type SubmitSlipRequest struct {
	UUID        string `validate:"required,uuid4"`
	Installment string `validate:"required,oneof=booking deposit balance"`
	Filename    string
	Body        []byte `validate:"required"`
}
