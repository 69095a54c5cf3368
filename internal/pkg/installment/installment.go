// Package installment implements the payment slip review state machine. The
// transitions here are pure, the order module wraps them in a row-locking
// transaction so concurrent submissions and decisions for one order
// serialize.
package installment

import (
	"fmt"
	"net/http"
	"time"

	"github.com/stitchfactory/sf-order/pkg/errors"
	"github.com/stitchfactory/sf-order/pkg/status"
)

// Kind is one of the three sequential payment stages of an order.
type Kind string

const (
	KindBooking Kind = "booking"
	KindDeposit Kind = "deposit"
	KindBalance Kind = "balance"
)

// Kinds lists the stages in payment order.
var Kinds = []Kind{KindBooking, KindDeposit, KindBalance}

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBooking, KindDeposit, KindBalance:
		return Kind(s), nil
	}
	return "", errors.New(http.StatusBadRequest, status.BAD_REQUEST, fmt.Sprintf("unknown installment '%s'", s))
}

type ReviewState string

const (
	ReviewNone     ReviewState = "none"
	ReviewPending  ReviewState = "pending"
	ReviewApproved ReviewState = "approved"
	ReviewRejected ReviewState = "rejected"
)

// Slip is one customer-submitted payment proof. An order owns exactly three,
// one per Kind, created empty alongside the order and never deleted.
type Slip struct {
	Kind         Kind
	ImageRef     string
	ThumbnailRef string
	ReviewState  ReviewState
	Note         string
	UpdatedAt    time.Time
}

// Submit records an uploaded image. Allowed from none and rejected, where a
// re-upload replaces the stored references and clears the rejection note. A
// pending slip may be re-submitted too, last committed write wins. An
// approved slip is immutable.
func (s *Slip) Submit(imageRef, thumbnailRef string, now time.Time) error {
	if s.ReviewState == ReviewApproved {
		return errors.New(http.StatusConflict, status.CONFLICT, fmt.Sprintf("the %s installment has already been approved", s.Kind))
	}

	s.ImageRef = imageRef
	s.ThumbnailRef = thumbnailRef
	s.ReviewState = ReviewPending
	s.Note = ""
	s.UpdatedAt = now

	return nil
}

// Approve moves a pending slip to approved. Approving an already approved
// slip succeeds without changing anything, so a retried or duplicated
// request cannot apply a second side effect; the returned flag tells the
// caller whether this call actually transitioned.
func (s *Slip) Approve(note string, now time.Time) (bool, error) {
	switch s.ReviewState {
	case ReviewApproved:
		return false, nil
	case ReviewPending:
		s.ReviewState = ReviewApproved
		s.Note = note
		s.UpdatedAt = now
		return true, nil
	default:
		return false, errors.New(http.StatusConflict, status.CONFLICT, fmt.Sprintf("the %s installment is '%s' and cannot be approved", s.Kind, s.ReviewState))
	}
}

// Reject moves a pending slip to rejected with the merchant's note. The
// customer may then re-upload.
func (s *Slip) Reject(note string, now time.Time) error {
	if s.ReviewState != ReviewPending {
		return errors.New(http.StatusConflict, status.CONFLICT, fmt.Sprintf("the %s installment is '%s' and cannot be rejected", s.Kind, s.ReviewState))
	}

	s.ReviewState = ReviewRejected
	s.Note = note
	s.UpdatedAt = now

	return nil
}

// Eligible reports whether the given stage accepts a submission: booking is
// always open, each later stage opens once the previous one is approved.
func Eligible(slips map[Kind]*Slip, kind Kind) bool {
	switch kind {
	case KindBooking:
		return true
	case KindDeposit:
		prev, ok := slips[KindBooking]
		return ok && prev.ReviewState == ReviewApproved
	case KindBalance:
		prev, ok := slips[KindDeposit]
		return ok && prev.ReviewState == ReviewApproved
	}
	return false
}
