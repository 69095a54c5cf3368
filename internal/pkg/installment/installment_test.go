package installment

import (
	"net/http"
	"testing"
	"time"

	"github.com/stitchfactory/sf-order/pkg/errors"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func assertConflict(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected a conflict error, got nil")
	}
	if ae := errors.Destruct(err); ae.HTTPStatusCode != http.StatusConflict {
		t.Errorf("status code = %d, want %d", ae.HTTPStatusCode, http.StatusConflict)
	}
}

func TestSlipSubmit(t *testing.T) {
	tests := []struct {
		name     string
		state    ReviewState
		wantErr  bool
		wantNote string
	}{
		{name: "first upload", state: ReviewNone},
		{name: "re-upload while pending", state: ReviewPending},
		{name: "re-upload after rejection clears note", state: ReviewRejected},
		{name: "approved slip is immutable", state: ReviewApproved, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Slip{Kind: KindDeposit, ReviewState: tt.state, Note: "previous note"}

			err := s.Submit("img-1", "thumb-1", testNow)
			if tt.wantErr {
				assertConflict(t, err)
				return
			}
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if s.ReviewState != ReviewPending {
				t.Errorf("ReviewState = %s, want %s", s.ReviewState, ReviewPending)
			}
			if s.ImageRef != "img-1" || s.ThumbnailRef != "thumb-1" {
				t.Errorf("references not stored: %q %q", s.ImageRef, s.ThumbnailRef)
			}
			if s.Note != "" {
				t.Errorf("Note = %q, want cleared", s.Note)
			}
			if !s.UpdatedAt.Equal(testNow) {
				t.Errorf("UpdatedAt = %s, want %s", s.UpdatedAt, testNow)
			}
		})
	}
}

func TestSlipApprove(t *testing.T) {
	t.Run("pending transitions", func(t *testing.T) {
		s := &Slip{Kind: KindBooking, ReviewState: ReviewPending}
		changed, err := s.Approve("looks good", testNow)
		if err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
		if !changed {
			t.Error("Approve() changed = false, want true")
		}
		if s.ReviewState != ReviewApproved || s.Note != "looks good" {
			t.Errorf("state = %s note = %q", s.ReviewState, s.Note)
		}
	})

	t.Run("repeated approval is a no-op", func(t *testing.T) {
		s := &Slip{Kind: KindBooking, ReviewState: ReviewApproved, Note: "original"}
		changed, err := s.Approve("second note", testNow)
		if err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
		if changed {
			t.Error("Approve() changed = true on an approved slip")
		}
		if s.Note != "original" {
			t.Errorf("a repeated approval must not overwrite the note, got %q", s.Note)
		}
	})

	t.Run("nothing to approve", func(t *testing.T) {
		for _, state := range []ReviewState{ReviewNone, ReviewRejected} {
			s := &Slip{Kind: KindBooking, ReviewState: state}
			_, err := s.Approve("", testNow)
			assertConflict(t, err)
		}
	})
}

func TestSlipReject(t *testing.T) {
	t.Run("pending transitions with note", func(t *testing.T) {
		s := &Slip{Kind: KindBalance, ReviewState: ReviewPending}
		if err := s.Reject("amount does not match", testNow); err != nil {
			t.Fatalf("Reject() error = %v", err)
		}
		if s.ReviewState != ReviewRejected || s.Note != "amount does not match" {
			t.Errorf("state = %s note = %q", s.ReviewState, s.Note)
		}
	})

	t.Run("only pending can be rejected", func(t *testing.T) {
		for _, state := range []ReviewState{ReviewNone, ReviewApproved, ReviewRejected} {
			s := &Slip{Kind: KindBalance, ReviewState: state}
			assertConflict(t, s.Reject("", testNow))
		}
	})
}

func TestEligible(t *testing.T) {
	slipsWith := func(booking, deposit ReviewState) map[Kind]*Slip {
		return map[Kind]*Slip{
			KindBooking: {Kind: KindBooking, ReviewState: booking},
			KindDeposit: {Kind: KindDeposit, ReviewState: deposit},
			KindBalance: {Kind: KindBalance, ReviewState: ReviewNone},
		}
	}

	tests := []struct {
		name  string
		slips map[Kind]*Slip
		kind  Kind
		want  bool
	}{
		{name: "booking always open", slips: slipsWith(ReviewNone, ReviewNone), kind: KindBooking, want: true},
		{name: "deposit closed before booking approval", slips: slipsWith(ReviewPending, ReviewNone), kind: KindDeposit, want: false},
		{name: "deposit opens on booking approval", slips: slipsWith(ReviewApproved, ReviewNone), kind: KindDeposit, want: true},
		{name: "balance closed before deposit approval", slips: slipsWith(ReviewApproved, ReviewPending), kind: KindBalance, want: false},
		{name: "balance opens on deposit approval", slips: slipsWith(ReviewApproved, ReviewApproved), kind: KindBalance, want: true},
		{name: "rejected booking keeps deposit closed", slips: slipsWith(ReviewRejected, ReviewNone), kind: KindDeposit, want: false},
		{name: "unknown kind", slips: slipsWith(ReviewApproved, ReviewApproved), kind: Kind("extra"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eligible(tt.slips, tt.kind); got != tt.want {
				t.Errorf("Eligible(%s) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k, got, err)
		}
	}

	if _, err := ParseKind("final"); err == nil {
		t.Error("ParseKind should reject an unknown installment")
	} else if ae := errors.Destruct(err); ae.HTTPStatusCode != http.StatusBadRequest {
		t.Errorf("status code = %d, want %d", ae.HTTPStatusCode, http.StatusBadRequest)
	}
}
