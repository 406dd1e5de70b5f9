package checkout

import (
	"testing"

	"github.com/Anshid-ck/cloth-shop-sub001/pkg/enums"
	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
)

func TestNextStep(t *testing.T) {
	cases := []struct {
		from  enums.CheckoutStep
		event Event
		want  enums.CheckoutStep
	}{
		{enums.CheckoutStepAddressSelection, EventAdvance, enums.CheckoutStepReview},
		{enums.CheckoutStepReview, EventAdvance, enums.CheckoutStepPayment},
		{enums.CheckoutStepReview, EventGoBack, enums.CheckoutStepAddressSelection},
		{enums.CheckoutStepReview, EventSelectAddress, enums.CheckoutStepAddressSelection},
		{enums.CheckoutStepPayment, EventAdvance, enums.CheckoutStepPayment},
		{enums.CheckoutStepPayment, EventConfirmCard, enums.CheckoutStepComplete},
		{enums.CheckoutStepPayment, EventPlaceCashOrder, enums.CheckoutStepComplete},
	}
	for _, tc := range cases {
		got, err := NextStep(tc.from, tc.event)
		if err != nil {
			t.Fatalf("%s/%s: unexpected error %v", tc.from, tc.event, err)
		}
		if got != tc.want {
			t.Fatalf("%s/%s: expected %s got %s", tc.from, tc.event, tc.want, got)
		}
	}
}

func TestNextStepRejectsIllegalMoves(t *testing.T) {
	illegal := []struct {
		from  enums.CheckoutStep
		event Event
	}{
		{enums.CheckoutStepAddressSelection, EventGoBack},
		{enums.CheckoutStepAddressSelection, EventSetPaymentMethod},
		{enums.CheckoutStepAddressSelection, EventConfirmCard},
		{enums.CheckoutStepReview, EventPlaceCashOrder},
		{enums.CheckoutStepPayment, EventSelectAddress},
		{enums.CheckoutStepPayment, EventSetPaymentMethod},
		{enums.CheckoutStepComplete, EventAdvance},
		{enums.CheckoutStepComplete, EventGoBack},
	}
	for _, tc := range illegal {
		next, err := NextStep(tc.from, tc.event)
		if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
			t.Fatalf("%s/%s: expected state conflict, got %v", tc.from, tc.event, err)
		}
		if next != tc.from {
			t.Fatalf("%s/%s: rejected move must not change step, got %s", tc.from, tc.event, next)
		}
	}
}

func TestPaymentRequiresOrderToEnter(t *testing.T) {
	for key, to := range transitions {
		if to != enums.CheckoutStepPayment || key.from == enums.CheckoutStepPayment {
			continue
		}
		if key.from != enums.CheckoutStepReview || key.event != EventAdvance {
			t.Fatalf("payment may only be entered by advancing from review, found %s/%s", key.from, key.event)
		}
	}
}
