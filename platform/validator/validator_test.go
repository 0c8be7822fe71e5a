package validator

import "testing"

type slotRequest struct {
	Date string `validate:"required,isodate"`
	Time string `validate:"required,hhmm"`
}

func TestValidator_AcceptsDateAndTimeLayouts(t *testing.T) {
	val := New()
	if err := val.Struct(slotRequest{Date: "2026-03-24", Time: "09:15"}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestValidator_RejectsMalformedValues(t *testing.T) {
	val := New()
	cases := []slotRequest{
		{Date: "24/03/2026", Time: "09:15"},
		{Date: "2026-02-30", Time: "09:15"},
		{Date: "2026-03-24", Time: "9am"},
		{Date: "2026-03-24", Time: "25:00"},
	}
	for _, tc := range cases {
		if err := val.Struct(tc); err == nil {
			t.Fatalf("expected validation error for %+v", tc)
		}
	}
}
