package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseUserID checks parsing never panics and accepted ids round-trip.
func FuzzParseUserID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE users;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseUserID(input)
		if err == nil {
			roundTrip, err2 := ParseUserID(id.String())
			if err2 != nil {
				t.Errorf("valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("round-trip changed ID value")
			}
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

// FuzzParseAllIDs ensures all ID types share the same validation.
func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errUser := ParseUserID(input)
		_, errSession := ParseSessionID(input)
		_, errApp := ParseApplicationID(input)
		_, errPayment := ParsePaymentID(input)
		_, errAdult := ParseAdultID(input)

		if errUser == nil {
			if errSession != nil || errApp != nil || errPayment != nil || errAdult != nil {
				t.Error("inconsistent parsing across ID types")
			}
		}
		if errUser != nil {
			if errSession == nil || errApp == nil || errPayment == nil || errAdult == nil {
				t.Error("inconsistent rejection across ID types")
			}
		}
	})
}

// FuzzParseDBSNumber checks accepted numbers are always 12 digits.
func FuzzParseDBSNumber(f *testing.F) {
	f.Add("001234567890")
	f.Add("0012 3456 7890")
	f.Add("")
	f.Add("abcdefghijkl")

	f.Fuzz(func(t *testing.T, input string) {
		n, err := ParseDBSNumber(input)
		if err != nil {
			return
		}
		if len(n) != 12 {
			t.Errorf("accepted DBS number of length %d", len(n))
		}
		for _, r := range n.String() {
			if r < '0' || r > '9' {
				t.Errorf("accepted non-digit %q", r)
			}
		}
	})
}
