package msgbox

import "testing"

func TestErrorMessageIncludesCode(t *testing.T) {
	err := newError(ErrCodeAddress, "bad host", nil)
	if got, want := err.Error(), "msgbox: address: bad host"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if err.Code != ErrCodeAddress {
		t.Fatalf("Code = %v, want %v", err.Code, ErrCodeAddress)
	}
}

func TestErrorCodeString(t *testing.T) {
	cases := map[ErrorCode]string{
		ErrCodeAddress:    "address",
		ErrCodeOS:         "os",
		ErrCodeProtocol:   "protocol",
		ErrCodeDispatcher: "dispatcher",
	}
	for code, want := range cases {
		if got := code.String(); got != want {
			t.Fatalf("%v.String() = %q, want %q", code, got, want)
		}
	}
}
