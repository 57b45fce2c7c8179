package exitcode

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrUsage, "bad flag")
	if err.Code != ErrUsage {
		t.Errorf("Code = %d, want %d", err.Code, ErrUsage)
	}
	if err.Message != "bad flag" {
		t.Errorf("Message = %q, want %q", err.Message, "bad flag")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrInternal, "terminal UI exited with an error", cause)

	if err.Code != ErrInternal {
		t.Errorf("Code = %d, want %d", err.Code, ErrInternal)
	}
	if !errors.Is(err, cause) {
		t.Error("Wrap should preserve cause for errors.Is")
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrUsage, "missing --bind value"),
			want: "missing --bind value",
		},
		{
			name: "with cause",
			err:  Wrap(ErrBind, "cannot bind 0.0.0.0:23517", errors.New("address already in use")),
			want: "cannot bind 0.0.0.0:23517: address already in use",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, Success},
		{"coded error", New(ErrBind, "x"), ErrBind},
		{"uncoded error", errors.New("plain"), ErrGeneral},
		{"wrapped coded error", &wrappedError{New(ErrInternal, "boom")}, ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(ErrBind, "cannot bind")
	if !Is(err, ErrBind) {
		t.Error("Is should report true for matching code")
	}
	if Is(err, ErrUsage) {
		t.Error("Is should report false for mismatched code")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := Wrap(ErrInternal, "failed", cause)
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the wrapped cause")
	}

	noCause := New(ErrUsage, "bad flag")
	if noCause.Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestBindFailed(t *testing.T) {
	cause := errors.New("address already in use")
	err := BindFailed("0.0.0.0:23517", cause)

	if err.Code != ErrBind {
		t.Errorf("Code = %d, want %d", err.Code, ErrBind)
	}
	want := "cannot bind 0.0.0.0:23517 (try a different --bind address): address already in use"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorInterface(t *testing.T) {
	var _ error = &Error{}
	var _ error = New(ErrGeneral, "test")
	var _ error = Wrap(ErrGeneral, "test", nil)
	var _ error = BindFailed("addr", nil)
}

// wrappedError wraps another error one level deeper, so Code() is
// exercised through errors.As rather than a direct type assertion.
type wrappedError struct{ err error }

func (w *wrappedError) Error() string { return "context: " + w.err.Error() }
func (w *wrappedError) Unwrap() error { return w.err }
