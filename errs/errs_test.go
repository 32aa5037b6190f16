package errs

import (
	"errors"
	"testing"
)

func TestConfigfIsConfigurationLevel(t *testing.T) {
	err := Configf("unknown scale %q", "Blorkian")
	if !IsConfiguration(err) {
		t.Errorf("expected Configf to produce a Configuration-level error")
	}
	if IsResource(err) {
		t.Errorf("Configuration error misclassified as Resource")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	base := errors.New("port busy")
	wrapped := Wrap(Resource, base, "opening output port")
	if !IsResource(wrapped) {
		t.Fatalf("expected Resource-level error")
	}
	if wrapped.Cause() == nil {
		t.Fatalf("expected Cause() to be non-nil")
	}
}

func TestWrapNilCauseReturnsNil(t *testing.T) {
	if Wrap(Resource, nil, "no-op") != nil {
		t.Errorf("Wrap(nil) should return nil")
	}
}

func TestLevelString(t *testing.T) {
	cases := map[Level]string{
		Configuration:      "configuration",
		Resource:           "resource",
		RuntimeRecoverable: "runtime-recoverable",
		LogicFatal:         "logic-fatal",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", level, got, want)
		}
	}
}
