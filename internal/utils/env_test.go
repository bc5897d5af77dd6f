package utils

import "testing"

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT_SET", "412.5")
	if got := GetEnvAsFloat("TEST_FLOAT_SET", 375, nil); got != 412.5 {
		t.Fatalf("set var: want=412.5 got=%g", got)
	}
	if got := GetEnvAsFloat("TEST_FLOAT_UNSET", 375, nil); got != 375 {
		t.Fatalf("unset var: want=375 got=%g", got)
	}
	t.Setenv("TEST_FLOAT_BAD", "narrow")
	if got := GetEnvAsFloat("TEST_FLOAT_BAD", 375, nil); got != 375 {
		t.Fatalf("unparseable var: want default 375 got=%g", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT_SET", "8")
	if got := GetEnvAsInt("TEST_INT_SET", 4, nil); got != 8 {
		t.Fatalf("set var: want=8 got=%d", got)
	}
	if got := GetEnvAsInt("TEST_INT_UNSET", 4, nil); got != 4 {
		t.Fatalf("unset var: want=4 got=%d", got)
	}
}
