package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_INT", "nope")
	if got := Int("ENVUTIL_TEST_INT", 7); got != 7 {
		t.Fatalf("want=7 got=%d", got)
	}
	t.Setenv("ENVUTIL_TEST_INT", " 42 ")
	if got := Int("ENVUTIL_TEST_INT", 7); got != 42 {
		t.Fatalf("want=42 got=%d", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_BOOL", "off")
	if Bool("ENVUTIL_TEST_BOOL", true) {
		t.Fatalf("off should parse false")
	}
	t.Setenv("ENVUTIL_TEST_BOOL", "")
	if !Bool("ENVUTIL_TEST_BOOL", true) {
		t.Fatalf("empty should use default")
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_DUR", "90")
	if got := Duration("ENVUTIL_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("bare seconds: got=%s", got)
	}
	t.Setenv("ENVUTIL_TEST_DUR", "250ms")
	if got := Duration("ENVUTIL_TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("go duration: got=%s", got)
	}
}

func TestList(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_LIST", " a, ,b ,")
	got := List("ENVUTIL_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected list %q", got)
	}
	t.Setenv("ENVUTIL_TEST_LIST", " , ")
	if got := List("ENVUTIL_TEST_LIST", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Fatalf("blank list should use default, got %q", got)
	}
}
