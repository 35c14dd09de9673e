package buffer

import "testing"

func TestLockedArena(t *testing.T) {
	a, err := NewLockedArena(4096)
	if err != nil {
		t.Fatalf("NewLockedArena() error = %v", err)
	}
	t.Logf("locked: %v", a.Locked())

	if a.Cap() != 4096 {
		t.Fatalf("Cap() = %d, want 4096", a.Cap())
	}

	buf, err := a.Allocate(1000)
	if err != nil {
		t.Fatal(err)
	}
	for i := range buf {
		if buf[i] != 0 {
			t.Fatalf("region not zeroed at %d", i)
		}
		buf[i] = float64(i)
	}
	a.Deallocate(buf)

	again, err := a.Allocate(1000)
	if err != nil {
		t.Fatal(err)
	}
	if again[999] != 0 {
		t.Fatal("reused region not zeroed")
	}
	a.Deallocate(again)

	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if a.Cap() != 0 || a.Locked() {
		t.Fatalf("after Close: cap %d locked %v", a.Cap(), a.Locked())
	}
	if _, err := a.Allocate(1); err == nil {
		t.Fatal("closed arena should not allocate")
	}
}

func TestLockedArena_Validation(t *testing.T) {
	if _, err := NewLockedArena(-1); err == nil {
		t.Fatal("negative capacity should fail")
	}

	a, err := NewLockedArena(0)
	if err != nil {
		t.Fatal(err)
	}
	if a.Cap() != 0 {
		t.Fatalf("Cap() = %d", a.Cap())
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
}
