package utils

import "testing"

func TestValidateUsername(t *testing.T) {
	for _, ok := range []string{"ana", "ana.torres", "user_01", "a-b-c"} {
		if err := ValidateUsername(ok); err != nil {
			t.Errorf("%q rejected: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "ab", "Ana", ".lead", "con espacio"} {
		if err := ValidateUsername(bad); err == nil {
			t.Errorf("%q accepted", bad)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("abc123xy"); err != nil {
		t.Fatalf("valid password rejected: %v", err)
	}
	for _, bad := range []string{"corta1", "soloLetras", "12345678"} {
		if err := ValidatePassword(bad); err == nil {
			t.Errorf("%q accepted", bad)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail(""); err != nil {
		t.Fatalf("empty email must be allowed: %v", err)
	}
	if err := ValidateEmail("ana@uni.edu"); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	if err := ValidateEmail("no-es-un-correo"); err == nil {
		t.Fatal("invalid email accepted")
	}
}

func TestRandStringLengthAndUniqueness(t *testing.T) {
	a, err := RandString(16)
	if err != nil {
		t.Fatalf("rand: %v", err)
	}
	b, _ := RandString(16)
	if a == b {
		t.Fatal("two random strings collided")
	}
	if len(a) == 0 {
		t.Fatal("empty random string")
	}
}
