package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	ph, err := HashPassword("secreto123", "pepper")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	ok, err := VerifyPassword("secreto123", "pepper", ph)
	if err != nil || !ok {
		t.Fatalf("verify: ok=%v err=%v", ok, err)
	}
	ok, err = VerifyPassword("otra", "pepper", ph)
	if err != nil || ok {
		t.Fatalf("wrong password accepted: ok=%v err=%v", ok, err)
	}
	// A different pepper invalidates every stored hash.
	ok, err = VerifyPassword("secreto123", "other-pepper", ph)
	if err != nil || ok {
		t.Fatalf("wrong pepper accepted: ok=%v err=%v", ok, err)
	}
}

func TestHashPasswordUniqueSalt(t *testing.T) {
	a := MustHashPassword("secreto123", "pepper")
	b := MustHashPassword("secreto123", "pepper")
	if a.Salt == b.Salt || a.Hash == b.Hash {
		t.Fatal("expected distinct salt and hash per call")
	}
}

func TestParsePasswordHashRejectsEmpty(t *testing.T) {
	if _, err := ParsePasswordHash("", "salt"); err == nil {
		t.Fatal("empty hash accepted")
	}
	if _, err := ParsePasswordHash("hash", ""); err == nil {
		t.Fatal("empty salt accepted")
	}
}

func TestCSRFTokens(t *testing.T) {
	tok := GenerateCSRF("key", "sess-1")
	if tok != GenerateCSRF("key", "sess-1") {
		t.Fatal("token must be deterministic per key and session")
	}
	if tok == GenerateCSRF("key", "sess-2") {
		t.Fatal("token must differ per session")
	}
	if !ValidCSRF(tok, tok) {
		t.Fatal("valid token rejected")
	}
	if ValidCSRF("", tok) || ValidCSRF(tok, "") {
		t.Fatal("empty token accepted")
	}
}
