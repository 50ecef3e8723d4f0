package models

import "testing"

func TestPasswordHashing(t *testing.T) {
	u := User{}
	if err := u.SetPassword("Sup3r$ecret"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if u.Password == "Sup3r$ecret" {
		t.Fatal("password stored in plaintext")
	}
	if !u.CheckPassword("Sup3r$ecret") {
		t.Fatal("CheckPassword should accept the original password")
	}
	if u.CheckPassword("wrong-pass") {
		t.Fatal("CheckPassword should reject a wrong password")
	}
}

func TestSanitizeOmitsPassword(t *testing.T) {
	u := User{Name: "Asha", Email: "asha@example.com", Role: RolePatient}
	if err := u.SetPassword("Sup3r$ecret"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}

	s := u.Sanitize()
	if s.Name != "Asha" || s.Email != "asha@example.com" || s.Role != RolePatient {
		t.Fatalf("unexpected sanitized user: %#v", s)
	}
}
