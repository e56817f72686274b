package models

import (
	"testing"
)

func TestPharmacyAddCategory(t *testing.T) {
	p := Pharmacy{}

	if !p.AddCategory("Painkillers") {
		t.Error("adding a new category should report a change")
	}
	if !p.AddCategory("Vitamins") {
		t.Error("adding a second category should report a change")
	}
	if p.AddCategory("Painkillers") {
		t.Error("adding a duplicate category should be a no-op")
	}
	if p.AddCategory("") {
		t.Error("adding an empty category should be a no-op")
	}

	if len(p.Categorys) != 2 {
		t.Fatalf("categorys = %v; want 2 entries", p.Categorys)
	}
	if p.Categorys[0] != "Painkillers" || p.Categorys[1] != "Vitamins" {
		t.Errorf("categorys = %v; want insertion order preserved", p.Categorys)
	}
}

func TestUserPatchRefreshesFullName(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	user := User{Firstname: "Sara", Lastname: "Adel", FullName: "Sara Adel"}

	patch := UserPatch{Lastname: strPtr("Hassan")}
	patch.Apply(&user)

	if user.FullName != "Sara Hassan" {
		t.Errorf("fullName = %q; want %q", user.FullName, "Sara Hassan")
	}

	// A patch without name components must not touch FullName.
	phone := UserPatch{Phone: strPtr("0100000000")}
	phone.Apply(&user)
	if user.FullName != "Sara Hassan" {
		t.Errorf("fullName changed on a phone-only patch: %q", user.FullName)
	}
}
