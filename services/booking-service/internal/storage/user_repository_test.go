package storage

import (
	"reflect"
	"testing"
)

func TestClientLookupFilterNationalIDOnly(t *testing.T) {
	// An account created from a national-id-only booking is stored with
	// email = ''. A later national-id-only lookup must not carry an email
	// condition, or the blank parameter would match that unrelated row.
	filter, args := clientLookupFilter("", "0912345678")
	if filter != "national_id = $1" {
		t.Fatalf("filter = %q, want %q", filter, "national_id = $1")
	}
	if !reflect.DeepEqual(args, []any{"0912345678"}) {
		t.Fatalf("args = %v, want [0912345678]", args)
	}
}

func TestClientLookupFilterEmailOnly(t *testing.T) {
	filter, args := clientLookupFilter("ana@example.com", "")
	if filter != "email = $1" {
		t.Fatalf("filter = %q, want %q", filter, "email = $1")
	}
	if !reflect.DeepEqual(args, []any{"ana@example.com"}) {
		t.Fatalf("args = %v, want [ana@example.com]", args)
	}
}

func TestClientLookupFilterBothIdentifiers(t *testing.T) {
	filter, args := clientLookupFilter("ana@example.com", "0912345678")
	if filter != "email = $1 OR national_id = $2" {
		t.Fatalf("filter = %q", filter)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v, want 2 entries", args)
	}
}

func TestClientLookupFilterNoIdentifiers(t *testing.T) {
	filter, args := clientLookupFilter("", "")
	if filter != "" || args != nil {
		t.Fatalf("filter = %q args = %v, want empty", filter, args)
	}
}
