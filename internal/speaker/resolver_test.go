package speaker

import (
	"testing"

	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/types"
)

func TestResolveSellerByName(t *testing.T) {
	t.Parallel()

	sellers := []types.Attendee{{Name: "John Smith", Email: "john@ontop.example"}}
	customers := []types.Attendee{{Name: "Ana Lima", Email: "ana@client.example"}}

	if role := Resolve("John", sellers, customers); role != types.RoleSeller {
		t.Fatalf("expected seller, got %s", role)
	}
}

func TestResolveCustomerByEmail(t *testing.T) {
	t.Parallel()

	customers := []types.Attendee{{Name: "", Email: "ana@client.example"}}

	if role := Resolve("ana@client.example", nil, customers); role != types.RoleCustomer {
		t.Fatalf("expected customer, got %s", role)
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	sellers := []types.Attendee{{Name: "Maria Garcia"}}
	if role := Resolve("MARIA GARCIA", sellers, nil); role != types.RoleSeller {
		t.Fatalf("expected seller, got %s", role)
	}
}

func TestResolveSellersCheckedBeforeCustomers(t *testing.T) {
	t.Parallel()

	// The same person on both lists must resolve as seller: first match wins.
	both := []types.Attendee{{Name: "Alex Chen"}}
	if role := Resolve("Alex Chen", both, both); role != types.RoleSeller {
		t.Fatalf("expected seller precedence, got %s", role)
	}
}

func TestResolveUnknown(t *testing.T) {
	t.Parallel()

	sellers := []types.Attendee{{Name: "John Smith"}}
	if role := Resolve("Speaker 2", sellers, nil); role != types.RoleUnknown {
		t.Fatalf("expected unknown, got %s", role)
	}
	if role := Resolve("John", nil, nil); role != types.RoleUnknown {
		t.Fatalf("expected unknown without attendees, got %s", role)
	}
	if role := Resolve("", sellers, nil); role != types.RoleUnknown {
		t.Fatalf("expected unknown for blank label, got %s", role)
	}
}
