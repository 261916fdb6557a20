// internal/hostname/hostname_test.go
//
// Unit-tests for tenant-key derivation.
//
// Run: go test ./internal/hostname -v

package hostname

import "testing"

func TestResolve_Subdomain(t *testing.T) {
	k := Resolve("shop1.example.com", "example.com")
	if k.Sub != "shop1" || k.CustomDomain != "" {
		t.Fatalf("unexpected key: %#v", k)
	}
}

func TestResolve_ApexAndReserved(t *testing.T) {
	cases := []string{
		"example.com",
		"example.com:8080",
		"www.example.com",
		"api.example.com",
		"admin.example.com",
		"localhost",
		"localhost:3000",
		"",
	}
	for _, host := range cases {
		if k := Resolve(host, "example.com"); !k.IsZero() {
			t.Fatalf("host %q: want zero key, got %#v", host, k)
		}
	}
}

func TestResolve_CustomDomain(t *testing.T) {
	k := Resolve("WWW.Shop.Example.ORG.", "example.com")
	if k.CustomDomain != "www.shop.example.org" || k.Sub != "" {
		t.Fatalf("unexpected key: %#v", k)
	}
}

func TestResolve_NestedLabelIsNotTenant(t *testing.T) {
	if k := Resolve("a.b.example.com", "example.com"); !k.IsZero() {
		t.Fatalf("nested label resolved to %#v", k)
	}
}

func TestResolve_IPv6Literal(t *testing.T) {
	cases := map[string]string{
		"[::1]:8080":     "::1",
		"[::1]":          "::1",
		"[2001:DB8::1]":  "2001:db8::1",
		"127.0.0.1:8080": "127.0.0.1",
	}
	for host, want := range cases {
		k := Resolve(host, "example.com")
		if k.Sub != "" || k.CustomDomain != want {
			t.Fatalf("host %q: got %#v, want custom domain %q", host, k, want)
		}
	}
}

func TestResolve_PortAndCaseNormalized(t *testing.T) {
	a := Resolve("Shop1.Example.com:443", "example.com")
	b := Resolve("shop1.example.com", "example.com")
	if a != b {
		t.Fatalf("normalization diverged: %#v vs %#v", a, b)
	}
}

// Resolve must be deterministic: same input, same output, no hidden state.
func TestResolve_Pure(t *testing.T) {
	for i := 0; i < 3; i++ {
		if k := Resolve("shop1.example.com", "example.com"); k.Sub != "shop1" {
			t.Fatalf("call %d: got %#v", i, k)
		}
	}
}
