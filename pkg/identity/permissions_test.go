package identity

import "testing"

func TestResolveAdminTypes(t *testing.T) {
	for _, typ := range []string{TypeUser, TypeService, TypeAgent} {
		perms := Resolve(&Identity{Type: typ, Status: StatusActive}, nil)
		if !perms.Admin {
			t.Errorf("type %q should be admin", typ)
		}
		if !perms.Has(CapChannelManage, Resource{Type: ResourceChannel, ID: "any"}) {
			t.Errorf("admin %q missing capability", typ)
		}
	}
}

func TestResolveInactiveHasNothingImplicit(t *testing.T) {
	perms := Resolve(&Identity{Type: TypeUser, Status: StatusSuspended}, nil)
	if perms.Admin {
		t.Error("suspended identity must not be admin")
	}
	if perms.CanAccessNamespace("ns1") {
		t.Error("suspended identity must not reach namespaces")
	}
}

func TestResolveAppConfined(t *testing.T) {
	app := &Identity{
		Type:   TypeApp,
		Status: StatusActive,
		AppConfig: &AppConfig{
			Origin:              "https://app.example.com",
			Namespace:           "app_example_com",
			GrantedCapabilities: []string{CapKVRead, CapKVWrite},
		},
	}
	perms := Resolve(app, nil)

	if perms.Admin {
		t.Fatal("app must not be admin")
	}
	if !perms.CanAccessNamespace("app_example_com") {
		t.Error("app cannot reach its own namespace")
	}
	if perms.CanAccessNamespace("other_ns") {
		t.Error("app reached a foreign namespace")
	}
	if !perms.Has(CapKVRead, Resource{Type: ResourceNamespace, ID: "app_example_com"}) {
		t.Error("granted capability denied on own namespace")
	}
	if perms.Has(CapKVRead, Resource{Type: ResourceNamespace, ID: "other_ns"}) {
		t.Error("granted capability leaked to a foreign namespace")
	}
	if perms.Has(CapChannelManage, Resource{Type: ResourceNamespace, ID: "app_example_com"}) {
		t.Error("ungranted capability allowed")
	}
}

func TestGrantsExtendPermissions(t *testing.T) {
	ident := &Identity{Type: TypeApp, Status: StatusActive, AppConfig: &AppConfig{Namespace: "app_ns"}}
	grants := []Grant{{
		IdentityID: "ident_x",
		Capability: CapChannelRead,
		Scope:      Scope{Resources: []Resource{{Type: ResourceChannel, ID: "ch1"}}},
	}}
	perms := Resolve(ident, grants)

	if !perms.Has(CapChannelRead, Resource{Type: ResourceChannel, ID: "ch1"}) {
		t.Error("scoped grant denied")
	}
	if perms.Has(CapChannelRead, Resource{Type: ResourceChannel, ID: "ch2"}) {
		t.Error("grant leaked outside its scope")
	}
	if perms.Has(CapChannelAppend, Resource{Type: ResourceChannel, ID: "ch1"}) {
		t.Error("wrong capability allowed")
	}
}

func TestUnscopedGrantAppliesEverywhere(t *testing.T) {
	perms := Resolve(&Identity{Type: TypeUser, Status: StatusClaimable}, []Grant{{
		Capability: CapChannelAppend,
	}})
	if !perms.Has(CapChannelAppend, Resource{Type: ResourceChannel, ID: "any"}) {
		t.Error("unscoped grant denied")
	}
}

func TestValidNamespace(t *testing.T) {
	valid := []string{"ns1", "my.app_ns", "a-b~c:d", "_single"}
	for _, ns := range valid {
		if !ValidNamespace(ns) {
			t.Errorf("expected %q valid", ns)
		}
	}

	invalid := []string{"", "__reserved", "__ORG", "has space", "emoji✨", "slash/ns"}
	for _, ns := range invalid {
		if ValidNamespace(ns) {
			t.Errorf("expected %q invalid", ns)
		}
	}
}
