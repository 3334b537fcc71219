package patient

import (
	"testing"
	"time"

	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/fhir"
)

func strPtr(s string) *string { return &s }

func TestToFHIR_FullRecord(t *testing.T) {
	birth := time.Date(1984, 3, 12, 0, 0, 0, 0, time.UTC)
	p := &Patient{
		ID:             7,
		OrganizationID: 5,
		FirstName:      "Maria",
		LastName:       "Santos",
		Gender:         strPtr("female"),
		BirthDate:      &birth,
		Phone:          strPtr("+1-555-0100"),
		Email:          strPtr("maria@example.com"),
		AddressLine:    strPtr("12 Harbor St"),
		City:           strPtr("Portland"),
		State:          strPtr("OR"),
		PostalCode:     strPtr("97201"),
	}

	res := p.ToFHIR()

	if res["resourceType"] != "Patient" {
		t.Errorf("expected resourceType Patient, got %v", res["resourceType"])
	}
	if res["gender"] != "female" {
		t.Errorf("expected gender female, got %v", res["gender"])
	}
	if res["birthDate"] != "1984-03-12" {
		t.Errorf("expected birthDate 1984-03-12, got %v", res["birthDate"])
	}

	names, ok := res["name"].([]fhir.HumanName)
	if !ok || len(names) != 1 {
		t.Fatalf("unexpected name: %v", res["name"])
	}
	if names[0].Family != "Santos" || names[0].Given[0] != "Maria" {
		t.Errorf("unexpected name: %+v", names[0])
	}

	ref, ok := res["managingOrganization"].(fhir.Reference)
	if !ok || ref.Reference != "Organization/5" {
		t.Errorf("unexpected managingOrganization: %v", res["managingOrganization"])
	}

	telecoms, ok := res["telecom"].([]fhir.ContactPoint)
	if !ok || len(telecoms) != 2 {
		t.Fatalf("expected phone and email contact points, got %v", res["telecom"])
	}

	addrs, ok := res["address"].([]fhir.Address)
	if !ok || len(addrs) != 1 || addrs[0].City != "Portland" {
		t.Errorf("unexpected address: %v", res["address"])
	}
}

func TestToFHIR_MinimalRecord(t *testing.T) {
	p := &Patient{ID: 9, OrganizationID: 2, FirstName: "Jo", LastName: "Lee"}

	res := p.ToFHIR()

	for _, key := range []string{"gender", "birthDate", "telecom", "address"} {
		if _, present := res[key]; present {
			t.Errorf("expected %s to be omitted for minimal record", key)
		}
	}
	if res["resourceType"] != "Patient" {
		t.Errorf("expected resourceType Patient, got %v", res["resourceType"])
	}
}
