package patient

import (
	"time"

	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/fhir"
)

// Patient maps to the patients table.
type Patient struct {
	ID             int64      `db:"id" json:"id"`
	OrganizationID int64      `db:"organization_id" json:"organizationId"`
	FirstName      string     `db:"first_name" json:"firstName"`
	LastName       string     `db:"last_name" json:"lastName"`
	Gender         *string    `db:"gender" json:"gender,omitempty"`
	BirthDate      *time.Time `db:"birth_date" json:"birthDate,omitempty"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Email          *string    `db:"email" json:"email,omitempty"`
	AddressLine    *string    `db:"address_line" json:"addressLine,omitempty"`
	City           *string    `db:"city" json:"city,omitempty"`
	State          *string    `db:"state" json:"state,omitempty"`
	PostalCode     *string    `db:"postal_code" json:"postalCode,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// ToFHIR renders the patient as a FHIR R4 Patient resource.
func (p *Patient) ToFHIR() map[string]interface{} {
	result := map[string]interface{}{
		"resourceType": "Patient",
		"id":           p.ID,
		"name": []fhir.HumanName{
			{Use: "official", Family: p.LastName, Given: []string{p.FirstName}},
		},
		"managingOrganization": fhir.Reference{
			Reference: fhir.FormatReference("Organization", p.OrganizationID),
		},
		"meta": fhir.Meta{
			LastUpdated: p.UpdatedAt,
			Profile:     []string{"http://hl7.org/fhir/us/core/StructureDefinition/us-core-patient"},
		},
	}

	if p.Gender != nil {
		result["gender"] = *p.Gender
	}
	if p.BirthDate != nil {
		result["birthDate"] = p.BirthDate.Format("2006-01-02")
	}

	var telecoms []fhir.ContactPoint
	if p.Phone != nil {
		telecoms = append(telecoms, fhir.ContactPoint{System: "phone", Value: *p.Phone})
	}
	if p.Email != nil {
		telecoms = append(telecoms, fhir.ContactPoint{System: "email", Value: *p.Email})
	}
	if len(telecoms) > 0 {
		result["telecom"] = telecoms
	}

	if p.AddressLine != nil {
		addr := fhir.Address{Use: "home", Line: []string{*p.AddressLine}}
		if p.City != nil {
			addr.City = *p.City
		}
		if p.State != nil {
			addr.State = *p.State
		}
		if p.PostalCode != nil {
			addr.PostalCode = *p.PostalCode
		}
		result["address"] = []fhir.Address{addr}
	}

	return result
}
