package dto

import "time"

// UpdateCompanyRequest entrada para actualizar la org (campos opcionales).
type UpdateCompanyRequest struct {
	Name     *string `json:"name"`
	Domain   *string `json:"domain"`
	Timezone *string `json:"timezone"`
	Locale   *string `json:"locale"`
	LogoURL  *string `json:"logoUrl"`
}

// CompanyResponse salida de la org.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	LogoURL   string    `json:"logoUrl"`
	Domain    string    `json:"domain"`
	Plan      string    `json:"plan"`
	Timezone  string    `json:"timezone"`
	Locale    string    `json:"locale"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
