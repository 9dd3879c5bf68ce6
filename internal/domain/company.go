package domain

import "time"

type Company struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	DOT           string    `json:"dot"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	Zip           string    `json:"zip"`
	Country       string    `json:"country"`
	Email         string    `json:"email"`
	Website       string    `json:"website,omitempty"`
	CompanyPhone  string    `json:"company_phone"`
	DispatchPhone string    `json:"dispatch_phone,omitempty"`
	MobilePhone   string    `json:"mobile_phone,omitempty"`
	ELDID         string    `json:"eld_id,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
