package company

import (
	"github.com/profaxno/admin-management/internal"
	companyDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/company"
)

type CompanyDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	FantasyName       string `json:"fantasyName,omitempty"`
	IDDoc             string `json:"idDoc,omitempty"`
	Address           string `json:"address,omitempty"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	BankName          string `json:"bankName,omitempty"`
	BankAccountType   string `json:"bankAccountType,omitempty"`
	BankAccountNumber string `json:"bankAccountNumber,omitempty"`
	ImgURLLogo        string `json:"imgUrlLogo,omitempty"`
	ImgURLHeader      string `json:"imgUrlHeader,omitempty"`
	ImgURLFooter      string `json:"imgUrlFooter,omitempty"`
	ImgURLTransfer    string `json:"imgUrlTransferData,omitempty"`
	Active            bool   `json:"active"`
}

type UpsertCompanyDTO struct {
	ID                string `json:"id,omitempty"`
	Name              string `json:"name"`
	FantasyName       string `json:"fantasyName,omitempty"`
	IDDoc             string `json:"idDoc,omitempty"`
	Address           string `json:"address,omitempty"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	BankName          string `json:"bankName,omitempty"`
	BankAccountType   string `json:"bankAccountType,omitempty"`
	BankAccountNumber string `json:"bankAccountNumber,omitempty"`
	ImgURLLogo        string `json:"imgUrlLogo,omitempty"`
	ImgURLHeader      string `json:"imgUrlHeader,omitempty"`
	ImgURLFooter      string `json:"imgUrlFooter,omitempty"`
	ImgURLTransfer    string `json:"imgUrlTransferData,omitempty"`
}

func (d UpsertCompanyDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type SearchCompaniesDTO struct {
	Name string `json:"name,omitempty"`
	internal.SearchPagination
}

type SynchronizeDTO struct {
	internal.SearchPagination
}

func toDTO(m *companyDatamodel.Company) *CompanyDTO {
	return &CompanyDTO{
		ID:                m.ID,
		Name:              m.Name,
		FantasyName:       m.FantasyName,
		IDDoc:             m.IDDoc,
		Address:           m.Address,
		Email:             m.Email,
		Phone:             m.Phone,
		BankName:          m.BankName,
		BankAccountType:   m.BankAccountType,
		BankAccountNumber: m.BankAccountNumber,
		ImgURLLogo:        m.ImgURLLogo,
		ImgURLHeader:      m.ImgURLHeader,
		ImgURLFooter:      m.ImgURLFooter,
		ImgURLTransfer:    m.ImgURLTransfer,
		Active:            m.Active,
	}
}

func (d UpsertCompanyDTO) apply(m *companyDatamodel.Company, normalizedName string) {
	m.Name = normalizedName
	m.FantasyName = d.FantasyName
	m.IDDoc = d.IDDoc
	m.Address = d.Address
	m.Email = d.Email
	m.Phone = d.Phone
	m.BankName = d.BankName
	m.BankAccountType = d.BankAccountType
	m.BankAccountNumber = d.BankAccountNumber
	m.ImgURLLogo = d.ImgURLLogo
	m.ImgURLHeader = d.ImgURLHeader
	m.ImgURLFooter = d.ImgURLFooter
	m.ImgURLTransfer = d.ImgURLTransfer
}

func toDTOList(models []companyDatamodel.Company) []CompanyDTO {
	dtos := make([]CompanyDTO, 0, len(models))
	for i := range models {
		dtos = append(dtos, *toDTO(&models[i]))
	}
	return dtos
}
