package models

type PickupAddressParts struct {
	City     string `json:"city"`
	Region   string `json:"region"`
	Street   string `json:"street"`
	PostCode string `json:"postCode"`
	Building string `json:"building"`
	Flat     string `json:"flat"`
	Block    string `json:"block"`
	Note     string `json:"note"`
}

type PickupShipment struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Status string `json:"status"`
}

type Pickup struct {
	ID             string             `json:"id"`
	Number         string             `json:"number"`
	Status         string             `json:"status"`
	Phone          string             `json:"phone"`
	Email          string             `json:"email"`
	FullName       string             `json:"fullName"`
	CompanyTin     string             `json:"companyTin"`
	CompanyName    string             `json:"companyName"`
	CountryCode    string             `json:"countryCode"`
	AddressParts   PickupAddressParts `json:"addressParts"`
	PickedTimeFrom string             `json:"pickedTimeFrom"`
	PickedTimeTo   string             `json:"pickedTimeTo"`
	Note           string             `json:"note"`
	CreatedAt      string             `json:"createdAt"`
	UpdatedAt      string             `json:"updatedAt"`
	Shipments      []PickupShipment   `json:"shipments"`
}

type PickupPage = Page[Pickup]

type PickupTimeInterval struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type RegistryShipment struct {
	ShipmentID     string `json:"shipmentId"`
	ShipmentNumber string `json:"shipmentNumber"`
}

type Registry struct {
	ID                   string             `json:"id"`
	Number               string             `json:"number"`
	CreatedAt            string             `json:"createdAt"`
	UpdatedAt            *string            `json:"updatedAt"`
	DeletedAt            *string            `json:"deletedAt"`
	Posted               bool               `json:"posted"`
	Printed              bool               `json:"printed"`
	Description          string             `json:"description"`
	SenderPhone          string             `json:"senderPhone"`
	SenderSettlementName string             `json:"senderSettlementName"`
	SenderDivisionName   string             `json:"senderDivisionName"`
	SenderAddress        string             `json:"senderAddress"`
	Shipments            []RegistryShipment `json:"shipments"`
}

type RegistryPage = Page[Registry]

type ListRegistriesParams struct {
	Page          int
	Limit         int
	CreatedAtFrom string
	CreatedAtTo   string
	IDs           []string
	Numbers       []string
	SettlementIDs []string
}

type Settlement struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type DivisionSchedule struct {
	Monday    string `json:"monday"`
	Tuesday   string `json:"tuesday"`
	Wednesday string `json:"wednesday"`
	Thursday  string `json:"thursday"`
	Friday    string `json:"friday"`
	Saturday  string `json:"saturday"`
	Sunday    string `json:"sunday"`
}

type Division struct {
	ID           string           `json:"id"`
	ExternalID   string           `json:"externalId"`
	Name         string           `json:"name"`
	ShortName    string           `json:"shortName"`
	Number       string           `json:"number"`
	Category     string           `json:"category"`
	CountryCode  string           `json:"countryCode"`
	SettlementID string           `json:"settlementId"`
	Settlement   *Settlement      `json:"settlement,omitempty"`
	Address      string           `json:"address"`
	Latitude     float64          `json:"latitude"`
	Longitude    float64          `json:"longitude"`
	Schedule     DivisionSchedule `json:"schedule"`
	MaxWeight    float64          `json:"maxWeight"`
}

type DivisionPage = Page[Division]

type ListDivisionsParams struct {
	Page               int
	Limit              int
	CountryCodes       []string
	SettlementIDs      []string
	DivisionCategories []string
	Latitude           *float64
	Longitude          *float64
}

type ExchangeRate struct {
	CurrencyCodeA string  `json:"currencyCodeA"`
	CurrencyCodeB string  `json:"currencyCodeB"`
	RateBuy       float64 `json:"rateBuy"`
	RateSell      float64 `json:"rateSell"`
	Date          string  `json:"date"`
}

type Measurement struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type Currency struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// CargoClassifier — позиция УКТ ЗЕД.
type CargoClassifier struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
