package models

// Document statuses returned in Shipment.Status. The API may return others.
const (
	ShipmentStatusReadyToShip = "ReadyToShip"
	ShipmentStatusIssued      = "Issued"
	ShipmentStatusCreated     = "Created"
	ShipmentStatusDelivered   = "Delivered"
	ShipmentStatusReturned    = "Returned"
	ShipmentStatusDeleted     = "Deleted"
)

type AddressParts struct {
	City     string `json:"city"`
	Region   string `json:"region"`
	Street   string `json:"street"`
	PostCode string `json:"post_code"`
	Building string `json:"building"`
	Flat     string `json:"flat"`
	Block    string `json:"block"`
	Note     string `json:"note"`
}

type ShipmentContact struct {
	CompanyID        *string      `json:"companyId"`
	CompanyTin       string       `json:"companyTin"`
	CompanyName      string       `json:"companyName"`
	Phone            string       `json:"phone"`
	Email            string       `json:"email"`
	Name             string       `json:"name"`
	CountryCode      string       `json:"countryCode"`
	SettlementID     string       `json:"settlementId"`
	CityID           *string      `json:"cityId"`
	Address          string       `json:"address"`
	AddressParts     AddressParts `json:"addressParts"`
	DivisionID       string       `json:"divisionId"`
	DivisionCategory string       `json:"divisionCategory"`
	ServiceType      string       `json:"serviceType"`
}

type Parcel struct {
	Number            string  `json:"number"`
	RowNumber         int     `json:"row_number"`
	CargoCategoryID   string  `json:"cargo_category_id"`
	ParcelDescription string  `json:"parcel_description"`
	InsuranceCost     float64 `json:"insurance_cost"`
	Length            float64 `json:"length"`
	Width             float64 `json:"width"`
	Height            float64 `json:"height"`
	ActualWeight      float64 `json:"actual_weight"`
	VolumetricWeight  float64 `json:"volumetric_weight"`
}

type ShipmentService struct {
	ID            int64   `json:"id"`
	ServiceID     string  `json:"service_id"`
	ServiceType   string  `json:"service_type"`
	ServiceName   string  `json:"service_name"`
	ServiceCode   string  `json:"service_code"`
	ParcelNumber  string  `json:"parcel_number"`
	PayerType     string  `json:"payer_type"`
	Amount        float64 `json:"amount"`
	Price         float64 `json:"price"`
	Discount      float64 `json:"discount"`
	Cost          float64 `json:"cost"`
	PaymentStatus string  `json:"payment_status"`
	CurrencyCode  string  `json:"currency_code"`
}

// OnlineTracking — сводка из системы трекинга. Код статуса (1..11) задаёт перевозчик.
type OnlineTracking struct {
	TrackingStatusCode *int   `json:"tracking_status_code"`
	TrackingUpdateDate string `json:"tracking_update_date"`
	ShortDescription   string `json:"short_description"`
	LongDescription    string `json:"long_description"`
	Info               string `json:"info"`
	Label              string `json:"label"`
}

type TrackingEvent struct {
	Number         string `json:"number"`
	Date           string `json:"date"`
	Division       string `json:"division"`
	Settlement     string `json:"settlement"`
	Event          string `json:"event"`
	EventStatus    string `json:"event_status"`
	Code           string `json:"code"`
	DivisionName   string `json:"division_name"`
	SettlementName string `json:"settlement_name"`
	EventName      string `json:"event_name"`
}

type Shipment struct {
	ID                    string  `json:"id"`
	Version               int     `json:"version"`
	Number                string  `json:"number"`
	DateTime              string  `json:"dateTime"`
	ScheduledDeliveryDate string  `json:"scheduledDeliveryDate"`
	CreatedAt             string  `json:"createdAt"`
	UpdatedAt             string  `json:"updatedAt"`
	DeletedAt             *string `json:"deletedAt"`
	Status                string  `json:"status"`
	PaymentStatus         string  `json:"paymentStatus"`
	CurrencyCode          string  `json:"currencyCode"`
	ParcelsAmount         int     `json:"parcelsAmount"`
	Note                  string  `json:"note"`
	PayerType             string  `json:"payerType"`
	RegisterNumber        string  `json:"registerNumber"`
	PickupNumber          string  `json:"pickupNumber"`

	Sender         *ShipmentContact  `json:"sender,omitempty"`
	Recipient      *ShipmentContact  `json:"recipient,omitempty"`
	Parcels        []Parcel          `json:"parcels"`
	Services       []ShipmentService `json:"services"`
	OnlineTracking *OnlineTracking   `json:"onlineTracking,omitempty"`
	Tracking       []TrackingEvent   `json:"tracking"`

	TotalWeight        float64 `json:"totalWeight"`
	TotalInsuranceCost float64 `json:"totalInsuranceCost"`
	TotalCost          float64 `json:"totalCost"`
}

// TrackingCode returns the real-time tracking status code, if the upstream sent one.
func (s *Shipment) TrackingCode() (int, bool) {
	if s.OnlineTracking == nil || s.OnlineTracking.TrackingStatusCode == nil {
		return 0, false
	}
	return *s.OnlineTracking.TrackingStatusCode, true
}

// DateKey — дата создания в виде YYYY-MM-DD; пустая строка, если даты нет.
func (s *Shipment) DateKey() string {
	if len(s.CreatedAt) < 10 {
		return s.CreatedAt
	}
	return s.CreatedAt[:10]
}

type ShipmentPage = Page[Shipment]

type ListShipmentsParams struct {
	IDs     []string
	Numbers []string
	Page    int
	Limit   int
}

type ShipmentCreated struct {
	ID                    int64   `json:"id"`
	Number                string  `json:"number"`
	ScheduledDeliveryDate string  `json:"scheduledDeliveryDate"`
	Status                string  `json:"status"`
	Cost                  float64 `json:"cost"`
	ParcelsAmount         int     `json:"parcelsAmount"`
	CreatedAt             string  `json:"createdAt"`
	UpdatedAt             string  `json:"updatedAt"`
	DeletedAt             *string `json:"deletedAt"`
}

type CostService struct {
	ServiceID    string  `json:"serviceId"`
	ServiceName  string  `json:"serviceName"`
	ServiceCode  string  `json:"serviceCode"`
	Amount       float64 `json:"amount"`
	Price        float64 `json:"price"`
	CurrencyCode string  `json:"currencyCode"`
	Cost         float64 `json:"cost"`
}

type CostCalculation struct {
	Services []CostService `json:"services"`
}

type HistoryTrackingEvent struct {
	Code        string `json:"code"`
	CodeName    string `json:"code_name"`
	CountryCode string `json:"country_code"`
	Settlement  string `json:"settlement"`
	Date        string `json:"date"`
}

type TrackingHistoryItem struct {
	ID                    string                 `json:"id"`
	Number                string                 `json:"number"`
	ScheduledDeliveryDate string                 `json:"scheduled_delivery_date"`
	HistoryTracking       []HistoryTrackingEvent `json:"history_tracking"`
}

type TrackingHistory struct {
	Items []TrackingHistoryItem `json:"items"`
}

// Print document kinds accepted by /shipments/print.
const (
	PrintMarking       = "marking"
	PrintInternational = "international"
	PrintInvoice       = "invoice"
)
