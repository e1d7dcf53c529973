package models

// StatusGroup is one of six mutually exclusive delivery groups.
type StatusGroup string

const (
	GroupReadyToShip StatusGroup = "readyToShip"
	GroupInTransit   StatusGroup = "inTransit"
	GroupAtBranch    StatusGroup = "atBranch"
	GroupDelivered   StatusGroup = "delivered"
	GroupReturned    StatusGroup = "returned"
	GroupOther       StatusGroup = "other"
)

type DailyStat struct {
	Date                   string  `json:"date"`
	Shipments              int     `json:"shipments"`
	Delivered              int     `json:"delivered"`
	Returned               int     `json:"returned"`
	TotalDeclaredValue     float64 `json:"totalDeclaredValue"`
	DeliveredDeclaredValue float64 `json:"deliveredDeclaredValue"`
	TotalDeliveryCost      float64 `json:"totalDeliveryCost"`
	DeliveredDeliveryCost  float64 `json:"deliveredDeliveryCost"`
}

type StatusBreakdown struct {
	Status     string  `json:"status"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Analytics struct {
	TotalShipments  int `json:"totalShipments"`
	TotalAvailable  int `json:"totalAvailable"`
	LoadedShipments int `json:"loadedShipments"`

	DeliveredCount     int     `json:"deliveredCount"`
	AtBranchCount      int     `json:"atBranchCount"`
	InTransitCount     int     `json:"inTransitCount"`
	ReadyToShipCount   int     `json:"readyToShipCount"`
	ReturnedCount      int     `json:"returnedCount"`
	OtherCount         int     `json:"otherCount"`
	ReturnedPercentage float64 `json:"returnedPercentage"`

	TotalDeclaredValue     float64 `json:"totalDeclaredValue"`
	DeliveredDeclaredValue float64 `json:"deliveredDeclaredValue"`
	TotalDeliveryCost      float64 `json:"totalDeliveryCost"`
	DeliveredDeliveryCost  float64 `json:"deliveredDeliveryCost"`
	CurrencyCode           string  `json:"currencyCode"`

	DateFrom *string `json:"dateFrom"`
	DateTo   *string `json:"dateTo"`

	DailyStats      []DailyStat       `json:"dailyStats"`
	StatusBreakdown []StatusBreakdown `json:"statusBreakdown"`
	RecentShipments []Shipment        `json:"recentShipments"`
}
