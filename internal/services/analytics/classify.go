package analytics

import "github.com/BearBump/NovaDash/internal/models"

// Маркер услуги наложенного платежа в services[].service_name.
const codServiceMarker = "Контроль оплати"

const unknownLabel = "Невідомо"

// Group maps a shipment to its delivery group. The tracking code always wins
// over the document status.
func Group(sh *models.Shipment) models.StatusGroup {
	code, ok := sh.TrackingCode()
	if !ok {
		switch sh.Status {
		case models.ShipmentStatusReadyToShip, models.ShipmentStatusIssued, models.ShipmentStatusCreated:
			return models.GroupReadyToShip
		}
		return models.GroupOther
	}
	switch code {
	case 1:
		return models.GroupReadyToShip
	case 4, 5, 11:
		return models.GroupInTransit
	case 6:
		return models.GroupAtBranch
	case 7:
		return models.GroupDelivered
	case 8, 9, 10:
		return models.GroupReturned
	default:
		return models.GroupOther
	}
}

var trackingLabels = map[int]string{
	1:  "Чекаємо на посилку",
	4:  "В дорозі",
	5:  "В дорозі",
	6:  "У відділенні",
	7:  "Отримано",
	8:  "Відмова",
	9:  "Повернення в дорозі",
	10: "Повернення отримано",
	11: "На митниці",
}

// Label is the status-breakdown label of a shipment.
func Label(sh *models.Shipment) string {
	if code, ok := sh.TrackingCode(); ok {
		if l, ok := trackingLabels[code]; ok {
			return l
		}
	}
	if sh.OnlineTracking != nil && sh.OnlineTracking.ShortDescription != "" {
		return sh.OnlineTracking.ShortDescription
	}
	if l, ok := models.DocumentStatusLabel(sh.Status); ok {
		return l
	}
	if sh.Status != "" {
		return sh.Status
	}
	return unknownLabel
}
