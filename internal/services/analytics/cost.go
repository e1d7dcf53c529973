package analytics

import (
	"strings"

	"github.com/BearBump/NovaDash/internal/models"
)

func isCOD(s models.ShipmentService) bool {
	return strings.Contains(s.ServiceName, codServiceMarker)
}

// DeclaredValue — оголошена вартість: totalInsuranceCost, а если он нулевой,
// стоимость услуги наложенного платежа.
func DeclaredValue(sh *models.Shipment) float64 {
	if sh.TotalInsuranceCost != 0 {
		return sh.TotalInsuranceCost
	}
	for _, s := range sh.Services {
		if isCOD(s) {
			return s.Cost
		}
	}
	return 0
}

// DeliveryCost sums carrier fees. The COD amount is collected from the
// recipient and is not a fee.
func DeliveryCost(sh *models.Shipment) float64 {
	var sum float64
	for _, s := range sh.Services {
		if !isCOD(s) {
			sum += s.Cost
		}
	}
	return sum
}
