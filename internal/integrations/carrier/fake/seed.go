package fake

import (
	"fmt"
	"time"

	"github.com/BearBump/NovaDash/internal/models"
)

// Демонстрационные данные для режима fake: коды трекинга по кругу, даты за
// последние days дней.
var seedCodes = []int{1, 4, 5, 6, 7, 7, 7, 8, 9, 10, 11}

func Seed(n, days int, now time.Time) []models.Shipment {
	out := make([]models.Shipment, 0, n)
	for i := 0; i < n; i++ {
		code := seedCodes[i%len(seedCodes)]
		created := now.AddDate(0, 0, -(i % max(days, 1)))
		services := []models.ShipmentService{{ServiceName: "Доставка", Cost: float64(60 + i%5*10), CurrencyCode: "UAH"}}
		if i%3 == 0 {
			services = append(services, models.ShipmentService{ServiceName: "Контроль оплати", Cost: float64(500 + i), CurrencyCode: "UAH"})
		}
		out = append(out, Shipment(fmt.Sprintf("s-%d", i+1), created, &code, services...))
	}
	return out
}

// Shipment builds a minimal shipment; code may be nil for "no tracking data".
func Shipment(id string, created time.Time, code *int, services ...models.ShipmentService) models.Shipment {
	sh := models.Shipment{
		ID:           id,
		Number:       "2040" + id,
		CreatedAt:    created.UTC().Format(time.RFC3339),
		Status:       models.ShipmentStatusReadyToShip,
		CurrencyCode: "UAH",
		Services:     services,
	}
	if code != nil {
		c := *code
		sh.OnlineTracking = &models.OnlineTracking{TrackingStatusCode: &c}
	}
	return sh
}
