package analytics

import (
	"slices"
	"strings"

	"github.com/BearBump/NovaDash/internal/models"
)

const recentShipmentsLimit = 50

// inRange compares date-only keys. Shipments without a creation date always pass.
func inRange(sh *models.Shipment, from, to string) bool {
	dk := sh.DateKey()
	if dk == "" {
		return true
	}
	if from != "" && dk < from {
		return false
	}
	if to != "" && dk > to {
		return false
	}
	return true
}

// Aggregate builds the report from loaded shipments. Input order is kept for
// RecentShipments.
func Aggregate(loaded []models.Shipment, totalAvailable int, from, to string) *models.Analytics {
	filtered := make([]models.Shipment, 0, len(loaded))
	for i := range loaded {
		if inRange(&loaded[i], from, to) {
			filtered = append(filtered, loaded[i])
		}
	}

	a := &models.Analytics{
		TotalShipments:  len(filtered),
		TotalAvailable:  totalAvailable,
		LoadedShipments: len(loaded),
		CurrencyCode:    "UAH",
	}

	var labels []string
	labelCounts := make(map[string]int)
	daily := make(map[string]*models.DailyStat)

	for i := range filtered {
		sh := &filtered[i]
		group := Group(sh)
		declared := DeclaredValue(sh)
		delivery := DeliveryCost(sh)

		switch group {
		case models.GroupDelivered:
			a.DeliveredCount++
		case models.GroupAtBranch:
			a.AtBranchCount++
		case models.GroupInTransit:
			a.InTransitCount++
		case models.GroupReadyToShip:
			a.ReadyToShipCount++
		case models.GroupReturned:
			a.ReturnedCount++
		default:
			a.OtherCount++
		}

		label := Label(sh)
		if _, seen := labelCounts[label]; !seen {
			labels = append(labels, label)
		}
		labelCounts[label]++

		a.TotalDeclaredValue += declared
		a.TotalDeliveryCost += delivery
		if group == models.GroupDelivered {
			a.DeliveredDeclaredValue += declared
			a.DeliveredDeliveryCost += delivery
		}
		if sh.CurrencyCode != "" {
			a.CurrencyCode = sh.CurrencyCode
		}

		dk := sh.DateKey()
		if dk == "" {
			continue
		}
		if a.DateFrom == nil || dk < *a.DateFrom {
			a.DateFrom = &dk
		}
		if a.DateTo == nil || dk > *a.DateTo {
			a.DateTo = &dk
		}
		d, ok := daily[dk]
		if !ok {
			d = &models.DailyStat{Date: dk}
			daily[dk] = d
		}
		d.Shipments++
		d.TotalDeclaredValue += declared
		d.TotalDeliveryCost += delivery
		switch group {
		case models.GroupDelivered:
			d.Delivered++
			d.DeliveredDeclaredValue += declared
			d.DeliveredDeliveryCost += delivery
		case models.GroupReturned:
			d.Returned++
		}
	}

	total := len(filtered)
	a.ReturnedPercentage = percent(a.ReturnedCount, total)

	a.StatusBreakdown = make([]models.StatusBreakdown, 0, len(labels))
	for _, l := range labels {
		a.StatusBreakdown = append(a.StatusBreakdown, models.StatusBreakdown{
			Status:     l,
			Label:      l,
			Count:      labelCounts[l],
			Percentage: percent(labelCounts[l], total),
		})
	}
	// при равенстве сохраняется порядок первого появления
	slices.SortStableFunc(a.StatusBreakdown, func(x, y models.StatusBreakdown) int { return y.Count - x.Count })

	a.DailyStats = make([]models.DailyStat, 0, len(daily))
	for _, d := range daily {
		a.DailyStats = append(a.DailyStats, *d)
	}
	slices.SortFunc(a.DailyStats, func(x, y models.DailyStat) int { return strings.Compare(x.Date, y.Date) })

	a.RecentShipments = filtered[:min(len(filtered), recentShipmentsLimit)]
	return a
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
