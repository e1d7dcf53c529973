package models

// documentStatusLabels — українські назви статусів документа.
var documentStatusLabels = map[string]string{
	"ReadyToShip":            "Очікує відправки",
	"Received":               "Отримано у відділенні",
	"InTransit":              "В дорозі",
	"Delivered":              "Доставлено",
	"Returned":               "Повернення",
	"Deleted":                "Видалено",
	"Accepted":               "Прийнято",
	"Issued":                 "Оформлено",
	"Processing":             "В обробці",
	"Created":                "Створено",
	"Pending":                "Очікування",
	"Cancelled":              "Скасовано",
	"OnTheWay":               "В дорозі",
	"LoadingCourier":         "Завантаження кур'єром",
	"ArrivedAtDestination":   "Прибув у пункт призначення",
	"ArrivedAtSortingCenter": "Прибув на сортувальний центр",
	"Sorting":                "Сортування",
	"AwaitingPickup":         "Очікує отримання",
	"ReturnInTransit":        "Повернення в дорозі",
	"Customs":                "На митниці",
}

// DocumentStatusLabel returns the Ukrainian label of a document status.
func DocumentStatusLabel(status string) (string, bool) {
	l, ok := documentStatusLabels[status]
	return l, ok
}
