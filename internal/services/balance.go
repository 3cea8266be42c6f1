package services

import (
	"strconv"
	"strings"

	"github.com/abbasons/ledger/internal/models"
)

// scrapeWeightDivisor converts the scale weight unit into the pricing unit
// for scrape items. The recorded amount depends on this exact value.
const scrapeWeightDivisor = 37.324

var scrapeItems = map[string]bool{
	"Black Scrape": true,
	"White Scrape": true,
	"Toka Scrape":  true,
	"Pig Scrape":   true,
}

// CalculateAmount derives a transaction amount from weight, rate and item.
// Scrape items are priced per converted weight unit; everything else is
// weight times rate. Missing or non-numeric inputs count as zero.
func CalculateAmount(weight, rate, item string) float64 {
	w := parseDecimal(weight)
	r := parseDecimal(rate)

	if scrapeItems[item] {
		return (w / scrapeWeightDivisor) * r
	}
	return w * r
}

// CalculateBalance folds a customer's transactions in the given order.
// Debit entries add to the balance, Credit entries subtract.
func CalculateBalance(transactions []models.Transaction) float64 {
	balance := 0.0
	for _, t := range transactions {
		if t.DrCr == models.DrCrDebit {
			balance += t.Amount
		} else {
			balance -= t.Amount
		}
	}
	return balance
}

// DrCrStatus classifies a balance by its sign. Exactly zero is Nill.
func DrCrStatus(balance float64) models.DrCr {
	switch {
	case balance == 0:
		return models.StatusNill
	case balance > 0:
		return models.StatusDR
	default:
		return models.StatusCR
	}
}

// CalculateStats aggregates the book position over all customers. Nill
// customers contribute to the head count only.
func CalculateStats(customers []models.Customer) models.Stats {
	stats := models.Stats{TotalCustomers: len(customers)}

	for _, c := range customers {
		balance := c.Balance
		if balance < 0 {
			balance = -balance
		}
		switch c.DrCr {
		case models.StatusDR:
			stats.TotalDR += balance
		case models.StatusCR:
			stats.TotalCR += balance
		}
	}

	stats.NetPosition = stats.TotalDR - stats.TotalCR
	return stats
}

func parseDecimal(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
