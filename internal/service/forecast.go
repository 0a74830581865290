package service

import (
	"math"
	"time"

	"lunchline/internal/domain"
)

// DefaultForecastHorizon is the number of future days projected when the
// caller does not ask for a specific horizon.
const DefaultForecastHorizon = 3

// ProjectDemand fits an ordinary least squares line through a product's
// sales history (elapsed days since the first observation against quantity
// sold) and evaluates it for each of the next horizon days after the last
// observation. Predictions are clamped at zero and rounded down. With fewer
// than two observations there is no trend to fit and the projection is
// empty. Records must be ordered by sale date ascending; output is
// chronological and fully determined by the input.
func ProjectDemand(records []*domain.SalesRecord, horizon int) []domain.ForecastPoint {
	if len(records) < 2 || horizon <= 0 {
		return []domain.ForecastPoint{}
	}

	first := domain.DateOf(records[0].SaleDate)
	last := domain.DateOf(records[len(records)-1].SaleDate)

	var sumX, sumY, sumXY, sumXX float64
	for _, record := range records {
		x := elapsedDays(first, record.SaleDate)
		y := float64(record.QuantitySold)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	n := float64(len(records))
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		// All observations on one day; no slope can be derived.
		return []domain.ForecastPoint{}
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	points := make([]domain.ForecastPoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		future := last.AddDate(0, 0, i)
		predicted := intercept + slope*elapsedDays(first, future)
		quantity := 0
		if predicted > 0 {
			quantity = int(math.Floor(predicted))
		}
		points = append(points, domain.ForecastPoint{
			Date:              future,
			PredictedQuantity: quantity,
		})
	}

	return points
}

func elapsedDays(first, t time.Time) float64 {
	return domain.DateOf(t).Sub(first).Hours() / 24
}
