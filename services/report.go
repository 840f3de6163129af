package services

import (
	"fmt"
	"sort"
	"strings"

	"market-etl/models"
	"market-etl/utils"
)

// ReportService computes read-only statistics over stored products for the
// inspection utility. It never writes to the store.
type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

func (s *ReportService) Generate(products []*models.Product) *models.StoreReport {
	report := &models.StoreReport{}
	if len(products) == 0 {
		return report
	}

	report.TotalRows = len(products)

	var rated []*models.Product
	report.MinPrice = products[0].Price
	report.MaxPrice = products[0].Price

	var total float64
	for _, p := range products {
		total += p.Price
		if p.Price < report.MinPrice {
			report.MinPrice = p.Price
		}
		if p.Price > report.MaxPrice {
			report.MaxPrice = p.Price
		}
		if p.Rating != nil {
			report.WithRating++
			rated = append(rated, p)
		}
	}
	report.AveragePrice = round2(total / float64(len(products)))
	report.MinPrice = round2(report.MinPrice)
	report.MaxPrice = round2(report.MaxPrice)

	// Top 5 by rating
	sort.Slice(rated, func(i, j int) bool {
		return *rated[i].Rating > *rated[j].Rating
	})
	if len(rated) > 5 {
		report.TopRated = rated[:5]
	} else {
		report.TopRated = rated
	}

	return report
}

func (s *ReportService) Print(r *models.StoreReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  PRODUCTS TABLE REPORT\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Rows stored   : \033[1m%d\033[0m\n", r.TotalRows)
	fmt.Printf("  With a rating : \033[1m%d\033[0m\n", r.WithRating)
	fmt.Println()

	fmt.Printf("\033[1;33m  Price Statistics\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.TotalRows > 0 {
		fmt.Printf("  Average price : \033[1;32m%.2f\033[0m\n", r.AveragePrice)
		fmt.Printf("  Minimum price : \033[1;32m%.2f\033[0m\n", r.MinPrice)
		fmt.Printf("  Maximum price : \033[1;32m%.2f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Printf("  No rows stored yet\n")
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Top 5 Highest Rated\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopRated) == 0 {
		fmt.Printf("  No rated products found\n")
	} else {
		for i, p := range r.TopRated {
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m%.2f ★\033[0m\n",
				i+1, truncate(p.Name, 38), *p.Rating)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
