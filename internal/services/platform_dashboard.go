package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"pharmaplus_echo/internal/models"
)

// DashboardMeta describes the generated report.
type DashboardMeta struct {
	GeneratedAt time.Time `json:"generatedAt"`
	ReportTitle string    `json:"reportTitle"`
}

// PlatformSummary holds the headline platform-wide numbers.
type PlatformSummary struct {
	TotalUsers       int64   `json:"totalUsers"`
	TotalRevenue     float64 `json:"totalRevenue"`
	ActivePharmacies int64   `json:"activePharmacies"`
	TotalOrders      int64   `json:"totalOrders"`
	TotalServed      int64   `json:"totalServed"`
	AvgOrderValue    float64 `json:"avgOrderValue"`
	ActiveStockValue float64 `json:"activeStockValue"`
	ActiveOrders     int64   `json:"activeOrders"`
}

// UserGrowthPoint counts user signups in one month of the current year.
type UserGrowthPoint struct {
	Month string `json:"month"`
	Users int64  `json:"users"`
}

// NamedPercent is a label with a percentage value formatted to two decimals.
type NamedPercent struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CategoryCount counts medicines per category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// StatusPercent is the share of orders in one lifecycle state.
type StatusPercent struct {
	Status  models.OrderStatus `json:"status"`
	Percent string             `json:"percent"`
}

// TopPharmacy is one row of the top-pharmacies leaderboard.
type TopPharmacy struct {
	ID          uint                  `json:"id"`
	Name        string                `json:"name"`
	Location    string                `json:"location"`
	Status      models.PharmacyStatus `json:"status"`
	Served      int64                 `json:"served"`
	Sales       float64               `json:"sales"`
	StockValue  float64               `json:"stockValue"`
	TotalOrders int64                 `json:"totalOrders"`
}

// DailySalesPoint is delivered revenue for one day of the current month.
type DailySalesPoint struct {
	Day        int     `json:"day"`
	TotalSales float64 `json:"totalSales"`
}

// PharmacyStatusSummary counts pharmacies per status.
type PharmacyStatusSummary struct {
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// DashboardData is the platform-wide analytics report served to superadmins.
type DashboardData struct {
	Meta                  DashboardMeta         `json:"meta"`
	PlatformSummary       PlatformSummary       `json:"platformSummary"`
	UserGrowth            []UserGrowthPoint     `json:"userGrowth"`
	RevenueDistribution   []NamedPercent        `json:"revenueDistribution"`
	StockMovement         []CategoryCount       `json:"stockMovement"`
	OrderStatus           []StatusPercent       `json:"orderStatus"`
	TopPharmacies         []TopPharmacy         `json:"topPharmacies"`
	DailySalesThisMonth   []DailySalesPoint     `json:"dailySalesThisMonth"`
	PharmacyStatusSummary PharmacyStatusSummary `json:"pharmacyStatusSummary"`
}

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// GetDashboardData computes the platform-wide analytics report. Everything is
// derived from current rows; nothing here is authoritative state.
func GetDashboardData(ctx context.Context, db *gorm.DB) (*DashboardData, error) {
	tx := db.WithContext(ctx)
	now := time.Now()

	var users []models.User
	if err := tx.Where("role <> ?", models.RoleSuperadmin).Find(&users).Error; err != nil {
		return nil, err
	}
	var pharmacies []models.Pharmacy
	if err := tx.Find(&pharmacies).Error; err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := tx.Find(&orders).Error; err != nil {
		return nil, err
	}
	var medicines []models.Medicine
	if err := tx.Find(&medicines).Error; err != nil {
		return nil, err
	}

	data := &DashboardData{
		Meta: DashboardMeta{
			GeneratedAt: now,
			ReportTitle: "Global Analytics Overview",
		},
	}

	// Platform summary
	activePharmacyIDs := make(map[uint]struct{})
	for _, p := range pharmacies {
		switch p.Status {
		case models.PharmacyStatusActive:
			data.PlatformSummary.ActivePharmacies++
			activePharmacyIDs[p.ID] = struct{}{}
		case models.PharmacyStatusInactive:
			data.PharmacyStatusSummary.Inactive++
		}
	}
	data.PharmacyStatusSummary.Active = data.PlatformSummary.ActivePharmacies

	statusCounts := make(map[models.OrderStatus]int64)
	for _, o := range orders {
		statusCounts[o.Status]++
		if o.Status == models.OrderStatusDelivered {
			data.PlatformSummary.TotalRevenue += ParseOrderTotal(o.Total)
			data.PlatformSummary.TotalOrders++
			data.PlatformSummary.TotalServed++
		}
		if o.Status != models.OrderStatusCancelled {
			data.PlatformSummary.ActiveOrders++
		}
	}

	data.PlatformSummary.TotalUsers = int64(len(users))
	denom := data.PlatformSummary.TotalOrders
	if denom == 0 {
		denom = 1
	}
	data.PlatformSummary.AvgOrderValue = data.PlatformSummary.TotalRevenue / float64(denom)

	for _, m := range medicines {
		if _, ok := activePharmacyIDs[m.PharmacyID]; ok {
			data.PlatformSummary.ActiveStockValue += float64(m.Stock) * m.Price
		}
	}

	// User growth per month of the current year
	data.UserGrowth = make([]UserGrowthPoint, 0, 12)
	for m := 0; m < 12; m++ {
		var count int64
		for _, u := range users {
			if u.CreatedAt.Year() == now.Year() && int(u.CreatedAt.Month())-1 == m {
				count++
			}
		}
		data.UserGrowth = append(data.UserGrowth, UserGrowthPoint{Month: monthNames[m], Users: count})
	}

	// Revenue distribution: share of each category tag across pharmacies
	categoryCount := make(map[string]int64)
	var categoryOrder []string
	var totalCategoryCount int64
	for _, p := range pharmacies {
		for _, cat := range p.Categorys {
			if _, seen := categoryCount[cat]; !seen {
				categoryOrder = append(categoryOrder, cat)
			}
			categoryCount[cat]++
			totalCategoryCount++
		}
	}
	data.RevenueDistribution = make([]NamedPercent, 0, len(categoryOrder))
	for _, cat := range categoryOrder {
		value := "0"
		if totalCategoryCount > 0 {
			value = fmt.Sprintf("%.2f", float64(categoryCount[cat])/float64(totalCategoryCount)*100)
		}
		data.RevenueDistribution = append(data.RevenueDistribution, NamedPercent{Name: cat, Value: value})
	}

	// Stock movement: medicine count per category
	medCategoryCount := make(map[string]int64)
	var medCategoryOrder []string
	for _, m := range medicines {
		if _, seen := medCategoryCount[m.Category]; !seen {
			medCategoryOrder = append(medCategoryOrder, m.Category)
		}
		medCategoryCount[m.Category]++
	}
	data.StockMovement = make([]CategoryCount, 0, len(medCategoryOrder))
	for _, cat := range medCategoryOrder {
		data.StockMovement = append(data.StockMovement, CategoryCount{Category: cat, Count: medCategoryCount[cat]})
	}

	// Order status distribution
	totalOrdersAll := int64(len(orders))
	if totalOrdersAll == 0 {
		totalOrdersAll = 1
	}
	statuses := []models.OrderStatus{
		models.OrderStatusPending, models.OrderStatusProcessing,
		models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled,
	}
	data.OrderStatus = make([]StatusPercent, 0, len(statuses))
	for _, s := range statuses {
		count, ok := statusCounts[s]
		if !ok {
			continue
		}
		data.OrderStatus = append(data.OrderStatus, StatusPercent{
			Status:  s,
			Percent: fmt.Sprintf("%.2f", float64(count)/float64(totalOrdersAll)*100),
		})
	}

	// Top 5 pharmacies by cached total sales
	sorted := make([]models.Pharmacy, len(pharmacies))
	copy(sorted, pharmacies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalSales > sorted[j].TotalSales
	})
	limit := 5
	if len(sorted) < limit {
		limit = len(sorted)
	}
	data.TopPharmacies = make([]TopPharmacy, 0, limit)
	for _, p := range sorted[:limit] {
		row := TopPharmacy{
			ID:       p.ID,
			Name:     p.Name,
			Location: p.Address,
			Status:   p.Status,
			Sales:    p.TotalSales,
		}
		for _, m := range medicines {
			if m.PharmacyID == p.ID {
				row.StockValue += float64(m.Stock) * m.Price
			}
		}
		for _, o := range orders {
			if o.PharmacyID != p.ID {
				continue
			}
			row.TotalOrders++
			if o.Status == models.OrderStatusDelivered {
				row.Served++
			}
		}
		data.TopPharmacies = append(data.TopPharmacies, row)
	}

	// Daily delivered sales for the current month, zero-filled
	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	data.DailySalesThisMonth = make([]DailySalesPoint, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		var sales float64
		for _, o := range orders {
			if o.Status != models.OrderStatusDelivered {
				continue
			}
			if o.CreatedAt.Year() == now.Year() && o.CreatedAt.Month() == now.Month() && o.CreatedAt.Day() == day {
				sales += ParseOrderTotal(o.Total)
			}
		}
		data.DailySalesThisMonth = append(data.DailySalesThisMonth, DailySalesPoint{Day: day, TotalSales: sales})
	}

	return data, nil
}
