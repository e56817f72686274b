package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"pharmaplus_echo/internal/models"
)

func TestCalculatePharmacyStats(t *testing.T) {
	db := newTestDB(t)

	pharmacy := createTestPharmacy(t, db, &models.Pharmacy{Name: "Stats Pharmacy"})
	other := createTestPharmacy(t, db, &models.Pharmacy{Name: "Other"})

	createTestMedicine(t, db, &models.Medicine{Name: "A", Stock: 30, PharmacyID: pharmacy.ID})
	createTestMedicine(t, db, &models.Medicine{Name: "B", Stock: 12, PharmacyID: pharmacy.ID})
	createTestMedicine(t, db, &models.Medicine{Name: "Elsewhere", Stock: 99, PharmacyID: other.ID})

	// Two customers, one of them twice; one malformed total; one order at
	// another pharmacy that must not count.
	orders := []models.Order{
		{PharmacyID: pharmacy.ID, UserID: 1, Total: "100.50"},
		{PharmacyID: pharmacy.ID, UserID: 1, Total: "49.50"},
		{PharmacyID: pharmacy.ID, UserID: 2, Total: "not-a-number"},
		{PharmacyID: other.ID, UserID: 3, Total: "1000"},
	}
	for i := range orders {
		if err := db.Create(&orders[i]).Error; err != nil {
			t.Fatalf("create order: %v", err)
		}
	}

	stats, err := CalculatePharmacyStats(context.Background(), db, pharmacy.ID)
	if err != nil {
		t.Fatalf("CalculatePharmacyStats: %v", err)
	}

	if stats.TotalOrders != 3 {
		t.Errorf("totalOrders = %d; want 3", stats.TotalOrders)
	}
	if stats.TotalSales != 150.0 {
		t.Errorf("totalSales = %v; want 150 (malformed total counts as 0)", stats.TotalSales)
	}
	if stats.NoOfCustomers != 2 {
		t.Errorf("noOfCustomers = %d; want 2", stats.NoOfCustomers)
	}
	if stats.ProductsInStock != 42 {
		t.Errorf("productsInStock = %d; want 42", stats.ProductsInStock)
	}

	if len(stats.Last7MonthsSales) != 7 {
		t.Fatalf("last7MonthsSales has %d buckets; want 7", len(stats.Last7MonthsSales))
	}
	currentMonth := time.Now().Format("2006-01")
	last := stats.Last7MonthsSales[6]
	if last.Month != currentMonth {
		t.Errorf("final bucket = %q; want current month %q", last.Month, currentMonth)
	}
	if last.Sales != 150.0 {
		t.Errorf("current month sales = %v; want 150", last.Sales)
	}
	for _, bucket := range stats.Last7MonthsSales[:6] {
		if bucket.Sales != 0 {
			t.Errorf("month %s sales = %v; want 0 for empty months", bucket.Month, bucket.Sales)
		}
	}

	// The snapshot must be persisted onto the pharmacy row.
	var got models.Pharmacy
	db.First(&got, pharmacy.ID)
	if got.TotalOrders != 3 || got.TotalSales != 150.0 || got.NoOfCustomers != 2 {
		t.Errorf("persisted snapshot = %+v; want the computed stats", got)
	}
	if len(got.Last7MonthsSales) != 7 {
		t.Errorf("persisted last7MonthsSales has %d buckets; want 7", len(got.Last7MonthsSales))
	}
}

func TestCalculatePharmacyStatsEmptyPharmacy(t *testing.T) {
	db := newTestDB(t)

	pharmacy := createTestPharmacy(t, db, &models.Pharmacy{Name: "Empty"})

	stats, err := CalculatePharmacyStats(context.Background(), db, pharmacy.ID)
	if err != nil {
		t.Fatalf("CalculatePharmacyStats: %v", err)
	}

	if stats.TotalOrders != 0 || stats.TotalSales != 0 || stats.NoOfCustomers != 0 || stats.ProductsInStock != 0 {
		t.Errorf("stats = %+v; want all zeros", stats)
	}
	if len(stats.Last7MonthsSales) != 7 {
		t.Errorf("last7MonthsSales has %d buckets; want 7 zero-filled buckets", len(stats.Last7MonthsSales))
	}
}

func TestCalculatePharmacyStatsUnknownPharmacy(t *testing.T) {
	db := newTestDB(t)

	_, err := CalculatePharmacyStats(context.Background(), db, 4242)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v; want ErrNotFound", err)
	}
}

func TestLast7Months(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		expected []string
	}{
		{
			name:     "mid month",
			now:      time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC),
			expected: []string{"2025-09", "2025-10", "2025-11", "2025-12", "2026-01", "2026-02", "2026-03"},
		},
		{
			name:     "31st with short months in the window",
			now:      time.Date(2026, time.May, 31, 23, 59, 0, 0, time.UTC),
			expected: []string{"2025-11", "2025-12", "2026-01", "2026-02", "2026-03", "2026-04", "2026-05"},
		},
		{
			name:     "january 31st wraps into the previous year",
			now:      time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC),
			expected: []string{"2025-07", "2025-08", "2025-09", "2025-10", "2025-11", "2025-12", "2026-01"},
		},
		{
			name:     "march 30th steps over february",
			now:      time.Date(2026, time.March, 30, 12, 0, 0, 0, time.UTC),
			expected: []string{"2025-09", "2025-10", "2025-11", "2025-12", "2026-01", "2026-02", "2026-03"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := last7Months(tt.now)
			if len(got) != len(tt.expected) {
				t.Fatalf("last7Months = %v; want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Fatalf("last7Months = %v; want %v", got, tt.expected)
				}
			}
		})
	}
}

func TestParseOrderTotal(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"100", 100},
		{"99.99", 99.99},
		{"", 0},
		{"abc", 0},
		{"12.5.3", 0},
	}
	for _, tt := range tests {
		if got := ParseOrderTotal(tt.input); got != tt.expected {
			t.Errorf("ParseOrderTotal(%q) = %v; want %v", tt.input, got, tt.expected)
		}
	}
}
