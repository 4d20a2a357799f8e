package production

import "github.com/mamadbah2/linetrack/internal/domain/models"

// Built-in datasets served when neither the backend nor the cache can answer.

func defaultLines() []models.ProductionLine {
	return []models.ProductionLine{
		{ID: 1, Name: "Line 1", Capacity: 120, IsActive: true, SupervisorID: 1},
		{ID: 2, Name: "Line 2", Capacity: 150, IsActive: true, SupervisorID: 2},
		{ID: 3, Name: "Line 3", Capacity: 100, IsActive: true, SupervisorID: 3},
	}
}

func defaultBuyers() []models.Buyer {
	return []models.Buyer{
		{ID: 1, Name: "H&M", Code: "HM001", ContactEmail: "orders@hm.com", IsActive: true},
		{ID: 2, Name: "Zara", Code: "ZR001", ContactEmail: "production@zara.com", IsActive: true},
		{ID: 3, Name: "Uniqlo", Code: "UQ001", ContactEmail: "supply@uniqlo.com", IsActive: true},
	}
}

func defaultStyles() []models.Style {
	return []models.Style{
		{ID: 1, StyleNo: "ST001", Description: "Basic T-Shirt", BuyerID: 1, FabricType: "Cotton", TargetSAM: 15, Complexity: "Low"},
		{ID: 2, StyleNo: "ST002", Description: "Polo Shirt", BuyerID: 1, FabricType: "Cotton Blend", TargetSAM: 25, Complexity: "Medium"},
		{ID: 3, StyleNo: "ST003", Description: "Dress Shirt", BuyerID: 2, FabricType: "Cotton", TargetSAM: 35, Complexity: "High"},
	}
}

func defaultOrders() []models.ProductionOrder {
	return []models.ProductionOrder{
		{
			ID: 1, OrderNo: "ORD001", StyleID: 1, BuyerID: 1, Quantity: 5000,
			DeliveryDate: "2025-02-15", UnitPrice: 12.50, Status: models.OrderInProgress,
			CreatedAt: "2025-01-15T00:00:00Z",
		},
		{
			ID: 2, OrderNo: "ORD002", StyleID: 2, BuyerID: 2, Quantity: 3000,
			DeliveryDate: "2025-02-20", UnitPrice: 18.75, Status: models.OrderPending,
			CreatedAt: "2025-01-18T00:00:00Z",
		},
	}
}

func defaultDashboard() models.DashboardMetrics {
	return models.DashboardMetrics{
		TotalLines:        5,
		ActiveLines:       3,
		TodayProduction:   1250,
		TodayTarget:       1500,
		OverallEfficiency: 83.3,
		QualityRate:       96.5,
		TopPerformingLine: "Line 2",
		CriticalOrders:    2,
	}
}

func defaultSummary() []models.ProductionSummary {
	return []models.ProductionSummary{
		{
			LineID: 1, LineName: "Line 1", ProductionDate: "2025-01-21", OrderNo: "ORD001",
			Style: "Basic T-Shirt", Buyer: "H&M", TargetQuantity: 500, ActualQuantity: 485,
			DefectQuantity: 12, Efficiency: 97.0, QualityRate: 97.5,
		},
	}
}
