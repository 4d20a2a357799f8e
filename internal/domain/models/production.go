package models

import "math"

// Order statuses reported by the backend.
const (
	OrderPending    = "Pending"
	OrderInProgress = "In Progress"
	OrderCompleted  = "Completed"
	OrderCancelled  = "Cancelled"
)

// ProductionLine is a sewing line on the factory floor.
type ProductionLine struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Capacity     int    `json:"capacity"`
	IsActive     bool   `json:"isActive"`
	SupervisorID int    `json:"supervisorId,omitempty"`
}

// Buyer is a brand placing production orders.
type Buyer struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	ContactEmail string `json:"contactEmail"`
	IsActive     bool   `json:"isActive"`
}

// Style is a garment design belonging to a buyer.
type Style struct {
	ID          int     `json:"id"`
	StyleNo     string  `json:"styleNo"`
	Description string  `json:"description"`
	BuyerID     int     `json:"buyerId"`
	FabricType  string  `json:"fabricType"`
	TargetSAM   float64 `json:"targetSAM"` // standard allowed minutes
	Complexity  string  `json:"complexity"`
}

// ProductionOrder is a buyer order for a style.
type ProductionOrder struct {
	ID           int     `json:"id"`
	OrderNo      string  `json:"orderNo"`
	StyleID      int     `json:"styleId"`
	BuyerID      int     `json:"buyerId"`
	Quantity     int     `json:"quantity"`
	DeliveryDate string  `json:"deliveryDate"`
	UnitPrice    float64 `json:"unitPrice"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"createdAt,omitempty"`
}

// LineSetup assigns an order to a line for a production day.
type LineSetup struct {
	ID             int    `json:"id,omitempty"`
	LineID         int    `json:"lineId"`
	OrderID        int    `json:"orderId"`
	ProductionDate string `json:"productionDate"`
	TargetQuantity int    `json:"targetQuantity"`
	SetupTime      string `json:"setupTime"`
	IsActive       bool   `json:"isActive"`
}

// HourlyEntry is the payload a supervisor submits for one hour slot of a line.
type HourlyEntry struct {
	LineSetupID    int    `json:"lineSetupId"`
	LineID         int    `json:"lineId,omitempty"`
	HourSlot       string `json:"hourSlot"`
	TargetQuantity int    `json:"targetQuantity"`
	ActualQuantity int    `json:"actualQuantity"`
	DefectQuantity int    `json:"defectQuantity"`
	Remarks        string `json:"remarks,omitempty"`
	EnteredBy      int    `json:"enteredBy"`
}

// HourlyProduction is an hourly entry accepted by the backend.
type HourlyProduction struct {
	ID int `json:"id"`
	HourlyEntry
	EntryTime string `json:"entryTime"`
}

// QualityDefect records defects found in an hourly production batch.
type QualityDefect struct {
	ID                 int    `json:"id,omitempty"`
	HourlyProductionID int    `json:"hourlyProductionId"`
	DefectType         string `json:"defectType"`
	DefectCount        int    `json:"defectCount"`
	Severity           string `json:"severity"`
	Description        string `json:"description,omitempty"`
	ActionTaken        string `json:"actionTaken,omitempty"`
}

// ProductionSummary is one row of the production summary report.
type ProductionSummary struct {
	LineID         int     `json:"lineId"`
	LineName       string  `json:"lineName"`
	ProductionDate string  `json:"productionDate"`
	OrderNo        string  `json:"orderNo"`
	Style          string  `json:"style"`
	Buyer          string  `json:"buyer"`
	TargetQuantity int     `json:"targetQuantity"`
	ActualQuantity int     `json:"actualQuantity"`
	DefectQuantity int     `json:"defectQuantity"`
	Efficiency     float64 `json:"efficiency"`
	QualityRate    float64 `json:"qualityRate"`
}

// DashboardMetrics aggregates the floor status for a day.
type DashboardMetrics struct {
	TotalLines        int     `json:"totalLines"`
	ActiveLines       int     `json:"activeLines"`
	TodayProduction   int     `json:"todayProduction"`
	TodayTarget       int     `json:"todayTarget"`
	OverallEfficiency float64 `json:"overallEfficiency"`
	QualityRate       float64 `json:"qualityRate"`
	TopPerformingLine string  `json:"topPerformingLine"`
	CriticalOrders    int     `json:"criticalOrders"`
}

// ExportRequest asks the backend to render a report file.
type ExportRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Format    string `json:"format"`
}

// ExportResult points at a rendered report.
type ExportResult struct {
	URL string `json:"url"`
}

// Efficiency returns actual/target as a percentage rounded to one decimal, 0 without a target.
func Efficiency(actual, target int) float64 {
	if target <= 0 {
		return 0
	}
	return math.Round(float64(actual)/float64(target)*1000) / 10
}

// QualityRate returns the share of non-defective output as a percentage, 0 without output.
func QualityRate(actual, defects int) float64 {
	if actual <= 0 {
		return 0
	}
	good := actual - defects
	if good < 0 {
		good = 0
	}
	return math.Round(float64(good)/float64(actual)*1000) / 10
}
