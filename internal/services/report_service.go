package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"lootlink/internal/models"
)

// ReportService powers the admin reporting surface: the client-customer
// shadow table views, the XLSX export and the analytics overview, plus the
// daily platform-stats snapshot written by the cron job.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// CustomerFilter narrows client-customer queries. Status defaults to
// completed, matching the admin dashboard default.
type CustomerFilter struct {
	ClientID *uint
	LootID   *uint
	Status   string
}

// ClientCustomerRow is a client_customers row joined with display names.
type ClientCustomerRow struct {
	models.ClientCustomer
	ClientName string `json:"client_name"`
	LootTitle  string `json:"loot_title"`
}

func (s *ReportService) customerQuery(filter CustomerFilter) *gorm.DB {
	q := s.db.Model(&models.ClientCustomer{}).
		Select("client_customers.*, users.username AS client_name, loots.title AS loot_title").
		Joins("JOIN users ON users.id = client_customers.client_id").
		Joins("JOIN loots ON loots.id = client_customers.loot_id")

	if filter.ClientID != nil {
		q = q.Where("client_customers.client_id = ?", *filter.ClientID)
	}
	if filter.LootID != nil {
		q = q.Where("client_customers.loot_id = ?", *filter.LootID)
	}

	status := filter.Status
	if status == "" {
		status = models.ReferralCompleted
	}
	return q.Where("client_customers.status = ?", status).
		Order("client_customers.created_at DESC")
}

// ClientCustomers returns the filtered customer report.
func (s *ReportService) ClientCustomers(filter CustomerFilter) ([]ClientCustomerRow, error) {
	var rows []ClientCustomerRow
	if err := s.customerQuery(filter).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ExportClientCustomers renders the filtered customer report as an XLSX workbook.
func (s *ReportService) ExportClientCustomers(filter CustomerFilter) ([]byte, error) {
	rows, err := s.ClientCustomers(filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Customers"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Client", "Loot", "Customer Name", "Customer Mobile", "Customer UPI", "Amount", "Status", "Submitted At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.ID,
			row.ClientName,
			row.LootTitle,
			row.CustomerName,
			row.CustomerMobile,
			row.CustomerUPI,
			row.Amount.StringFixed(2),
			row.Status,
			row.CreatedAt.Format(time.RFC3339),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ClientCustomerSummary aggregates completed customers per client.
type ClientCustomerSummary struct {
	ID             uint            `json:"id"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	Mobile         string          `json:"mobile"`
	TotalLoots     int64           `json:"total_loots"`
	TotalCustomers int64           `json:"total_customers"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// ClientsCustomersSummary returns per-client completed-customer aggregates.
func (s *ReportService) ClientsCustomersSummary() ([]ClientCustomerSummary, error) {
	var rows []ClientCustomerSummary
	err := s.db.Model(&models.User{}).
		Select(`users.id, users.username, users.email, users.mobile,
			COUNT(DISTINCT CASE WHEN client_customers.status = 'completed' THEN client_customers.loot_id END) AS total_loots,
			COUNT(CASE WHEN client_customers.status = 'completed' THEN client_customers.id END) AS total_customers,
			COALESCE(SUM(CASE WHEN client_customers.status = 'completed' THEN client_customers.amount ELSE 0 END), 0) AS total_amount`).
		Joins("LEFT JOIN client_customers ON client_customers.client_id = users.id").
		Where("users.role = ? AND users.deleted_at IS NULL", models.RoleClient).
		Group("users.id, users.username, users.email, users.mobile").
		Order("total_customers DESC, total_amount DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AnalyticsOverview is the admin dashboard headline numbers.
type AnalyticsOverview struct {
	TotalClients       int64           `json:"total_clients"`
	TotalLoots         int64           `json:"total_loots"`
	TotalInvestments   int64           `json:"total_investments"`
	CompletedReferrals int64           `json:"completed_referrals"`
	TotalEarned        decimal.Decimal `json:"total_earned"`
	PendingWithdrawals int64           `json:"pending_withdrawals"`
}

func (s *ReportService) overview() (*AnalyticsOverview, error) {
	var o AnalyticsOverview

	if err := s.db.Model(&models.User{}).
		Where("role = ? AND deleted_at IS NULL", models.RoleClient).
		Count(&o.TotalClients).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Loot{}).Count(&o.TotalLoots).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Investment{}).Count(&o.TotalInvestments).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Referral{}).
		Where("status = ?", models.ReferralCompleted).
		Count(&o.CompletedReferrals).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Withdrawal{}).
		Where("status = ?", models.WithdrawalPending).
		Count(&o.PendingWithdrawals).Error; err != nil {
		return nil, err
	}

	row := s.db.Model(&models.ClientBalance{}).Select("COALESCE(SUM(total_earned), 0)").Row()
	if err := row.Scan(&o.TotalEarned); err != nil {
		o.TotalEarned = decimal.Zero
	}

	return &o, nil
}

// Analytics bundles the overview with recent activity for the dashboard.
type Analytics struct {
	Overview          AnalyticsOverview `json:"overview"`
	RecentInvestments []InvestmentRow   `json:"recent_investments"`
	RecentReferrals   []ReferralRow     `json:"recent_referrals"`
}

// InvestmentRow is an investment joined with display names.
type InvestmentRow struct {
	models.Investment
	Username  string `json:"username"`
	LootTitle string `json:"loot_title"`
}

// ReferralRow is a referral joined with display names.
type ReferralRow struct {
	models.Referral
	Username  string `json:"username"`
	LootTitle string `json:"loot_title"`
}

// Analytics returns the dashboard payload.
func (s *ReportService) Analytics() (*Analytics, error) {
	overview, err := s.overview()
	if err != nil {
		return nil, err
	}

	var investments []InvestmentRow
	if err := s.db.Model(&models.Investment{}).
		Select("investments.*, users.username, loots.title AS loot_title").
		Joins("JOIN users ON users.id = investments.user_id").
		Joins("JOIN loots ON loots.id = investments.loot_id").
		Order("investments.created_at DESC").
		Limit(10).
		Scan(&investments).Error; err != nil {
		return nil, err
	}

	var referrals []ReferralRow
	if err := s.db.Model(&models.Referral{}).
		Select("referrals.*, users.username, loots.title AS loot_title").
		Joins("JOIN investments ON investments.id = referrals.investment_id").
		Joins("JOIN users ON users.id = investments.user_id").
		Joins("JOIN loots ON loots.id = investments.loot_id").
		Where("referrals.status = ?", models.ReferralCompleted).
		Order("referrals.created_at DESC").
		Limit(10).
		Scan(&referrals).Error; err != nil {
		return nil, err
	}

	return &Analytics{
		Overview:          *overview,
		RecentInvestments: investments,
		RecentReferrals:   referrals,
	}, nil
}

// SnapshotPlatformStats upserts the platform_stats row for the given day.
func (s *ReportService) SnapshotPlatformStats(date time.Time) (*models.PlatformStats, error) {
	overview, err := s.overview()
	if err != nil {
		return nil, err
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var stats models.PlatformStats
	result := s.db.Where("date = ?", day).First(&stats)

	if result.Error == gorm.ErrRecordNotFound {
		stats = models.PlatformStats{
			Date:               day,
			TotalClients:       overview.TotalClients,
			TotalLoots:         overview.TotalLoots,
			TotalInvestments:   overview.TotalInvestments,
			CompletedReferrals: overview.CompletedReferrals,
			TotalEarned:        overview.TotalEarned,
			PendingWithdrawals: overview.PendingWithdrawals,
		}
		if err := s.db.Create(&stats).Error; err != nil {
			return nil, err
		}
		log.Printf("Platform stats snapshot created for %s", day.Format("2006-01-02"))
		return &stats, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	if err := s.db.Model(&stats).Updates(map[string]interface{}{
		"total_clients":       overview.TotalClients,
		"total_loots":         overview.TotalLoots,
		"total_investments":   overview.TotalInvestments,
		"completed_referrals": overview.CompletedReferrals,
		"total_earned":        overview.TotalEarned,
		"pending_withdrawals": overview.PendingWithdrawals,
	}).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
