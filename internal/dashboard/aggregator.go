package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kenshin-works/checkup-portal/checkup-portal-backend/internal/alerts"
	"kenshin-works/checkup-portal/checkup-portal-backend/internal/companies"
	"kenshin-works/checkup-portal/checkup-portal-backend/pkg/workflows"
)

// StatusCount is the company count for one status code.
type StatusCount struct {
	Code  workflows.StatusCode `json:"code"`
	Name  string               `json:"name"`
	Phase workflows.Phase      `json:"phase"`
	Count int64                `json:"count"`
}

// Summary is the dashboard rollup.
type Summary struct {
	TotalCompanies int64                     `json:"total_companies"`
	OpenAlerts     int64                     `json:"open_alerts"`
	ByStatus       []StatusCount             `json:"by_status"`
	ByPhase        map[workflows.Phase]int64 `json:"by_phase"`
	ComputedAt     time.Time                 `json:"computed_at"`
}

// RecentTransition is one row of the recent-activity feed.
type RecentTransition struct {
	CompanyID    uuid.UUID             `json:"company_id"`
	CompanyName  string                `json:"company_name"`
	FromStatus   *workflows.StatusCode `json:"from_status"`
	ToStatus     workflows.StatusCode  `json:"to_status"`
	ChangeReason string                `json:"change_reason"`
	CreatedAt    time.Time             `json:"created_at"`
}

// Aggregator computes dashboard rollups straight from the workflow tables.
type Aggregator struct {
	db *gorm.DB
}

// NewAggregator creates a new dashboard aggregator
func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// Summary counts companies per status and rolls the counts up by phase.
// Statuses with no companies still appear with a zero count so the board
// renders every column.
func (a *Aggregator) Summary(ctx context.Context) (*Summary, error) {
	type row struct {
		CurrentStatus workflows.StatusCode
		Count         int64
	}
	var rows []row
	err := a.db.WithContext(ctx).Model(&companies.Company{}).
		Select("current_status, count(*) as count").
		Group("current_status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[workflows.StatusCode]int64, len(rows))
	for _, r := range rows {
		counts[r.CurrentStatus] = r.Count
	}

	summary := &Summary{
		ByPhase:    make(map[workflows.Phase]int64),
		ComputedAt: time.Now(),
	}
	for _, info := range workflows.AllStatuses() {
		count := counts[info.Code]
		summary.ByStatus = append(summary.ByStatus, StatusCount{
			Code:  info.Code,
			Name:  info.Name,
			Phase: info.Phase,
			Count: count,
		})
		summary.ByPhase[info.Phase] += count
		summary.TotalCompanies += count
	}

	err = a.db.WithContext(ctx).Model(&alerts.Alert{}).
		Where("is_resolved = false").
		Count(&summary.OpenAlerts).Error
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// RecentTransitions returns the latest status changes across all companies.
func (a *Aggregator) RecentTransitions(ctx context.Context, limit int) ([]RecentTransition, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var transitions []RecentTransition
	err := a.db.WithContext(ctx).
		Table("status_histories").
		Select("status_histories.company_id, companies.name as company_name, status_histories.from_status, status_histories.to_status, status_histories.change_reason, status_histories.created_at").
		Joins("JOIN companies ON companies.id = status_histories.company_id").
		Where("companies.deleted_at IS NULL").
		Order("status_histories.created_at DESC").
		Limit(limit).
		Find(&transitions).Error
	return transitions, err
}
