package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/pressureflow/backend/internal/application/inventory"
	"github.com/pressureflow/backend/internal/domain/estimate"
	"github.com/pressureflow/backend/internal/domain/inventory"
	"github.com/pressureflow/backend/internal/domain/partner"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxTodayJobs caps the accepted estimates listed on the dashboard
const maxTodayJobs = 100

// Job is an accepted estimate waiting to be carried out
type Job struct {
	ID              uuid.UUID       `json:"id"`
	Number          string          `json:"short_id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerAddress string          `json:"customer_address"`
	TotalInclBTW    decimal.Decimal `json:"total_incl_btw"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Summary is the dashboard payload
type Summary struct {
	TodayJobs         []Job                       `json:"today_jobs"`
	OpenQuotesCount   int64                       `json:"open_quotes_count"`
	MonthRevenue      decimal.Decimal             `json:"month_revenue"`
	LastMonthRevenue  decimal.Decimal             `json:"last_month_revenue"`
	InventoryWarnings []appinventory.ItemResponse `json:"inventory_warnings"`
	CustomerCount     int64                       `json:"customer_count"`
	IsAdmin           bool                        `json:"is_admin"`
}

// DashboardService aggregates figures from several repositories
type DashboardService struct {
	estimateRepo estimate.EstimateRepository
	customerRepo partner.CustomerRepository
	itemRepo     inventory.ItemRepository
	location     *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

// NewDashboardService creates a new DashboardService. Month boundaries are
// computed in loc; nil means time.Local.
func NewDashboardService(
	estimateRepo estimate.EstimateRepository,
	customerRepo partner.CustomerRepository,
	itemRepo inventory.ItemRepository,
	loc *time.Location,
	logger *zap.Logger,
) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		estimateRepo: estimateRepo,
		customerRepo: customerRepo,
		itemRepo:     itemRepo,
		location:     loc,
		now:          time.Now,
		logger:       logger,
	}
}

// Summary collects the dashboard figures for the calling user
func (s *DashboardService) Summary(ctx context.Context, isAdmin bool) (*Summary, error) {
	jobs, err := s.todayJobs(ctx)
	if err != nil {
		return nil, err
	}

	openQuotes, err := s.estimateRepo.CountByStatus(ctx, estimate.StatusOfferte)
	if err != nil {
		return nil, err
	}

	monthStart, nextMonthStart, lastMonthStart := monthBounds(s.now().In(s.location))
	revenueStatuses := estimate.RevenueStatuses()

	monthRevenue, err := s.estimateRepo.SumTotalsByStatuses(ctx, revenueStatuses, monthStart, nextMonthStart)
	if err != nil {
		return nil, err
	}
	lastMonthRevenue, err := s.estimateRepo.SumTotalsByStatuses(ctx, revenueStatuses, lastMonthStart, monthStart)
	if err != nil {
		return nil, err
	}

	lowStock, err := s.itemRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}

	customers, err := s.customerRepo.Count(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}

	return &Summary{
		TodayJobs:         jobs,
		OpenQuotesCount:   openQuotes,
		MonthRevenue:      monthRevenue,
		LastMonthRevenue:  lastMonthRevenue,
		InventoryWarnings: appinventory.ToItemResponses(lowStock),
		CustomerCount:     customers,
		IsAdmin:           isAdmin,
	}, nil
}

func (s *DashboardService) todayJobs(ctx context.Context) ([]Job, error) {
	status := estimate.StatusAkkoord
	accepted, err := s.estimateRepo.FindAll(ctx, estimate.Filter{
		Filter: shared.Filter{
			Page:     1,
			PageSize: maxTodayJobs,
			OrderBy:  "created_at",
			OrderDir: "asc",
		},
		Status: &status,
	})
	if err != nil {
		return nil, err
	}
	if len(accepted) == 0 {
		return []Job{}, nil
	}

	ids := make([]uuid.UUID, 0, len(accepted))
	seen := make(map[uuid.UUID]struct{}, len(accepted))
	for i := range accepted {
		if _, ok := seen[accepted[i].CustomerID]; ok {
			continue
		}
		seen[accepted[i].CustomerID] = struct{}{}
		ids = append(ids, accepted[i].CustomerID)
	}
	customers, err := s.customerRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*partner.Customer, len(customers))
	for i := range customers {
		byID[customers[i].ID] = &customers[i]
	}

	jobs := make([]Job, len(accepted))
	for i := range accepted {
		e := &accepted[i]
		job := Job{
			ID:           e.ID,
			Number:       e.ShortID(),
			CustomerID:   e.CustomerID,
			TotalInclBTW: e.TotalInclBTW,
			Notes:        e.Notes,
			CreatedAt:    e.CreatedAt,
		}
		if c, ok := byID[e.CustomerID]; ok {
			job.CustomerName = c.Name
			job.CustomerAddress = c.Address
		} else {
			s.logger.Warn("Accepted estimate refers to a missing customer",
				zap.String("estimate_id", e.ID.String()),
				zap.String("customer_id", e.CustomerID.String()))
		}
		jobs[i] = job
	}
	return jobs, nil
}

// monthBounds returns the first instant of the current month, of the next
// month and of the previous month, in now's location
func monthBounds(now time.Time) (monthStart, nextMonthStart, lastMonthStart time.Time) {
	monthStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return monthStart, monthStart.AddDate(0, 1, 0), monthStart.AddDate(0, -1, 0)
}
