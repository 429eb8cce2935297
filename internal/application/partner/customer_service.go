package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/estimate"
	"github.com/pressureflow/backend/internal/domain/partner"
	"github.com/pressureflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// maxCustomerEstimates caps the estimates embedded in a customer lookup
const maxCustomerEstimates = 100

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	estimateRepo estimate.EstimateRepository
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, estimateRepo estimate.EstimateRepository, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		estimateRepo: estimateRepo,
		logger:       logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(req.Name, partner.SiteDetails{
		Address:          req.Address,
		Phone:            req.Phone,
		Email:            req.Email,
		ParkingSituation: partner.ParkingSituation(req.ParkingSituation),
		WaterTapLocation: req.WaterTapLocation,
		WaterPressureLPM: req.WaterPressureLPM,
		Notes:            req.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetByID returns the customer with their estimates
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerDetailResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	estimates, err := s.estimateRepo.FindAll(ctx, estimate.Filter{
		Filter: shared.Filter{
			Page:     1,
			PageSize: maxCustomerEstimates,
			OrderBy:  "created_at",
			OrderDir: "desc",
		},
		CustomerID: &id,
	})
	if err != nil {
		return nil, err
	}

	return &CustomerDetailResponse{
		CustomerResponse: ToCustomerResponse(customer),
		Estimates:        toCustomerEstimates(estimates),
	}, nil
}

// List returns customers ordered by name. Search matches name, address and
// phone number.
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   filter.Search,
	}

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerResponses(customers), total, nil
}

// Update applies a partial update
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := customer.Name
	details := customer.Details()
	if req.Name != nil {
		name = *req.Name
	}
	if req.Address != nil {
		details.Address = *req.Address
	}
	if req.Phone != nil {
		details.Phone = *req.Phone
	}
	if req.Email != nil {
		details.Email = *req.Email
	}
	if req.ParkingSituation != nil {
		details.ParkingSituation = partner.ParkingSituation(*req.ParkingSituation)
	}
	if req.WaterTapLocation != nil {
		details.WaterTapLocation = *req.WaterTapLocation
	}
	if req.WaterPressureLPM != nil {
		details.WaterPressureLPM = *req.WaterPressureLPM
	}
	if req.Notes != nil {
		details.Notes = *req.Notes
	}

	if err := customer.Update(name, details); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Delete removes a customer that no estimate refers to
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.customerRepo.FindByID(ctx, id); err != nil {
		return err
	}

	exists, err := s.estimateRepo.ExistsByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.CodeInvalidState, "Customer has estimates and cannot be deleted")
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Customer deleted", zap.String("customer_id", id.String()))
	return nil
}

// Count returns the total number of customers
func (s *CustomerService) Count(ctx context.Context) (int64, error) {
	return s.customerRepo.Count(ctx, shared.Filter{})
}
