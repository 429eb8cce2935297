package estimate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/pressureflow/backend/internal/application/inventory"
	"github.com/pressureflow/backend/internal/domain/catalog"
	"github.com/pressureflow/backend/internal/domain/estimate"
	"github.com/pressureflow/backend/internal/domain/partner"
	"github.com/pressureflow/backend/internal/domain/settings"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/pressureflow/backend/internal/infrastructure/printing"
	"github.com/pressureflow/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Completer runs the completion of a job together with its stock deduction
type Completer interface {
	Complete(ctx context.Context, estimateID uuid.UUID) (*appinventory.CompletionResult, error)
}

// DocumentRenderer turns a snapshot into a PDF
type DocumentRenderer interface {
	Render(ctx context.Context, snap printing.Snapshot) (*printing.RenderResult, error)
}

// SettingsProvider returns the current company settings
type SettingsProvider interface {
	Current(ctx context.Context) (settings.Settings, error)
}

// PhotoStorage stores project photos in object storage
type PhotoStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
}

// Config holds the estimate service tunables
type Config struct {
	// DefaultBTWPercentage is used when a create request has no btw_percentage
	DefaultBTWPercentage decimal.Decimal
	// CompletionRetries is how often a completion that hit a concurrency
	// conflict is run again before the conflict is returned
	CompletionRetries int
	// PhotoURLExpiry is the lifetime of presigned photo download URLs
	PhotoURLExpiry time.Duration
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() Config {
	return Config{
		DefaultBTWPercentage: estimate.DefaultBTWPercentage,
		CompletionRetries:    1,
		PhotoURLExpiry:       15 * time.Minute,
	}
}

// Repositories groups the repositories the estimate service reads and writes
type Repositories struct {
	Estimates   estimate.EstimateRepository
	Photos      estimate.PhotoRepository
	Customers   partner.CustomerRepository
	Services    catalog.ServiceRepository
	UpsellItems catalog.UpsellItemRepository
}

// EstimateService handles estimate-related business operations
type EstimateService struct {
	repos           Repositories
	completer       Completer
	renderer        DocumentRenderer
	settings        SettingsProvider
	storage         PhotoStorage
	config          Config
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewEstimateService creates a new EstimateService
func NewEstimateService(
	repos Repositories,
	completer Completer,
	renderer DocumentRenderer,
	settingsProvider SettingsProvider,
	storage PhotoStorage,
	config Config,
	logger *zap.Logger,
) *EstimateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.PhotoURLExpiry <= 0 {
		config.PhotoURLExpiry = DefaultConfig().PhotoURLExpiry
	}
	if config.CompletionRetries < 0 {
		config.CompletionRetries = 0
	}
	return &EstimateService{
		repos:     repos,
		completer: completer,
		renderer:  renderer,
		settings:  settingsProvider,
		storage:   storage,
		config:    config,
		logger:    logger,
	}
}

// SetBusinessMetrics sets the business metrics instance
func (s *EstimateService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create prices the request and stores a new estimate
func (s *EstimateService) Create(ctx context.Context, userID uuid.UUID, req CreateEstimateRequest) (*EstimateResponse, error) {
	if _, err := s.repos.Customers.FindByID(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	lines, err := s.lineDrafts(ctx, req.Lines)
	if err != nil {
		return nil, err
	}
	upsells, err := s.upsellDrafts(ctx, req.Upsells)
	if err != nil {
		return nil, err
	}

	pct := req.BTWPercentage
	if pct == nil {
		def := s.config.DefaultBTWPercentage
		pct = &def
	}

	est, err := estimate.NewEstimate(req.CustomerID, userID, estimate.Status(req.Status), pct, req.Notes, lines, upsells)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Estimates.Save(ctx, est); err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordEstimateCreated(ctx, est.Status.String())
	}
	s.logger.Info("Estimate created",
		zap.String("estimate_id", est.ID.String()),
		zap.String("total_incl_btw", est.TotalInclBTW.String()))

	resp := ToEstimateResponse(est)
	return &resp, nil
}

func (s *EstimateService) lineDrafts(ctx context.Context, reqs []LineRequest) ([]estimate.LineDraft, error) {
	drafts := make([]estimate.LineDraft, len(reqs))
	for i, r := range reqs {
		if r.SquareMeters == nil {
			return nil, shared.NewValidationError(fmt.Sprintf("line %d: square_meters is required", i+1))
		}
		level, err := estimate.ParsePollutionLevel(r.PollutionLevel)
		if err != nil {
			return nil, err
		}
		draft := estimate.LineDraft{
			ServiceID:      r.ServiceID,
			Description:    r.Description,
			SquareMeters:   *r.SquareMeters,
			Multiplier:     r.Multiplier,
			PollutionLevel: level,
		}
		switch {
		case r.UnitPrice != nil:
			draft.UnitPrice = *r.UnitPrice
		case r.ServiceID != nil:
			svc, err := s.repos.Services.FindByID(ctx, *r.ServiceID)
			if err != nil {
				return nil, err
			}
			draft.UnitPrice = svc.PricePerM2
		default:
			return nil, shared.NewValidationError("lines: unit_price is required without service_id")
		}
		drafts[i] = draft
	}
	return drafts, nil
}

func (s *EstimateService) upsellDrafts(ctx context.Context, reqs []UpsellRequest) ([]estimate.UpsellDraft, error) {
	drafts := make([]estimate.UpsellDraft, len(reqs))
	for i, r := range reqs {
		draft := estimate.UpsellDraft{UpsellItemID: r.UpsellItemID, Description: r.Description}
		switch {
		case r.Price != nil:
			draft.Price = *r.Price
		case r.UpsellItemID != nil:
			item, err := s.repos.UpsellItems.FindByID(ctx, *r.UpsellItemID)
			if err != nil {
				return nil, err
			}
			draft.Price = item.Price
		default:
			return nil, shared.NewValidationError("upsells: price is required without upsell_item_id")
		}
		drafts[i] = draft
	}
	return drafts, nil
}

// GetByID returns the estimate with its customer and photo metadata
func (s *EstimateService) GetByID(ctx context.Context, id uuid.UUID) (*EstimateDetailResponse, error) {
	est, err := s.repos.Estimates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	customer, err := s.findCustomer(ctx, est.CustomerID)
	if err != nil {
		return nil, err
	}
	photos, err := s.repos.Photos.FindByEstimate(ctx, id)
	if err != nil {
		return nil, err
	}

	return &EstimateDetailResponse{
		EstimateResponse: ToEstimateResponse(est),
		Customer:         ToCustomerSummary(customer),
		Photos:           ToPhotoResponses(photos),
	}, nil
}

// findCustomer returns nil without error when the customer no longer exists
func (s *EstimateService) findCustomer(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	customer, err := s.repos.Customers.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return customer, err
}

// List returns estimate headers, newest first, with the customer's name
func (s *EstimateService) List(ctx context.Context, filter EstimateListFilter) ([]EstimateListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	domainFilter := estimate.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
		},
		CustomerID: filter.CustomerID,
	}
	if filter.Status != "" {
		status, err := estimate.ParseStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		domainFilter.Status = &status
	}

	estimates, err := s.repos.Estimates.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(estimates))
	seen := make(map[uuid.UUID]bool)
	for _, e := range estimates {
		if !seen[e.CustomerID] {
			seen[e.CustomerID] = true
			ids = append(ids, e.CustomerID)
		}
	}
	customers := make(map[uuid.UUID]*partner.Customer, len(ids))
	if len(ids) > 0 {
		found, err := s.repos.Customers.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range found {
			customers[found[i].ID] = &found[i]
		}
	}

	responses := make([]EstimateListResponse, len(estimates))
	for i := range estimates {
		responses[i] = ToEstimateListResponse(&estimates[i], customers[estimates[i].CustomerID])
	}
	return responses, nil
}

// Update applies notes, a new tax rate and a forward status move. A move to
// voltooid is carried out by Complete after the other fields are saved.
func (s *EstimateService) Update(ctx context.Context, id uuid.UUID, req UpdateEstimateRequest) (*EstimateResponse, error) {
	est, err := s.repos.Estimates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var target estimate.Status
	if req.Status != nil {
		target, err = estimate.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
	}

	changed := false
	if req.BTWPercentage != nil && !req.BTWPercentage.Equal(est.BTWPercentage) {
		if err := est.ChangeTaxRate(*req.BTWPercentage); err != nil {
			return nil, err
		}
		changed = true
	}
	if req.Notes != nil && *req.Notes != est.Notes {
		est.UpdateNotes(*req.Notes)
		changed = true
	}
	// repeating the current status is accepted and changes nothing
	if target != "" && target != est.Status && target != estimate.StatusVoltooid {
		if err := est.AdvanceTo(target); err != nil {
			return nil, err
		}
		changed = true
	}

	if changed {
		if err := s.repos.Estimates.SaveWithLock(ctx, est); err != nil {
			return nil, err
		}
	}

	if target == estimate.StatusVoltooid {
		completion, err := s.Complete(ctx, id)
		if err != nil {
			return nil, err
		}
		return &completion.Estimate, nil
	}

	resp := ToEstimateResponse(est)
	return &resp, nil
}

// Sign stores the customer's signature and moves the estimate to akkoord
func (s *EstimateService) Sign(ctx context.Context, id uuid.UUID, req SignRequest) (*EstimateResponse, error) {
	est, err := s.repos.Estimates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := est.Sign(req.Signature); err != nil {
		return nil, err
	}
	if err := s.repos.Estimates.SaveWithLock(ctx, est); err != nil {
		return nil, err
	}

	s.logger.Info("Estimate signed", zap.String("estimate_id", id.String()))
	resp := ToEstimateResponse(est)
	return &resp, nil
}

// Complete marks the job voltooid and deducts the consumables. A completion
// that loses a concurrency race is retried as a whole.
func (s *EstimateService) Complete(ctx context.Context, id uuid.UUID) (_ *CompletionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "estimate", "complete", attribute.String("estimate.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	var result *appinventory.CompletionResult
	for attempt := 0; ; attempt++ {
		result, err = s.completer.Complete(ctx, id)
		if err == nil || !errors.Is(err, shared.ErrConcurrencyConflict) || attempt >= s.config.CompletionRetries {
			break
		}
		s.logger.Warn("Completion hit a concurrency conflict, retrying",
			zap.String("estimate_id", id.String()),
			zap.Int("attempt", attempt+1))
	}
	if err != nil {
		return nil, err
	}

	resp := &CompletionResponse{
		Estimate:         ToEstimateResponse(result.Estimate),
		AlreadyCompleted: result.AlreadyCompleted,
		Deductions:       make([]DeductionResponse, len(result.Deductions)),
	}
	for i, d := range result.Deductions {
		resp.Deductions[i] = DeductionResponse{
			InventoryID:   d.InventoryID,
			ItemName:      d.ItemName,
			Requested:     d.Requested,
			Applied:       d.Applied,
			QuantityAfter: d.QuantityAfter,
			Clamped:       d.Clamped(),
		}
	}
	return resp, nil
}

// RenderDocument renders the quote or invoice PDF for an estimate
func (s *EstimateService) RenderDocument(ctx context.Context, id uuid.UUID) (_ *printing.RenderResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "estimate", "render", attribute.String("estimate.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	est, err := s.repos.Estimates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	customer, err := s.findCustomer(ctx, est.CustomerID)
	if err != nil {
		return nil, err
	}
	current, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.renderer.Render(ctx, printing.Snapshot{Estimate: est, Customer: customer, Settings: current})
	if err != nil {
		return nil, err
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordDocumentRendered(ctx, string(result.Variant), time.Since(start))
	}
	return result, nil
}

// UploadPhoto decodes a picture, stores it and records its metadata
func (s *EstimateService) UploadPhoto(ctx context.Context, estimateID uuid.UUID, req UploadPhotoRequest) (*PhotoResponse, error) {
	est, err := s.repos.Estimates.FindByID(ctx, estimateID)
	if err != nil {
		return nil, err
	}

	img, err := printing.DecodeImage(req.PhotoData)
	if err != nil {
		return nil, shared.NewDomainErrorWithCause(shared.CodeValidation, "photo_data is not a PNG or JPEG image", err)
	}

	customerID := req.CustomerID
	if customerID == nil {
		customerID = &est.CustomerID
	}
	photo, err := estimate.NewPhoto(est.ID, customerID, estimate.PhotoType(req.PhotoType),
		img.ContentType(), img.Extension(), int64(len(img.Data)), req.Caption)
	if err != nil {
		return nil, err
	}

	if err := s.storage.Upload(ctx, photo.StorageKey, img.Data, photo.ContentType); err != nil {
		return nil, err
	}
	if err := s.repos.Photos.Save(ctx, photo); err != nil {
		if delErr := s.storage.DeleteObject(ctx, photo.StorageKey); delErr != nil {
			s.logger.Warn("Failed to remove orphaned photo object",
				zap.String("key", photo.StorageKey), zap.Error(delErr))
		}
		return nil, err
	}

	resp := ToPhotoResponse(photo)
	return &resp, nil
}

// GetPhoto returns photo metadata with a presigned download URL
func (s *EstimateService) GetPhoto(ctx context.Context, id uuid.UUID) (*PhotoResponse, error) {
	photo, err := s.repos.Photos.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	url, expires, err := s.storage.GenerateDownloadURL(ctx, photo.StorageKey, s.config.PhotoURLExpiry)
	if err != nil {
		return nil, err
	}

	resp := ToPhotoResponse(photo)
	resp.URL = url
	resp.URLExpires = &expires
	return &resp, nil
}

// DeletePhoto removes the metadata and then the stored object. A failed
// object delete is only logged; the metadata is already gone.
func (s *EstimateService) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	photo, err := s.repos.Photos.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.Photos.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.storage.DeleteObject(ctx, photo.StorageKey); err != nil {
		s.logger.Warn("Failed to delete photo object",
			zap.String("photo_id", id.String()),
			zap.String("key", photo.StorageKey),
			zap.Error(err))
	}
	return nil
}
