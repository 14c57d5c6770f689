package links

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/affilink/internal/common"
	"github.com/ternarybob/affilink/internal/interfaces"
	"github.com/ternarybob/affilink/internal/models"
	"github.com/ternarybob/affilink/internal/services/scraper"
)

// CreateRequest is a single link creation request. A missing or unparseable
// URL is the only fatal create error; everything downstream degrades.
type CreateRequest struct {
	URL         string `json:"url" validate:"required,url"`
	Title       string `json:"title,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	Note        string `json:"note,omitempty"`
	AutoTitle   bool   `json:"auto_title,omitempty"`
}

// BulkCreateRequest creates many links in one call, bounded by the configured
// batch size.
type BulkCreateRequest struct {
	URLs        []string `json:"urls" validate:"required,min=1,dive,required,url"`
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Note        string   `json:"note,omitempty"`
	AutoTitle   bool     `json:"auto_title,omitempty"`
}

// UpdateRequest carries the mutable fields of an existing link
type UpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Category    *string `json:"category,omitempty"`
	Subcategory *string `json:"subcategory,omitempty"`
	Note        *string `json:"note,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// Service orchestrates link creation, redirects and updates over the scraping
// pipeline and the link store.
type Service struct {
	storage  interfaces.LinkStorage
	scraper  *scraper.Service
	rewriter interfaces.RewriteService // nil when the collaborator is absent
	config   common.LinksConfig
	minDesc  int
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewService creates the link lifecycle service. Passing a nil rewriter
// disables the text-rewrite collaborator for the life of the service.
func NewService(
	storage interfaces.LinkStorage,
	scraperService *scraper.Service,
	rewriter interfaces.RewriteService,
	config common.LinksConfig,
	rewriteConfig common.RewriteConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		storage:  storage,
		scraper:  scraperService,
		rewriter: rewriter,
		config:   config,
		minDesc:  rewriteConfig.MinDescription,
		validate: validator.New(),
		logger:   logger,
	}
}

// Create builds and persists a new link from a submitted product URL.
// Extraction failures are non-fatal: the link is still created with whatever
// fields were obtained and LastError recorded.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*models.Link, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid create request: %w", err)
	}

	resolved := s.scraper.Resolve(ctx, req.URL)

	now := time.Now()
	link := &models.Link{
		ID:           common.NewLinkID(),
		Source:       s.config.Source,
		RawURL:       req.URL,
		CanonicalURL: resolved.CanonicalURL,
		Title:        req.Title,
		Note:         req.Note,
		IsActive:     true,
		Clicks:       0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var meta *scraper.ProductMetadata
	if req.AutoTitle || req.Title == "" {
		scraped, err := s.scraper.ScrapeProduct(ctx, resolved.CanonicalURL)
		if err != nil {
			// Non-fatal: keep whatever we have and record the condition
			link.LastError = err.Error()
			s.logger.Warn().Err(err).Str("url", resolved.CanonicalURL).Msg("Extraction failed during create")
		}
		meta = scraped
	}

	s.applyMetadata(link, meta, req)
	s.classify(link, req.Category, req.Subcategory)
	s.maybeRewrite(ctx, link)

	link.ShortTitle = shortTitleFromTitle(link.Title, s.config.ShortTitleWords)
	link.AffiliateURL = BuildAffiliateURL(link.CanonicalURL, s.config.AffiliateTag)
	link.LastCheckedAt = &now

	if err := s.storage.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to persist link: %w", err)
	}

	s.logger.Info().
		Str("link_id", link.ID).
		Str("canonical_url", link.CanonicalURL).
		Str("category", link.Category).
		Msg("Link created")

	return link, nil
}

// BulkCreate applies Create to each URL independently. Per-URL failures are
// collected and never abort the batch; only an oversized batch is rejected
// before any work begins.
func (s *Service) BulkCreate(ctx context.Context, req *BulkCreateRequest) (*models.BulkCreateResult, error) {
	if len(req.URLs) == 0 {
		return nil, fmt.Errorf("no URLs provided")
	}
	if len(req.URLs) > s.config.MaxBatchSize {
		return nil, fmt.Errorf("batch size %d exceeds limit of %d", len(req.URLs), s.config.MaxBatchSize)
	}

	result := &models.BulkCreateResult{}
	for _, u := range req.URLs {
		link, err := s.Create(ctx, &CreateRequest{
			URL:         u,
			Category:    req.Category,
			Subcategory: req.Subcategory,
			Note:        req.Note,
			AutoTitle:   req.AutoTitle,
		})
		if err != nil {
			result.Errors = append(result.Errors, models.BulkCreateError{URL: u, Error: err.Error()})
			continue
		}
		result.Created = append(result.Created, link)
	}

	s.logger.Info().
		Int("created", len(result.Created)).
		Int("failed", len(result.Errors)).
		Msg("Bulk create completed")

	return result, nil
}

// Redirect atomically counts a click and returns the affiliate URL to send
// the visitor to.
func (s *Service) Redirect(ctx context.Context, id string) (string, error) {
	link, err := s.storage.IncrementClicks(ctx, id)
	if err != nil {
		return "", err
	}
	return link.AffiliateURL, nil
}

// Get returns a single link by ID
func (s *Service) Get(ctx context.Context, id string) (*models.Link, error) {
	return s.storage.Get(ctx, id)
}

// List returns all links, newest first
func (s *Service) List(ctx context.Context) ([]*models.Link, error) {
	return s.storage.List(ctx)
}

// Delete removes a link permanently
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("link_id", id).Msg("Link deleted")
	return nil
}

// Update applies caller-supplied changes. Manual categories must validate
// against the closed taxonomy. Reactivation clears the status reason.
func (s *Service) Update(ctx context.Context, id string, req *UpdateRequest) (*models.Link, error) {
	link, err := s.storage.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil && *req.Title != "" {
		link.Title = *req.Title
		link.ShortTitle = shortTitleFromTitle(link.Title, s.config.ShortTitleWords)
	}
	if req.Category != nil {
		sub := link.Subcategory
		if req.Subcategory != nil {
			sub = *req.Subcategory
		}
		if !scraper.ValidCategory(*req.Category, sub) {
			return nil, fmt.Errorf("invalid category %q/%q", *req.Category, sub)
		}
		link.Category = *req.Category
		if req.Subcategory != nil {
			link.Subcategory = *req.Subcategory
		}
	}
	if req.Note != nil {
		link.Note = *req.Note
	}
	if req.IsActive != nil {
		if *req.IsActive {
			link.Reactivate()
		} else {
			link.Deactivate("deactivated_manually")
		}
	}

	if err := s.storage.Update(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// applyMetadata copies extracted fields into the link. Manual title wins over
// the scraped one unless AutoTitle was requested.
func (s *Service) applyMetadata(link *models.Link, meta *scraper.ProductMetadata, req *CreateRequest) {
	if meta != nil {
		if link.Title == "" || req.AutoTitle {
			if meta.Title != "" {
				link.Title = meta.Title
			}
		}
		link.Brand = meta.Brand
		link.ImageURL = meta.ImageURL
		link.Images = meta.Images
		link.ShortDescription = meta.ShortDescription
		link.LongDescription = meta.LongDescription
		link.CategoryPath = meta.Breadcrumbs
		link.Rating = meta.Rating
		link.ReviewsCount = meta.ReviewsCount

		price := scraper.ParsePrice(meta.PriceRaw)
		link.Price = price.Amount
		link.PriceCurrency = price.Currency
		link.PriceRaw = price.Raw

		if meta.Unavailable {
			link.Deactivate(models.StatusReasonUnavailable)
		}
	}

	if link.Title == "" {
		link.Title = link.CanonicalURL
	}
}

// classify resolves the final category pair: a valid manual category always
// overrides the classifier.
func (s *Service) classify(link *models.Link, manualCategory, manualSubcategory string) {
	if manualCategory != "" && scraper.ValidCategory(manualCategory, manualSubcategory) {
		link.Category = manualCategory
		link.Subcategory = manualSubcategory
		if link.Subcategory == "" {
			link.Subcategory = scraper.CategoryOther
		}
		return
	}

	link.Category, link.Subcategory = scraper.Classify(link.CategoryPath, link.Title)
}

// maybeRewrite sends low-quality descriptions to the rewrite collaborator.
// Best effort: any failure keeps the scraped text.
func (s *Service) maybeRewrite(ctx context.Context, link *models.Link) {
	if s.rewriter == nil {
		return
	}
	if !isLowQualityDescription(link.ShortDescription, link.LongDescription, s.minDesc) {
		return
	}

	result, err := s.rewriter.Rewrite(ctx, &interfaces.RewriteInput{
		Title:            link.Title,
		ShortDescription: link.ShortDescription,
		LongDescription:  link.LongDescription,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("link_id", link.ID).Msg("Rewrite service unavailable, keeping scraped text")
		return
	}

	if strings.TrimSpace(result.Title) != "" {
		link.Title = result.Title
	}
	if strings.TrimSpace(result.ShortDescription) != "" {
		link.ShortDescription = result.ShortDescription
	}
	if strings.TrimSpace(result.LongDescription) != "" {
		link.LongDescription = result.LongDescription
	}
}
