package restaurant

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dmitrymomot/restokit/core/gateway"
	"github.com/dmitrymomot/restokit/core/logger"
	"github.com/dmitrymomot/restokit/core/sanitizer"
	"github.com/dmitrymomot/restokit/core/validator"
)

// Limits applied to caller-supplied page sizes.
const (
	DefaultPerPage   = 10
	MaxPerPage       = 100
	MaxSearchLimit   = 100
	MaxQuickLimit    = 50
	MaxSimilarLimit  = 20
	MinQuickQueryLen = 2

	DefaultQuickLimit   = 10
	DefaultSimilarLimit = 5
)

// DefaultBasePath is the collection path of the restaurant resource.
const DefaultBasePath = "/restaurants"

// Gateway is the subset of *gateway.Gateway the Service depends on.
type Gateway interface {
	Get(ctx context.Context, path string, query gateway.Query) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	Put(ctx context.Context, path string, body any) (json.RawMessage, error)
	Patch(ctx context.Context, path string, body any) (json.RawMessage, error)
	Delete(ctx context.Context, path string) (json.RawMessage, error)
	Invalidate(pattern string) int
}

// Service performs restaurant CRUD and search through a Gateway.
// It never handles credentials; authentication is the Gateway's concern.
type Service struct {
	gw       Gateway
	log      *slog.Logger
	basePath string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Nil is ignored.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithBasePath overrides the collection path.
func WithBasePath(path string) Option {
	return func(s *Service) {
		path = "/" + strings.Trim(strings.TrimSpace(path), "/")
		if path != "/" {
			s.basePath = path
		}
	}
}

// NewService creates a Service on top of gw.
func NewService(gw Gateway, opts ...Option) *Service {
	s := &Service{
		gw:       gw,
		log:      logger.Nop(),
		basePath: DefaultBasePath,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("restaurant"))
	return s
}

// List fetches one page of restaurants. page below 1 is treated as 1 and
// perPage is clamped to (0, MaxPerPage].
func (s *Service) List(ctx context.Context, page, perPage int) (*Page, error) {
	page = max(page, 1)
	perPage = clamp(perPage, DefaultPerPage, MaxPerPage)

	raw, err := s.gw.Get(ctx, s.basePath, gateway.Query{
		"page":         page,
		"itemsPerPage": perPage,
	})
	if err != nil {
		return nil, failure(err, msgListFailed)
	}
	p, err := NormalizeList(raw, perPage)
	if err != nil {
		return nil, failure(err, msgListFailed)
	}
	if p.Pagination != nil && p.Pagination.CurrentPage == 0 {
		p.Pagination.CurrentPage = page
	}
	return p, nil
}

// Get fetches a single restaurant.
func (s *Service) Get(ctx context.Context, id ID) (*Restaurant, error) {
	path, err := s.itemPath(id)
	if err != nil {
		return nil, err
	}
	raw, err := s.gw.Get(ctx, path, nil)
	if err != nil {
		return nil, failure(err, msgGetFailed)
	}
	return decodeRestaurant(raw, msgGetFailed)
}

// Create adds a restaurant. Name and address are required; the request is
// not sent when they are missing.
func (s *Service) Create(ctx context.Context, in Input) (*Restaurant, error) {
	if err := prepareInput(&in); err != nil {
		return nil, err
	}
	raw, err := s.gw.Post(ctx, s.basePath, in)
	if err != nil {
		return nil, failure(err, msgCreateFailed)
	}
	s.log.DebugContext(ctx, "restaurant created", logger.Action("create"))
	return decodeRestaurant(raw, msgCreateFailed)
}

// Update replaces a restaurant with PUT. Validation matches Create.
func (s *Service) Update(ctx context.Context, id ID, in Input) (*Restaurant, error) {
	path, err := s.itemPath(id)
	if err != nil {
		return nil, err
	}
	if err := prepareInput(&in); err != nil {
		return nil, err
	}
	raw, err := s.gw.Put(ctx, path, in)
	if err != nil {
		return nil, failure(err, msgUpdateFailed)
	}
	return decodeRestaurant(raw, msgUpdateFailed)
}

// Patch sends only the fields set in ch, trimmed.
func (s *Service) Patch(ctx context.Context, id ID, ch Changes) (*Restaurant, error) {
	path, err := s.itemPath(id)
	if err != nil {
		return nil, err
	}
	if err := sanitizer.SanitizeStruct(&ch); err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(&ch); err != nil {
		return nil, validationError(err.Error(), err)
	}
	raw, err := s.gw.Patch(ctx, path, ch)
	if err != nil {
		return nil, failure(err, msgPatchFailed)
	}
	return decodeRestaurant(raw, msgPatchFailed)
}

// Delete removes a restaurant.
func (s *Service) Delete(ctx context.Context, id ID) error {
	path, err := s.itemPath(id)
	if err != nil {
		return err
	}
	if _, err := s.gw.Delete(ctx, path); err != nil {
		return failure(err, msgDeleteFailed)
	}
	s.log.DebugContext(ctx, "restaurant deleted", logger.Action("delete"), slog.String("id", id.String()))
	return nil
}

// Search runs an advanced search. Empty filters are not sent.
func (s *Service) Search(ctx context.Context, p SearchParams) (*Page, error) {
	q := gateway.Query{
		"search":          strings.TrimSpace(p.Search),
		"name":            strings.TrimSpace(p.Name),
		"address":         strings.TrimSpace(p.Address),
		"phone":           strings.TrimSpace(p.Phone),
		"created_from":    p.CreatedFrom,
		"created_to":      p.CreatedTo,
		"updated_from":    p.UpdatedFrom,
		"updated_to":      p.UpdatedTo,
		"order_by":        p.OrderBy,
		"order_direction": p.OrderDirection,
	}
	if p.Page > 0 {
		q["page"] = p.Page
	}
	limit := 0
	if p.Limit > 0 {
		limit = min(p.Limit, MaxSearchLimit)
		q["limit"] = limit
	}

	raw, err := s.gw.Get(ctx, s.basePath+"/search", q)
	if err != nil {
		return nil, failure(err, msgSearchFailed)
	}
	page, err := NormalizeList(raw, limit)
	if err != nil {
		return nil, failure(err, msgSearchFailed)
	}
	return page, nil
}

// QuickSearch is a prefix search for interactive lookups. Queries shorter
// than MinQuickQueryLen characters after trimming return an empty page
// without contacting the backend.
func (s *Service) QuickSearch(ctx context.Context, query string, limit int) (*Page, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQuickQueryLen {
		return &Page{Items: []Restaurant{}, Envelope: EnvelopeResults}, nil
	}
	limit = clamp(limit, DefaultQuickLimit, MaxQuickLimit)

	raw, err := s.gw.Get(ctx, s.basePath+"/quick-search", gateway.Query{
		"q":     query,
		"limit": limit,
	})
	if err != nil {
		return nil, failure(err, msgQuickSearchFailed)
	}
	page, err := NormalizeList(raw, limit)
	if err != nil {
		return nil, failure(err, msgQuickSearchFailed)
	}
	return page, nil
}

// Similar lists restaurants similar to id.
func (s *Service) Similar(ctx context.Context, id ID, limit int) (*Page, error) {
	path, err := s.itemPath(id)
	if err != nil {
		return nil, err
	}
	limit = clamp(limit, DefaultSimilarLimit, MaxSimilarLimit)

	raw, err := s.gw.Get(ctx, path+"/similar", gateway.Query{"limit": limit})
	if err != nil {
		return nil, failure(err, msgSimilarFailed)
	}
	page, err := NormalizeList(raw, limit)
	if err != nil {
		return nil, failure(err, msgSimilarFailed)
	}
	return page, nil
}

// ClearCache drops every cached response under the collection path and
// returns how many entries were removed.
func (s *Service) ClearCache() int {
	n := s.gw.Invalidate(s.basePath)
	s.log.Debug("restaurant cache cleared", logger.Count("entries", n))
	return n
}

func (s *Service) itemPath(id ID) (string, error) {
	v := strings.TrimSpace(id.String())
	if v == "" {
		return "", missingID()
	}
	return s.basePath + "/" + url.PathEscape(v), nil
}

func prepareInput(in *Input) error {
	if err := sanitizer.SanitizeStruct(in); err != nil {
		return err
	}
	if err := validator.ValidateStruct(in); err != nil {
		if in.Name == "" || in.Address == "" {
			return validationError(msgRequiredFields, err)
		}
		return validationError(err.Error(), err)
	}
	return nil
}

func validationError(msg string, err error) error {
	errs := validator.ExtractValidationErrors(err)
	return gateway.NewValidationError(msg, errs.Messages()...)
}

func decodeRestaurant(raw json.RawMessage, fallback string) (*Restaurant, error) {
	r, err := gateway.Decode[Restaurant](raw)
	if err != nil {
		return nil, failure(err, fallback)
	}
	return &r, nil
}

func clamp(n, def, limit int) int {
	if n <= 0 {
		return def
	}
	return min(n, limit)
}

// ParseID converts command-line or form input to an ID.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", missingID()
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n <= 0 {
		return "", gateway.NewValidationError("restaurant id must be positive", "id: must be positive")
	}
	return ID(s), nil
}
