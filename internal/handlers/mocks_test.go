package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cravencooling/fsm/internal/middleware"
	"github.com/cravencooling/fsm/internal/models"
)

// withUser injects an authenticated staff user into the request context,
// standing in for the auth middleware.
func withUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, user)
	return r.WithContext(ctx)
}

// withPortal injects portal claims into the request context, standing in
// for the portal middleware.
func withPortal(r *http.Request, claims *models.PortalClaims) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.PortalContextKey, claims)
	return r.WithContext(ctx)
}

// MockUserCollection is a mock implementation of db.UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUsers(ctx context.Context, filter bson.M) ([]models.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

// MockJobCollection is a mock implementation of db.JobCollection
type MockJobCollection struct {
	mock.Mock
}

func (m *MockJobCollection) InsertJob(ctx context.Context, job models.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobCollection) FindJobs(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Job, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *MockJobCollection) FindJobByID(ctx context.Context, id string) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockJobCollection) UpdateJob(ctx context.Context, id string, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *MockJobCollection) DeleteJob(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockJobCollection) CountJobs(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobCollection) HasOpenPMJobForAsset(ctx context.Context, assetID string) (bool, error) {
	args := m.Called(ctx, assetID)
	return args.Bool(0), args.Error(1)
}

// MockJobEventCollection is a mock implementation of db.JobEventCollection
type MockJobEventCollection struct {
	mock.Mock
}

func (m *MockJobEventCollection) InsertEvent(ctx context.Context, event models.JobEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockJobEventCollection) FindEvents(ctx context.Context, jobID string, limit int64) ([]models.JobEvent, error) {
	args := m.Called(ctx, jobID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.JobEvent), args.Error(1)
}

// MockJobCompletionCollection is a mock implementation of db.JobCompletionCollection
type MockJobCompletionCollection struct {
	mock.Mock
}

func (m *MockJobCompletionCollection) InsertCompletion(ctx context.Context, completion models.JobCompletion) error {
	args := m.Called(ctx, completion)
	return args.Error(0)
}

func (m *MockJobCompletionCollection) FindCompletionByJobID(ctx context.Context, jobID string) (*models.JobCompletion, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobCompletion), args.Error(1)
}

// MockAssetCollection is a mock implementation of db.AssetCollection
type MockAssetCollection struct {
	mock.Mock
}

func (m *MockAssetCollection) InsertAsset(ctx context.Context, asset models.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetCollection) FindAssets(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Asset, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Asset), args.Error(1)
}

func (m *MockAssetCollection) FindAssetByID(ctx context.Context, id string) (*models.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Asset), args.Error(1)
}

func (m *MockAssetCollection) UpdateAsset(ctx context.Context, id string, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *MockAssetCollection) DeleteAsset(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAssetCollection) CountAssets(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssetCollection) FindPMDue(ctx context.Context, before time.Time, limit int64) ([]models.Asset, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Asset), args.Error(1)
}

func (m *MockAssetCollection) FindLeakCheckDue(ctx context.Context, before time.Time) ([]models.Asset, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Asset), args.Error(1)
}

// MockSiteCollection is a mock implementation of db.SiteCollection
type MockSiteCollection struct {
	mock.Mock
}

func (m *MockSiteCollection) InsertSite(ctx context.Context, site models.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func (m *MockSiteCollection) FindSites(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Site, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Site), args.Error(1)
}

func (m *MockSiteCollection) FindSiteByID(ctx context.Context, id string) (*models.Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Site), args.Error(1)
}

func (m *MockSiteCollection) UpdateSite(ctx context.Context, id string, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *MockSiteCollection) DeleteSite(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFGasLogCollection is a mock implementation of db.FGasLogCollection
type MockFGasLogCollection struct {
	mock.Mock
}

func (m *MockFGasLogCollection) InsertLog(ctx context.Context, entry models.FGasLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockFGasLogCollection) FindLogs(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.FGasLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FGasLog), args.Error(1)
}

func (m *MockFGasLogCollection) FindLogByID(ctx context.Context, id string) (*models.FGasLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FGasLog), args.Error(1)
}

func (m *MockFGasLogCollection) DeleteLog(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockQuoteCollection is a mock implementation of db.QuoteCollection
type MockQuoteCollection struct {
	mock.Mock
}

func (m *MockQuoteCollection) InsertQuote(ctx context.Context, quote models.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteCollection) FindQuotes(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Quote, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Quote), args.Error(1)
}

func (m *MockQuoteCollection) FindQuoteByID(ctx context.Context, id string) (*models.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quote), args.Error(1)
}

func (m *MockQuoteCollection) UpdateQuote(ctx context.Context, id string, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *MockQuoteCollection) DeleteQuote(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuoteCollection) CountQuotes(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockCustomerCollection is a mock implementation of db.CustomerCollection
type MockCustomerCollection struct {
	mock.Mock
}

func (m *MockCustomerCollection) InsertCustomer(ctx context.Context, customer models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerCollection) FindCustomers(ctx context.Context, filter bson.M) ([]models.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockCustomerCollection) FindCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerCollection) UpdateCustomer(ctx context.Context, id string, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *MockCustomerCollection) DeleteCustomer(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerCollection) CountCustomers(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockInvoiceCollection is a mock implementation of db.InvoiceCollection
type MockInvoiceCollection struct {
	mock.Mock
}

func (m *MockInvoiceCollection) InsertInvoice(ctx context.Context, invoice models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceCollection) FindInvoices(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *MockInvoiceCollection) FindInvoiceByID(ctx context.Context, id string) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceCollection) UpdateInvoice(ctx context.Context, id string, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *MockInvoiceCollection) DeleteInvoice(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceCollection) CountInvoices(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockPortalCollection is a mock implementation of db.PortalCollection
type MockPortalCollection struct {
	mock.Mock
}

func (m *MockPortalCollection) InsertAccess(ctx context.Context, access models.PortalAccess) error {
	args := m.Called(ctx, access)
	return args.Error(0)
}

func (m *MockPortalCollection) FindActiveByEmail(ctx context.Context, email string) (*models.PortalAccess, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PortalAccess), args.Error(1)
}

func (m *MockPortalCollection) FindAccessList(ctx context.Context, limit int64) ([]models.PortalAccess, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PortalAccess), args.Error(1)
}

func (m *MockPortalCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPortalCollection) DeleteAccess(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLocationCollection is a mock implementation of db.LocationCollection
type MockLocationCollection struct {
	mock.Mock
}

func (m *MockLocationCollection) InsertLocations(ctx context.Context, locations []models.EngineerLocation) error {
	args := m.Called(ctx, locations)
	return args.Error(0)
}

func (m *MockLocationCollection) FindRecent(ctx context.Context, since time.Time, limit int64) ([]models.EngineerLocation, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EngineerLocation), args.Error(1)
}

func (m *MockLocationCollection) FindByEngineer(ctx context.Context, engineerID string, since time.Time, limit int64) ([]models.EngineerLocation, error) {
	args := m.Called(ctx, engineerID, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EngineerLocation), args.Error(1)
}

func (m *MockLocationCollection) FindLatestByEngineer(ctx context.Context, engineerID string) (*models.EngineerLocation, error) {
	args := m.Called(ctx, engineerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EngineerLocation), args.Error(1)
}
