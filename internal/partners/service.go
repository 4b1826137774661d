// Package partners exposes typed services over the customer and
// supplier doctypes.
package partners

import (
	"context"

	"github.com/educore-erp/educore-erp/internal/erpnext"
)

// Doctypes managed by this package.
const (
	DoctypeCustomer = "Customer"
	DoctypeSupplier = "Supplier"
)

// DocClient is the slice of the ERPNext client the services need.
type DocClient interface {
	GetList(ctx context.Context, doctype string, params erpnext.ListParams) ([]map[string]any, error)
	GetDoc(ctx context.Context, doctype, name string, fields []string) (map[string]any, error)
	Create(ctx context.Context, doctype string, data map[string]any) (map[string]any, error)
	Update(ctx context.Context, doctype, name string, data map[string]any) (map[string]any, error)
	Delete(ctx context.Context, doctype, name string) error
	GetCount(ctx context.Context, doctype string, filters map[string]any) (int, error)
}

// Service delegates all partner CRUD to the backend.
type Service struct {
	client DocClient
}

// NewService constructs the partners service.
func NewService(client DocClient) *Service {
	return &Service{client: client}
}

var (
	customerDetailFields = []string{
		"customer_primary_address", "customer_primary_contact", "is_internal_customer",
		"represents_company", "market_segment", "industry", "customer_details",
	}
	supplierDetailFields = []string{
		"supplier_primary_address", "supplier_primary_contact", "is_internal_supplier",
		"represents_company", "supplier_details",
	}
)

// ListCustomers returns a page of enabled customers.
func (s *Service) ListCustomers(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	return s.client.GetList(ctx, DoctypeCustomer, erpnext.ListParams{
		Filters:         erpnext.FilterActiveCustomers,
		Fields:          erpnext.FieldsFor(DoctypeCustomer),
		LimitStart:      offset,
		LimitPageLength: limit,
		OrderBy:         "customer_name asc",
	})
}

// GetCustomer fetches one customer with the detail projection.
func (s *Service) GetCustomer(ctx context.Context, name string) (map[string]any, error) {
	return s.client.GetDoc(ctx, DoctypeCustomer, name, erpnext.FieldsFor(DoctypeCustomer, customerDetailFields...))
}

// CreateCustomer inserts a customer document.
func (s *Service) CreateCustomer(ctx context.Context, data map[string]any) (map[string]any, error) {
	return s.client.Create(ctx, DoctypeCustomer, data)
}

// UpdateCustomer updates a customer document.
func (s *Service) UpdateCustomer(ctx context.Context, name string, data map[string]any) error {
	_, err := s.client.Update(ctx, DoctypeCustomer, name, data)
	return err
}

// DeleteCustomer removes a customer document.
func (s *Service) DeleteCustomer(ctx context.Context, name string) error {
	return s.client.Delete(ctx, DoctypeCustomer, name)
}

// CountCustomers counts enabled customers.
func (s *Service) CountCustomers(ctx context.Context) (int, error) {
	return s.client.GetCount(ctx, DoctypeCustomer, erpnext.FilterActiveCustomers)
}

// ListSuppliers returns a page of enabled suppliers.
func (s *Service) ListSuppliers(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	return s.client.GetList(ctx, DoctypeSupplier, erpnext.ListParams{
		Filters:         erpnext.FilterActiveSuppliers,
		Fields:          erpnext.FieldsFor(DoctypeSupplier),
		LimitStart:      offset,
		LimitPageLength: limit,
		OrderBy:         "supplier_name asc",
	})
}

// GetSupplier fetches one supplier with the detail projection.
func (s *Service) GetSupplier(ctx context.Context, name string) (map[string]any, error) {
	return s.client.GetDoc(ctx, DoctypeSupplier, name, erpnext.FieldsFor(DoctypeSupplier, supplierDetailFields...))
}

// CreateSupplier inserts a supplier document.
func (s *Service) CreateSupplier(ctx context.Context, data map[string]any) (map[string]any, error) {
	return s.client.Create(ctx, DoctypeSupplier, data)
}

// UpdateSupplier updates a supplier document.
func (s *Service) UpdateSupplier(ctx context.Context, name string, data map[string]any) error {
	_, err := s.client.Update(ctx, DoctypeSupplier, name, data)
	return err
}

// DeleteSupplier removes a supplier document.
func (s *Service) DeleteSupplier(ctx context.Context, name string) error {
	return s.client.Delete(ctx, DoctypeSupplier, name)
}

// CountSuppliers counts enabled suppliers.
func (s *Service) CountSuppliers(ctx context.Context) (int, error) {
	return s.client.GetCount(ctx, DoctypeSupplier, erpnext.FilterActiveSuppliers)
}
