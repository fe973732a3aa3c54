package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditAction names what was done to a record. The set is open: new kinds may
// be added without a schema change.
type AuditAction string

const (
	AuditActionCreate       AuditAction = "create"
	AuditActionUpdate       AuditAction = "update"
	AuditActionDelete       AuditAction = "delete"
	AuditActionDeleteBatch  AuditAction = "delete_batch"
	AuditActionRestore      AuditAction = "restore"
	AuditActionRestoreBatch AuditAction = "restore_batch"
	AuditActionPurge        AuditAction = "purge"
	AuditActionUpdateStatus AuditAction = "update_status"
)

// Audited table names.
const (
	TableProducts   = "products"
	TableCategories = "categories"
	TableOrders     = "orders"
)

// Keys used in AuditDetails.
//
//	product actions: {product_name}
//	category create: {category_name}
//	order create:    {total}
//	order status:    {from, to, tracking_code?}
const (
	DetailProductName  = "product_name"
	DetailCategoryName = "category_name"
	DetailTotal        = "total"
	DetailFrom         = "from"
	DetailTo           = "to"
	DetailTrackingCode = "tracking_code"
)

// AuditDetails is the structured payload stored with an audit entry.
type AuditDetails map[string]any

// ProductDetails builds the payload written for product lifecycle actions.
func ProductDetails(productName string) AuditDetails {
	return AuditDetails{DetailProductName: productName}
}

// String returns the value under key when it is a string.
func (d AuditDetails) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Value implements driver.Valuer, storing the details as JSON.
func (d AuditDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSON/JSONB columns.
func (d *AuditDetails) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported audit details type %T", src)
	}
}

// AuditLog is one append-only audit trail entry. UserID is nil for system
// actions; UserName is joined from the user profile when resolvable.
type AuditLog struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	UserName  string
	Action    AuditAction
	TableName string
	RecordID  uuid.UUID
	Details   AuditDetails
	CreatedAt time.Time
}

func (a *AuditLog) InitMeta() {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
}

// Actor is the display name of whoever performed the action.
func (a *AuditLog) Actor() string {
	switch {
	case a.UserName != "":
		return a.UserName
	case a.UserID != nil:
		return a.UserID.String()
	default:
		return "system"
	}
}
