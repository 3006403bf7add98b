package contact

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/models"
)

var contactColumns = []string{"id", "email", "phone_number", "linked_id", "link_precedence", "created_at", "updated_at", "deleted_at"}

// Repository handles contact persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new contact repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// DB returns the underlying database handle for transaction management
func (r *Repository) DB() database.DB {
	return r.db
}

// FindByEmailOrPhone returns all non-deleted contacts matching either identifier
// exactly, oldest first. Either argument may be nil.
func (r *Repository) FindByEmailOrPhone(ctx context.Context, email, phoneNumber *string) ([]models.Contact, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.FindByEmailOrPhone")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(contactColumns...)
	sb.From("contacts")

	identifiers := make([]string, 0, 2)
	if email != nil {
		identifiers = append(identifiers, sb.Equal("email", *email))
	}
	if phoneNumber != nil {
		identifiers = append(identifiers, sb.Equal("phone_number", *phoneNumber))
	}
	sb.Where(
		sb.Or(identifiers...),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("created_at", "id")

	query, args := sb.Build()
	var contacts []models.Contact
	ex := database.ExecutorFromContext(ctx, r.db)
	if err := ex.SelectContext(ctx, &contacts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to find contacts by email or phone")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find contacts")
	}
	return contacts, nil
}

// LockByIDs locks the given contact rows with FOR UPDATE and returns them,
// oldest first. Used to serialize concurrent reconciliation on the touched
// cluster primaries.
func (r *Repository) LockByIDs(ctx context.Context, ids []int64) ([]models.Contact, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.LockByIDs")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(contactColumns...)
	sb.From("contacts")
	sb.Where(
		sb.In("id", sqlbuilder.Flatten(ids)...),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("created_at", "id")
	sb.SQL("FOR UPDATE")

	query, args := sb.Build()
	var contacts []models.Contact
	ex := database.ExecutorFromContext(ctx, r.db)
	if err := ex.SelectContext(ctx, &contacts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"ids": ids}).Error("Failed to lock contacts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to lock contacts")
	}
	return contacts, nil
}

// GetMembersOfRoots returns every non-deleted contact whose id or linked_id is
// one of the given root ids, oldest first.
func (r *Repository) GetMembersOfRoots(ctx context.Context, rootIDs []int64) ([]models.Contact, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.GetMembersOfRoots")
	defer span.End()

	if len(rootIDs) == 0 {
		return nil, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(contactColumns...)
	sb.From("contacts")
	sb.Where(
		sb.Or(
			sb.In("id", sqlbuilder.Flatten(rootIDs)...),
			sb.In("linked_id", sqlbuilder.Flatten(rootIDs)...),
		),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("created_at", "id")

	query, args := sb.Build()
	var contacts []models.Contact
	ex := database.ExecutorFromContext(ctx, r.db)
	if err := ex.SelectContext(ctx, &contacts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"root_ids": rootIDs}).Error("Failed to get cluster members")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get cluster members")
	}
	return contacts, nil
}

// GetCluster returns the primary and all its secondaries, oldest first.
func (r *Repository) GetCluster(ctx context.Context, primaryID int64) ([]models.Contact, error) {
	return r.GetMembersOfRoots(ctx, []int64{primaryID})
}

// GetByID retrieves a non-deleted contact by id
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Contact, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(contactColumns...)
	sb.From("contacts")
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var contact models.Contact
	ex := database.ExecutorFromContext(ctx, r.db)
	if err := ex.GetContext(ctx, &contact, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "contact %d not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id}).Error("Failed to get contact")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get contact")
	}
	return &contact, nil
}

// Create inserts a contact and returns the stored row
func (r *Repository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.Create")
	defer span.End()

	now := time.Now().UTC()
	query := `
		INSERT INTO contacts (email, phone_number, linked_id, link_precedence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, email, phone_number, linked_id, link_precedence, created_at, updated_at, deleted_at
	`

	var created models.Contact
	ex := database.ExecutorFromContext(ctx, r.db)
	if err := ex.GetContext(ctx, &created, query, contact.Email, contact.PhoneNumber, contact.LinkedID, contact.LinkPrecedence, now); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"link_precedence": contact.LinkPrecedence, "linked_id": contact.LinkedID}).Error("Failed to create contact")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create contact")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": created.ID, "link_precedence": created.LinkPrecedence}).Info("Created contact")
	return &created, nil
}

// DemoteToSecondary turns a primary into a secondary of the given primary
func (r *Repository) DemoteToSecondary(ctx context.Context, id, primaryID int64) error {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.DemoteToSecondary")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("contacts")
	sb.Set(
		sb.Assign("link_precedence", models.LinkPrecedenceSecondary),
		sb.Assign("linked_id", primaryID),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	ex := database.ExecutorFromContext(ctx, r.db)
	result, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "primary_id": primaryID}).Error("Failed to demote contact")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to demote contact")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("contact %d disappeared during demotion", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id, "primary_id": primaryID}).Info("Demoted contact to secondary")
	return nil
}

// RelinkSecondaries repoints every secondary of fromPrimaryID at toPrimaryID
// and returns the number of rows moved. Keeps clusters one level deep.
func (r *Repository) RelinkSecondaries(ctx context.Context, fromPrimaryID, toPrimaryID int64) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.RelinkSecondaries")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("contacts")
	sb.Set(
		sb.Assign("linked_id", toPrimaryID),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.Equal("linked_id", fromPrimaryID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	ex := database.ExecutorFromContext(ctx, r.db)
	result, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"from_primary_id": fromPrimaryID, "to_primary_id": toPrimaryID}).Error("Failed to relink secondaries")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to relink secondaries")
	}

	rows, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"from_primary_id": fromPrimaryID,
		"to_primary_id":   toPrimaryID,
		"count":           rows,
	}).Info("Relinked secondaries")
	return rows, nil
}
