package contact

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/labstack/echo/v4"

	contactrepo "github.com/Ramsey-B/clover/internal/repositories/contact"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/reconcile"
)

// Register registers contact routes
func Register(g *echo.Group) {
	g.GET("/:id", GetContact)
	g.GET("/:id/cluster", GetCluster)
}

// GetContact gets a contact by id
func GetContact(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contact_handler.GetContact")
	defer span.End()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}

	ctx, repo, err := ectoinject.GetContext[*contactrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	contact, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, contact)
}

// GetCluster returns the consolidated cluster view for any member id
func GetCluster(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "contact_handler.GetCluster")
	defer span.End()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}

	ctx, repo, err := ectoinject.GetContext[*contactrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	member, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	primary, err := repo.GetByID(ctx, member.RootID())
	if err != nil {
		return err
	}

	members, err := repo.GetCluster(ctx, primary.ID)
	if err != nil {
		return err
	}

	view := reconcile.BuildContactView(*primary, members)
	return c.JSON(http.StatusOK, models.IdentifyResponse{Contact: view})
}
