package repos

import (
	"context"
	"testing"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var toolRowColumns = []string{
	"id", "owner_id", "name", "description", "category", "condition",
	"daily_rate_cents", "assessed_value_cents", "available", "postcode",
	"created_on", "updated_on", "deleted_on",
}

func TestToolRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		tool := &domain.Tool{
			OwnerID:            4,
			Name:               "Cordless drill",
			Category:           "POWER_TOOLS",
			Condition:          domain.ToolConditionGood,
			DailyRateCents:     1500,
			AssessedValueCents: 12000,
			Available:          true,
			Postcode:           "SW1A 1AA",
		}

		mock.ExpectQuery("INSERT INTO tools").
			WithArgs(tool.OwnerID, tool.Name, tool.Description, tool.Category, tool.Condition,
				tool.DailyRateCents, tool.AssessedValueCents, tool.Available, tool.Postcode,
				sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

		err := repo.Create(ctx, tool)
		assert.NoError(t, err)
		assert.Equal(t, int32(2), tool.ID)
	})
}

func TestToolRepository_SoftDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE tools SET deleted_on").
			WithArgs(sqlmock.AnyArg(), int32(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SoftDelete(ctx, 2)
		assert.NoError(t, err)
	})

	t.Run("Already deleted", func(t *testing.T) {
		mock.ExpectExec("UPDATE tools SET deleted_on").
			WithArgs(sqlmock.AnyArg(), int32(2)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SoftDelete(ctx, 2)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestToolRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	t.Run("Excludes deleted rows", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tools WHERE id = \\$1 AND deleted_on IS NULL").
			WithArgs(int32(9)).
			WillReturnRows(sqlmock.NewRows(toolRowColumns))

		_, err := repo.GetByID(ctx, 9)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestToolRepository_CountAvailableByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM tools").
			WithArgs(int32(4)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountAvailableByOwner(ctx, 4)
		assert.NoError(t, err)
		assert.Equal(t, int32(3), count)
	})
}
