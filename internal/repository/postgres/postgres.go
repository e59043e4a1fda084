package postgres

import (
	"database/sql"

	"toolpool-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.ToolRepository
	repository.RentalRepository
	repository.ToolRequestRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		ToolRepository:         NewToolRepository(db),
		RentalRepository:       NewRentalRepository(db),
		ToolRequestRepository:  NewToolRequestRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
