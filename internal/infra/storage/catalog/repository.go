// Package catalog репозиторий каталогов услуг, кабинетов и мастеров
// Каталоги read-only с точки зрения движка: их наполняет внешний
// административный процесс
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/pkg/dbmetrics"
	"github.com/spaflow/booking-engine/pkg/psqlbuilder"
)

// Repository репозиторий каталогов
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталогов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetService получает услугу по ID
func (r *Repository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"category",
		"duration_minutes",
		"price",
		"requires_specialized_drainage",
		"min_room_capacity",
		"allowed_room_ids",
		"is_active",
	).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var service domain.Service
	var allowedRoomIDs pq.Int64Array

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&service.ID,
		&service.Name,
		&service.Category,
		&service.DurationMinutes,
		&service.Price,
		&service.RequiresSpecializedDrainage,
		&service.MinRoomCapacity,
		&allowedRoomIDs,
		&service.IsActive,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %v", ErrScanRow, err)
	}

	service.AllowedRoomIDs = []int64(allowedRoomIDs)

	return &service, nil
}

// ListActiveRooms получает все активные кабинеты
func (r *Repository) ListActiveRooms(ctx context.Context) ([]*domain.Room, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"bed_capacity",
		"has_specialized_drainage",
		"is_active",
	).
		From("rooms").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveRooms - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveRooms - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rooms := make([]*domain.Room, 0)
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(
			&room.ID,
			&room.Name,
			&room.BedCapacity,
			&room.HasSpecializedDrainage,
			&room.IsActive,
		); err != nil {
			return nil, fmt.Errorf("%w: ListActiveRooms - scan room: %v", ErrScanRow, err)
		}
		rooms = append(rooms, &room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveRooms - rows error: %v", ErrScanRow, err)
	}

	return rooms, nil
}

// ListActiveStaff получает всех активных мастеров
func (r *Repository) ListActiveStaff(ctx context.Context) ([]*domain.StaffMember, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"specializations",
		"is_active",
	).
		From("staff_members").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveStaff - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveStaff - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	staff := make([]*domain.StaffMember, 0)
	for rows.Next() {
		var member domain.StaffMember
		var specializations pq.StringArray

		if err := rows.Scan(
			&member.ID,
			&member.Name,
			&specializations,
			&member.IsActive,
		); err != nil {
			return nil, fmt.Errorf("%w: ListActiveStaff - scan staff member: %v", ErrScanRow, err)
		}

		member.Specializations = []string(specializations)
		staff = append(staff, &member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveStaff - rows error: %v", ErrScanRow, err)
	}

	return staff, nil
}
