// Package schedule репозиторий рабочих расписаний мастеров
// Расписания создает внешний процесс планирования смен; движок их только читает
package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/pkg/dbmetrics"
	"github.com/spaflow/booking-engine/pkg/psqlbuilder"
)

var scheduleColumns = []string{
	"id",
	"staff_id",
	"work_date",
	"start_time",
	"end_time",
	"status",
}

// Repository репозиторий рабочих расписаний
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetForDate получает все интервалы расписания на дату
func (r *Repository) GetForDate(ctx context.Context, date time.Time) ([]*domain.WorkSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(scheduleColumns...).
		From("work_schedules").
		Where(squirrel.Eq{"work_date": date}).
		OrderBy("staff_id ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetForDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetForDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanSchedules(rows)
}

// GetForRange получает все интервалы расписания за период [startDate, endDate]
// Используется для сводок доступности по датам
func (r *Repository) GetForRange(ctx context.Context, startDate, endDate time.Time) ([]*domain.WorkSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(scheduleColumns...).
		From("work_schedules").
		Where(squirrel.GtOrEq{"work_date": startDate}).
		Where(squirrel.LtOrEq{"work_date": endDate}).
		OrderBy("work_date ASC, staff_id ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetForRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetForRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanSchedules(rows)
}

func (r *Repository) scanSchedules(rows *sql.Rows) ([]*domain.WorkSchedule, error) {
	schedules := make([]*domain.WorkSchedule, 0)

	for rows.Next() {
		var entry domain.WorkSchedule

		if err := rows.Scan(
			&entry.ID,
			&entry.StaffID,
			&entry.WorkDate,
			&entry.StartTime,
			&entry.EndTime,
			&entry.Status,
		); err != nil {
			return nil, fmt.Errorf("%w: scanSchedules - scan row: %v", ErrScanRow, err)
		}

		schedules = append(schedules, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanSchedules - rows error: %v", ErrScanRow, err)
	}

	return schedules, nil
}
