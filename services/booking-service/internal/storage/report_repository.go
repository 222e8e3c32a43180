package storage

import (
	"context"

	"github.com/careops/homenurse/libs/db"
	"github.com/careops/homenurse/services/booking-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReportRepository struct {
	pool *db.Pool
}

func NewReportRepository(pool *db.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

func (r *ReportRepository) CreateTx(ctx context.Context, tx pgx.Tx, rep *model.ServiceReport) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO service_reports
			(id, appointment_id, technical_notes, needs_follow_up, follow_up_date,
			 follow_up_notes, registered_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, rep.AppointmentID, rep.TechnicalNotes, rep.NeedsFollowUp, rep.FollowUpDate,
		rep.FollowUpNotes, rep.RegisteredBy)
	if err != nil {
		return "", err
	}
	return id, nil
}
